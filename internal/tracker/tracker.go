// Package tracker associates detections across consecutive frames so each
// physical object is scored once per continuous sighting.
//
// Identity is a heuristic: a detection's classId plus its top-left corner
// rounded to a coarse grid. Known limitations, accepted as-is:
//   - an object moving more than one grid cell between frames gets a new key
//     and is scored again;
//   - two same-class objects whose corners fall in the same cell share a key
//     and are scored once;
//   - an object that is missed for longer than GraceFrames (default zero, so
//     a single frame) is scored again when it reappears.
package tracker

import (
	"fmt"
	"math"

	"recyclegame/internal/detect"
)

const (
	// DefaultGrid is the quantization step in normalized units (1% of the frame).
	DefaultGrid = 0.01
	// DefaultPoints is awarded for each new sighting.
	DefaultPoints = 10
)

// Key is the quantized identity of a detection.
type Key struct {
	ClassID int
	X       int
	Y       int
}

func (k Key) String() string {
	return fmt.Sprintf("%d_%d_%d", k.ClassID, k.X, k.Y)
}

// IdentityTracker remembers which quantized keys were visible in the
// previous frame. It is not safe for concurrent use; the session owning it
// drives it from a single goroutine.
type IdentityTracker struct {
	grid        float64
	points      int
	graceFrames int

	// known maps a key to the number of consecutive frames it has been missing.
	known map[Key]int
}

// New creates a tracker. Non-positive grid or points fall back to the defaults.
func New(grid float64, points, graceFrames int) *IdentityTracker {
	if grid <= 0 {
		grid = DefaultGrid
	}
	if points <= 0 {
		points = DefaultPoints
	}
	if graceFrames < 0 {
		graceFrames = 0
	}
	return &IdentityTracker{
		grid:        grid,
		points:      points,
		graceFrames: graceFrames,
		known:       make(map[Key]int),
	}
}

// KeyOf quantizes a detection.
func (t *IdentityTracker) KeyOf(d detect.Detection) Key {
	return Key{
		ClassID: d.ClassID,
		X:       int(math.Round(d.X / t.grid)),
		Y:       int(math.Round(d.Y / t.grid)),
	}
}

// Update processes one frame and returns the points earned and the keys seen
// for the first time.
func (t *IdentityTracker) Update(detections []detect.Detection) (int, []Key) {
	present := make(map[Key]struct{}, len(detections))
	var fresh []Key
	for _, d := range detections {
		key := t.KeyOf(d)
		if _, dup := present[key]; dup {
			continue
		}
		present[key] = struct{}{}

		if _, ok := t.known[key]; !ok {
			fresh = append(fresh, key)
		}
		t.known[key] = 0
	}

	for key, missed := range t.known {
		if _, ok := present[key]; ok {
			continue
		}
		if missed >= t.graceFrames {
			delete(t.known, key)
			continue
		}
		t.known[key] = missed + 1
	}

	return len(fresh) * t.points, fresh
}

// Known returns the number of keys currently remembered.
func (t *IdentityTracker) Known() int {
	return len(t.known)
}

// Reset forgets every key.
func (t *IdentityTracker) Reset() {
	t.known = make(map[Key]int)
}

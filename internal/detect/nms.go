package detect

import (
	"math"
	"sort"
)

// IoU returns the intersection-over-union of two boxes. Disjoint boxes, and
// boxes whose union has no area, yield zero.
func IoU(a, b Detection) float64 {
	x1 := math.Max(a.X, b.X)
	y1 := math.Max(a.Y, b.Y)
	x2 := math.Min(a.X+a.Width, b.X+b.Width)
	y2 := math.Min(a.Y+a.Height, b.Y+b.Height)

	intersection := math.Max(0, x2-x1) * math.Max(0, y2-y1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// NonMaxSuppressor greedily removes lower-scoring boxes that overlap a kept
// box of the same classId by more than IoUThreshold.
type NonMaxSuppressor struct {
	IoUThreshold float64
	// MaxDetections caps the kept list; zero keeps everything.
	MaxDetections int
}

// Suppress returns the kept detections ordered by descending score. The
// input slice is not modified.
func (s NonMaxSuppressor) Suppress(detections []Detection) []Detection {
	if len(detections) == 0 {
		return []Detection{}
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]Detection, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		if s.MaxDetections > 0 && len(kept) == s.MaxDetections {
			break
		}

		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] || sorted[j].ClassID != sorted[i].ClassID {
				continue
			}
			if IoU(sorted[i], sorted[j]) > s.IoUThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

package detect

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Detection is one labeled box of a processed frame. Coordinates are
// normalized to the unit square in top-left/width/height form.
type Detection struct {
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Score     float64
	ClassID   int
	ClassName string
}

// Area returns the box area in normalized units.
func (d Detection) Area() float64 {
	return d.Width * d.Height
}

// ClassTable maps classId (the index) to its display label. Two ids may
// share a label; the id stays the identity used by suppression and tracking.
type ClassTable []string

// DefaultClasses is the recyclables model class table; "metal" is shown as "can".
var DefaultClasses = ClassTable{"can", "can", "paper", "plastic-bottle"}

// Len returns the number of score channels the table expects.
func (c ClassTable) Len() int {
	return len(c)
}

// Label resolves a classId to its label.
func (c ClassTable) Label(classID int) string {
	if classID < 0 || classID >= len(c) {
		return fmt.Sprintf("unknown_%d", classID)
	}
	return c[classID]
}

// IDs returns every classId carrying the given label.
func (c ClassTable) IDs(label string) []int {
	ids := make([]int, 0, 1)
	for id, name := range c {
		if name == label {
			ids = append(ids, id)
		}
	}
	return ids
}

// Labels returns the distinct labels in classId order.
func (c ClassTable) Labels() []string {
	return lo.Uniq([]string(c))
}

// Validate checks the table against the number of score channels the detector emits.
func (c ClassTable) Validate(channels int) error {
	if len(c) == 0 {
		return errors.New("class table is empty")
	}
	if len(c) != channels {
		return errors.Errorf("class table has %d labels but detector emits %d score channels", len(c), channels)
	}
	return nil
}

package detect

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrUnknownClass is returned by ParseFilter when a requested label is not in the class table.
var ErrUnknownClass = errors.New("unknown object class")

// FilterAll is the filter value that keeps every class.
const FilterAll = "all"

// Filter restricts a frame's detections to the classes a game mode cares
// about. The zero value keeps everything.
//
// An empty or unrecognized configuration falls back to keeping every class
// rather than hiding all detections.
type Filter struct {
	labels []string
	ids    map[int]struct{}
}

// NewClassFilter keeps only the given classIds. No ids means no filtering.
func NewClassFilter(classIDs ...int) Filter {
	if len(classIDs) == 0 {
		return Filter{}
	}
	ids := make(map[int]struct{}, len(classIDs))
	for _, id := range classIDs {
		ids[id] = struct{}{}
	}
	return Filter{ids: ids}
}

// ParseFilter resolves a filter value against the class table. The value is
// "all", "", a single label, or a comma separated include-set of labels.
// Labels resolve to every classId carrying them. Unknown labels make the
// whole filter fall back to "all"; the fallback is returned along with
// ErrUnknownClass.
func ParseFilter(value string, classes ClassTable) (Filter, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, FilterAll) {
		return Filter{}, nil
	}

	labels := lo.Uniq(lo.FilterMap(strings.Split(value, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}))
	if len(labels) == 0 {
		return Filter{}, nil
	}

	ids := make([]int, 0, len(labels))
	for _, label := range labels {
		matched := classes.IDs(label)
		if len(matched) == 0 {
			return Filter{}, errors.Wrapf(ErrUnknownClass, "%q", label)
		}
		ids = append(ids, matched...)
	}

	f := NewClassFilter(ids...)
	sort.Strings(labels)
	f.labels = labels
	return f, nil
}

// All reports whether the filter keeps every class.
func (f Filter) All() bool {
	return len(f.ids) == 0
}

// Keeps reports whether a classId passes the filter.
func (f Filter) Keeps(classID int) bool {
	if f.All() {
		return true
	}
	_, ok := f.ids[classID]
	return ok
}

// String returns the canonical filter value.
func (f Filter) String() string {
	if f.All() {
		return FilterAll
	}
	return strings.Join(f.labels, ",")
}

// Apply returns the detections whose classId passes the filter.
func (f Filter) Apply(detections []Detection) []Detection {
	if f.All() {
		return detections
	}
	return lo.Filter(detections, func(d Detection, _ int) bool {
		return f.Keeps(d.ClassID)
	})
}

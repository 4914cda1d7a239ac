package detect

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func frame() []Detection {
	return []Detection{
		box(0.1, 0.1, 0.1, 0.1, 0.9, 0),
		box(0.3, 0.3, 0.1, 0.1, 0.8, 1),
		box(0.5, 0.5, 0.1, 0.1, 0.7, 2),
		box(0.7, 0.7, 0.1, 0.1, 0.6, 3),
	}
}

func TestFilterAll(t *testing.T) {
	for _, value := range []string{"", "all", "ALL", "  "} {
		f, err := ParseFilter(value, DefaultClasses)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.All(), test.ShouldBeTrue)
		test.That(t, f.String(), test.ShouldEqual, FilterAll)
		test.That(t, f.Apply(frame()), test.ShouldHaveLength, 4)
	}

	var zero Filter
	test.That(t, zero.Apply(frame()), test.ShouldHaveLength, 4)
}

func TestFilterSingleClass(t *testing.T) {
	f, err := ParseFilter("paper", DefaultClasses)
	test.That(t, err, test.ShouldBeNil)
	out := f.Apply(frame())
	test.That(t, out, test.ShouldHaveLength, 1)
	test.That(t, out[0].ClassID, test.ShouldEqual, 2)

	// "can" covers both aliased classIds
	f, err = ParseFilter("can", DefaultClasses)
	test.That(t, err, test.ShouldBeNil)
	out = f.Apply(frame())
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, f.Keeps(0), test.ShouldBeTrue)
	test.That(t, f.Keeps(1), test.ShouldBeTrue)
	test.That(t, f.Keeps(2), test.ShouldBeFalse)
}

func TestFilterIncludeSet(t *testing.T) {
	f, err := ParseFilter("plastic-bottle, paper,paper", DefaultClasses)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f.String(), test.ShouldEqual, "paper,plastic-bottle")
	test.That(t, f.Apply(frame()), test.ShouldHaveLength, 2)

	byID := NewClassFilter(3)
	test.That(t, byID.Apply(frame()), test.ShouldHaveLength, 1)
	test.That(t, NewClassFilter().All(), test.ShouldBeTrue)
}

func TestFilterUnknownClassFallsBackToAll(t *testing.T) {
	f, err := ParseFilter("banana", DefaultClasses)
	test.That(t, errors.Is(err, ErrUnknownClass), test.ShouldBeTrue)
	test.That(t, f.All(), test.ShouldBeTrue)
	test.That(t, f.Apply(frame()), test.ShouldHaveLength, 4)

	f, err = ParseFilter("paper,banana", DefaultClasses)
	test.That(t, errors.Is(err, ErrUnknownClass), test.ShouldBeTrue)
	test.That(t, f.Apply(frame()), test.ShouldHaveLength, 4)
}

func TestPipelineProcess(t *testing.T) {
	const n = 8
	p := NewPipeline(DefaultClasses, 320, n, 0.5, 0.45, 100)
	out := buildOutput(n, 4, map[int]candidate{
		0: {xc: 160, yc: 160, w: 64, h: 64, scores: []float32{0, 0, 0.9, 0}},
		1: {xc: 162, yc: 161, w: 64, h: 64, scores: []float32{0, 0, 0.8, 0}},
		2: {xc: 160, yc: 160, w: 64, h: 64, scores: []float32{0.7, 0, 0, 0}},
		3: {xc: 40, yc: 40, w: 20, h: 20, scores: []float32{0, 0, 0, 0.3}},
	})

	all, err := p.Process(out, Filter{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all, test.ShouldHaveLength, 2)
	test.That(t, CountByLabel(all), test.ShouldResemble, map[string]int{"paper": 1, "can": 1})

	paper, _ := ParseFilter("paper", DefaultClasses)
	only, err := p.Process(out, paper)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, only, test.ShouldHaveLength, 1)
	test.That(t, only[0].Score, test.ShouldAlmostEqual, 0.9, 1e-6)

	none, err := p.Process(out[:10], Filter{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, none, test.ShouldBeEmpty)
}

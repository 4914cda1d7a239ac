package detect

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

type candidate struct {
	xc, yc, w, h float32
	scores       []float32
}

// buildOutput lays candidates out in the planar (4+C)*N format.
func buildOutput(n, classes int, cands map[int]candidate) []float32 {
	out := make([]float32, (4+classes)*n)
	for i, c := range cands {
		out[i] = c.xc
		out[n+i] = c.yc
		out[2*n+i] = c.w
		out[3*n+i] = c.h
		for j, s := range c.scores {
			out[(4+j)*n+i] = s
		}
	}
	return out
}

func testDecoder(n int) BoxDecoder {
	return BoxDecoder{
		InputSize:      320,
		CandidateCount: n,
		ScoreThreshold: 0.5,
		Classes:        DefaultClasses,
	}
}

func TestDecodeSingleCandidate(t *testing.T) {
	dec := testDecoder(DefaultCandidateCount)
	out := buildOutput(DefaultCandidateCount, 4, map[int]candidate{
		17: {xc: 160, yc: 160, w: 64, h: 64, scores: []float32{0.1, 0.2, 0.9, 0.3}},
	})

	dets, err := dec.Decode(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)

	d := dets[0]
	test.That(t, d.X, test.ShouldAlmostEqual, 0.4)
	test.That(t, d.Y, test.ShouldAlmostEqual, 0.4)
	test.That(t, d.Width, test.ShouldAlmostEqual, 0.2)
	test.That(t, d.Height, test.ShouldAlmostEqual, 0.2)
	test.That(t, d.ClassID, test.ShouldEqual, 2)
	test.That(t, d.ClassName, test.ShouldEqual, "paper")
	test.That(t, d.Score, test.ShouldAlmostEqual, 0.9, 1e-6)
}

func TestDecodeThresholdIsStrict(t *testing.T) {
	dec := testDecoder(4)
	out := buildOutput(4, 4, map[int]candidate{
		0: {xc: 100, yc: 100, w: 10, h: 10, scores: []float32{0.5, 0, 0, 0}},
		1: {xc: 200, yc: 200, w: 10, h: 10, scores: []float32{0, 0, 0, 0.5001}},
	})

	dets, err := dec.Decode(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, dets[0].ClassID, test.ShouldEqual, 3)
}

func TestDecodeTieResolvesToFirstClass(t *testing.T) {
	dec := testDecoder(1)
	out := buildOutput(1, 4, map[int]candidate{
		0: {xc: 160, yc: 160, w: 32, h: 32, scores: []float32{0.2, 0.8, 0.8, 0.8}},
	})

	dets, err := dec.Decode(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, dets[0].ClassID, test.ShouldEqual, 1)
	test.That(t, dets[0].ClassName, test.ShouldEqual, "can")
}

func TestDecodeClampsToUnitSquare(t *testing.T) {
	dec := testDecoder(2)
	out := buildOutput(2, 4, map[int]candidate{
		0: {xc: 10, yc: 10, w: 40, h: 40, scores: []float32{0.9, 0, 0, 0}},
		1: {xc: 310, yc: 300, w: 40, h: 80, scores: []float32{0.9, 0, 0, 0}},
	})

	dets, err := dec.Decode(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 2)
	for _, d := range dets {
		test.That(t, d.X, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, d.Y, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, d.X+d.Width, test.ShouldBeLessThanOrEqualTo, 1.0)
		test.That(t, d.Y+d.Height, test.ShouldBeLessThanOrEqualTo, 1.0)
	}

	test.That(t, dets[0].X, test.ShouldEqual, 0.0)
	test.That(t, dets[0].Width, test.ShouldAlmostEqual, 30.0/320)
	test.That(t, dets[1].X, test.ShouldAlmostEqual, 290.0/320)
	test.That(t, dets[1].Width, test.ShouldAlmostEqual, 30.0/320)
	test.That(t, dets[1].Height, test.ShouldAlmostEqual, 60.0/320)
}

func TestDecodeMalformedBuffer(t *testing.T) {
	dec := testDecoder(DefaultCandidateCount)

	dets, err := dec.Decode(make([]float32, 100))
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)
	test.That(t, dets, test.ShouldBeEmpty)

	dets, err = dec.Decode(nil)
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)
	test.That(t, dets, test.ShouldBeEmpty)

	// one extra class plane beyond the class table
	three := BoxDecoder{InputSize: 320, CandidateCount: 8, ScoreThreshold: 0.5, Classes: ClassTable{"can", "paper", "plastic-bottle"}}
	extra := buildOutput(8, 4, map[int]candidate{
		2: {xc: 160, yc: 160, w: 64, h: 64, scores: []float32{0, 0, 0, 0.9}},
	})
	dets, err = three.Decode(extra)
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)
	test.That(t, dets, test.ShouldBeEmpty)

	unconfigured := BoxDecoder{}
	_, err = unconfigured.Decode(make([]float32, 10))
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)
}

func TestCheckShape(t *testing.T) {
	dec := testDecoder(DefaultCandidateCount)
	test.That(t, dec.CheckShape([]int{1, 8, DefaultCandidateCount}), test.ShouldBeNil)
	test.That(t, dec.CheckShape([]int{8, DefaultCandidateCount}), test.ShouldBeNil)

	err := dec.CheckShape([]int{1, 84, DefaultCandidateCount})
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "80 score channels")

	err = dec.CheckShape([]int{1, 8, 8400})
	test.That(t, errors.Is(err, ErrMalformedBuffer), test.ShouldBeTrue)

	test.That(t, dec.CheckShape([]int{8}), test.ShouldNotBeNil)
	test.That(t, dec.CheckShape([]int{1, 3, DefaultCandidateCount}), test.ShouldNotBeNil)
}

func TestClassTable(t *testing.T) {
	test.That(t, DefaultClasses.IDs("can"), test.ShouldResemble, []int{0, 1})
	test.That(t, DefaultClasses.Labels(), test.ShouldResemble, []string{"can", "paper", "plastic-bottle"})
	test.That(t, DefaultClasses.Label(9), test.ShouldEqual, "unknown_9")
	test.That(t, DefaultClasses.Validate(4), test.ShouldBeNil)
	test.That(t, DefaultClasses.Validate(80), test.ShouldNotBeNil)
	test.That(t, ClassTable{}.Validate(0), test.ShouldNotBeNil)
}

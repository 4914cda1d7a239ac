package tracker

import (
	"testing"

	"go.viam.com/test"

	"recyclegame/internal/detect"
)

func det(x, y float64, classID int) detect.Detection {
	return detect.Detection{X: x, Y: y, Width: 0.1, Height: 0.1, Score: 0.9, ClassID: classID}
}

func TestScoresOncePerContinuousSighting(t *testing.T) {
	tr := New(0.01, 10, 0)

	points, fresh := tr.Update([]detect.Detection{det(0.40, 0.40, 2)})
	test.That(t, points, test.ShouldEqual, 10)
	test.That(t, fresh, test.ShouldHaveLength, 1)

	for i := 0; i < 5; i++ {
		points, fresh = tr.Update([]detect.Detection{det(0.401, 0.399, 2)})
		test.That(t, points, test.ShouldEqual, 0)
		test.That(t, fresh, test.ShouldBeEmpty)
	}
	test.That(t, tr.Known(), test.ShouldEqual, 1)
}

func TestReappearanceScoresAgain(t *testing.T) {
	tr := New(0.01, 10, 0)
	seen := []detect.Detection{det(0.25, 0.6, 1)}

	points, _ := tr.Update(seen)
	test.That(t, points, test.ShouldEqual, 10)

	points, _ = tr.Update(nil)
	test.That(t, points, test.ShouldEqual, 0)
	test.That(t, tr.Known(), test.ShouldEqual, 0)

	points, _ = tr.Update(seen)
	test.That(t, points, test.ShouldEqual, 10)
}

func TestGraceFramesBridgeShortGaps(t *testing.T) {
	tr := New(0.01, 5, 2)
	seen := []detect.Detection{det(0.5, 0.5, 0)}

	points, _ := tr.Update(seen)
	test.That(t, points, test.ShouldEqual, 5)
	tr.Update(nil)
	tr.Update(nil)
	points, _ = tr.Update(seen)
	test.That(t, points, test.ShouldEqual, 0)

	tr.Update(nil)
	tr.Update(nil)
	tr.Update(nil)
	points, _ = tr.Update(seen)
	test.That(t, points, test.ShouldEqual, 5)
}

func TestKeysUseClassIDNotLabel(t *testing.T) {
	tr := New(0.01, 10, 0)
	a := det(0.3, 0.3, 0)
	b := det(0.3, 0.3, 1)
	a.ClassName, b.ClassName = "can", "can"

	points, fresh := tr.Update([]detect.Detection{a, b})
	test.That(t, points, test.ShouldEqual, 20)
	test.That(t, fresh, test.ShouldHaveLength, 2)
}

func TestDuplicateKeysInOneFrameScoreOnce(t *testing.T) {
	tr := New(0.01, 10, 0)
	points, _ := tr.Update([]detect.Detection{det(0.300, 0.3, 2), det(0.302, 0.301, 2)})
	test.That(t, points, test.ShouldEqual, 10)
}

func TestKeyQuantization(t *testing.T) {
	tr := New(0.01, 10, 0)
	test.That(t, tr.KeyOf(det(0.404, 0.396, 3)), test.ShouldResemble, Key{ClassID: 3, X: 40, Y: 40})
	test.That(t, tr.KeyOf(det(0.406, 0.396, 3)).String(), test.ShouldEqual, "3_41_40")
}

func TestResetAndDefaults(t *testing.T) {
	tr := New(0, 0, -1)
	points, _ := tr.Update([]detect.Detection{det(0.1, 0.1, 0)})
	test.That(t, points, test.ShouldEqual, DefaultPoints)

	tr.Reset()
	test.That(t, tr.Known(), test.ShouldEqual, 0)
	points, _ = tr.Update([]detect.Detection{det(0.1, 0.1, 0)})
	test.That(t, points, test.ShouldEqual, DefaultPoints)
}

package config

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	test.That(t, cfg.InputSize, test.ShouldEqual, 320)
	test.That(t, cfg.CandidateCount, test.ShouldEqual, 2100)
	test.That(t, cfg.ScoreThreshold, test.ShouldEqual, 0.5)
	test.That(t, cfg.IoUThreshold, test.ShouldEqual, 0.45)
	test.That(t, cfg.ClassNames, test.ShouldResemble, []string{"can", "can", "paper", "plastic-bottle"})
	test.That(t, cfg.NormalTime, test.ShouldEqual, 90*time.Second)
	test.That(t, cfg.TargetScores, test.ShouldResemble, []int{50, 100, 150, 200})
	test.That(t, cfg.FrameInterval, test.ShouldEqual, 16*time.Millisecond)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLASS_NAMES", " can , glass,, paper ")
	t.Setenv("HARD_TIME", "45")
	t.Setenv("IOU_THRESHOLD", "0.6")
	t.Setenv("TARGET_SCORES", "20,40")
	t.Setenv("PORT", "not-a-number")

	cfg := Load()
	test.That(t, cfg.ClassNames, test.ShouldResemble, []string{"can", "glass", "paper"})
	test.That(t, cfg.HardTime, test.ShouldEqual, 45*time.Second)
	test.That(t, cfg.IoUThreshold, test.ShouldEqual, 0.6)
	test.That(t, cfg.TargetScores, test.ShouldResemble, []int{20, 40})
	test.That(t, cfg.Port, test.ShouldEqual, 8080)
}

func TestInvalidTargetScoresFallBack(t *testing.T) {
	t.Setenv("TARGET_SCORES", "20,zero")
	test.That(t, Load().TargetScores, test.ShouldResemble, []int{50, 100, 150, 200})
}

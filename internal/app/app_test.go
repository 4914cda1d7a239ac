package app

import (
	"testing"
	"time"

	"go.viam.com/test"

	"recyclegame/internal/config"
	"recyclegame/internal/detect"
)

func TestGameSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		ClassNames: []string{"can", "glass"},
		EasyTime:   200 * time.Second,
		NormalTime: 100 * time.Second,
		HardTime:   30 * time.Second,
	}
	settings := GameSettings(cfg)

	test.That(t, settings.Classes, test.ShouldResemble, detect.ClassTable{"can", "glass"})
	test.That(t, settings.Difficulties, test.ShouldHaveLength, 3)
	test.That(t, settings.Difficulties[2].TimeLimit, test.ShouldEqual, 30*time.Second)
	test.That(t, settings.DefaultDifficulty, test.ShouldEqual, "normal")
	test.That(t, settings.WarningWindow, test.ShouldEqual, 10*time.Second)
}

func TestNewPipelineFromConfig(t *testing.T) {
	cfg := &config.Config{
		ClassNames:     []string{"can", "can", "paper", "plastic-bottle"},
		InputSize:      320,
		CandidateCount: 2100,
		ScoreThreshold: 0.5,
		IoUThreshold:   0.45,
		MaxDetections:  100,
	}
	p := NewPipeline(cfg)
	test.That(t, p.Decoder.ExpectedLen(), test.ShouldEqual, 8*2100)
	test.That(t, p.Decoder.InputSize, test.ShouldEqual, 320.0)
	test.That(t, p.Suppressor.IoUThreshold, test.ShouldEqual, 0.45)
	test.That(t, p.Suppressor.MaxDetections, test.ShouldEqual, 100)
}

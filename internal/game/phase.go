package game

import (
	"strings"

	"github.com/pkg/errors"
)

// Phase is a stage of a game session.
type Phase int

const (
	PhaseConfiguring Phase = iota
	PhaseReady
	PhasePlaying
	PhaseEnded
)

var phaseNames = map[Phase]string{
	PhaseConfiguring: "configuring",
	PhaseReady:       "ready",
	PhasePlaying:     "playing",
	PhaseEnded:       "ended",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if strings.EqualFold(name, string(text)) {
			*p = phase
			return nil
		}
	}
	return errors.Errorf("unknown phase %q", text)
}

// Outcome is how a game ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeCompleted Outcome = "completed"
)

// Tier grades a completed game by how much of the time limit it used.
type Tier string

const (
	TierNone     Tier = ""
	TierTop      Tier = "top"
	TierMiddle   Tier = "middle"
	TierBaseline Tier = "baseline"
)

// Verdict grades a scoring game by score against target.
type Verdict string

const (
	VerdictNone     Verdict = ""
	VerdictSuccess  Verdict = "success"
	VerdictNearMiss Verdict = "near_miss"
	VerdictRetry    Verdict = "retry"
)

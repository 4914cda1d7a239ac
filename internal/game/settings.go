package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"

	"recyclegame/internal/detect"
)

var (
	// ErrInvalidTransition is returned for an action the current phase does not accept.
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	// ErrNoDifficulty is returned when a game is confirmed before a difficulty was chosen.
	ErrNoDifficulty = errors.New("no difficulty selected")
	// ErrUnknownDifficulty means the default difficulty was applied instead.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrUnknownMode means the default mode was applied instead.
	ErrUnknownMode = errors.New("unknown game mode")
)

// IsFallback reports whether err describes a configuration value that was
// replaced by its default. The action still took effect.
func IsFallback(err error) bool {
	return errors.Is(err, ErrUnknownDifficulty) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, detect.ErrUnknownClass)
}

// TimerDiscipline selects how the clock is shown and when the game ends.
type TimerDiscipline int

const (
	// CountUp shows elapsed time and ends at the cap.
	CountUp TimerDiscipline = iota
	// CountDown shows remaining time and ends when it reaches zero.
	CountDown
)

func (d TimerDiscipline) String() string {
	if d == CountDown {
		return "count_down"
	}
	return "count_up"
}

// MarshalText implements encoding.TextMarshaler.
func (d TimerDiscipline) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TimerDiscipline) UnmarshalText(text []byte) error {
	switch string(text) {
	case "count_up":
		*d = CountUp
	case "count_down":
		*d = CountDown
	default:
		return errors.Errorf("unknown timer %q", text)
	}
	return nil
}

// Mode is a game variant.
type Mode struct {
	Name  string
	Timer TimerDiscipline
	// Scoring modes award points per tracked sighting and grade against a target.
	Scoring bool
	// AllClasses modes ignore the object selection.
	AllClasses bool
}

var (
	// ModeHunt: find the chosen object type before the cap, finish early for a better tier.
	ModeHunt = Mode{Name: "hunt", Timer: CountUp}
	// ModeExplore: every class is shown and counted.
	ModeExplore = Mode{Name: "explore", Timer: CountUp, AllClasses: true}
	// ModeScoreAttack: each newly sighted object scores; reach the target before time runs out.
	ModeScoreAttack = Mode{Name: "score-attack", Timer: CountDown, Scoring: true}
)

// Modes lists the built-in modes.
var Modes = []Mode{ModeHunt, ModeExplore, ModeScoreAttack}

// LookupMode finds a built-in mode by name.
func LookupMode(name string) (Mode, bool) {
	for _, m := range Modes {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return Mode{}, false
}

// Difficulty fixes the time limit of a game.
type Difficulty struct {
	Name      string
	TimeLimit time.Duration
}

// Settings is the per-process game configuration.
type Settings struct {
	Difficulties      []Difficulty
	DefaultDifficulty string
	DefaultMode       Mode
	Classes           detect.ClassTable
	// WarningWindow is how long before the limit the snapshot raises its warning flag.
	WarningWindow time.Duration
}

// DefaultSettings returns the easy/normal/hard limits of the original game.
func DefaultSettings() Settings {
	return Settings{
		Difficulties: []Difficulty{
			{Name: "easy", TimeLimit: 120 * time.Second},
			{Name: "normal", TimeLimit: 90 * time.Second},
			{Name: "hard", TimeLimit: 60 * time.Second},
		},
		DefaultDifficulty: "normal",
		DefaultMode:       ModeHunt,
		Classes:           detect.DefaultClasses,
		WarningWindow:     10 * time.Second,
	}
}

func (s Settings) difficulty(name string) (Difficulty, bool) {
	for _, d := range s.Difficulties {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return Difficulty{}, false
}

// TargetGenerator draws target scores for scoring modes. Draws are uniform
// over Choices, or over [Min, Max] when Choices is empty.
type TargetGenerator struct {
	Choices []int
	Min     int
	Max     int
	rng     *rand.Rand
}

// DefaultTargets is the discrete target set.
var DefaultTargets = []int{50, 100, 150, 200}

// NewTargetGenerator draws from a fixed set using rng.
func NewTargetGenerator(choices []int, rng *rand.Rand) *TargetGenerator {
	if len(choices) == 0 {
		choices = DefaultTargets
	}
	return &TargetGenerator{Choices: choices, rng: rng}
}

// NewRangeTargetGenerator draws an integer in [lo, hi] using rng.
func NewRangeTargetGenerator(lo, hi int, rng *rand.Rand) *TargetGenerator {
	if hi < lo {
		lo, hi = hi, lo
	}
	return &TargetGenerator{Min: lo, Max: hi, rng: rng}
}

// Next returns the next target.
func (g *TargetGenerator) Next() int {
	if len(g.Choices) > 0 {
		return g.Choices[g.rng.Intn(len(g.Choices))]
	}
	return g.Min + g.rng.Intn(g.Max-g.Min+1)
}

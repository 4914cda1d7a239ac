package game

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"recyclegame/internal/detect"
)

// Machine owns the phase, timer and score of one game session.
//
// Time is always derived from the clock: while the game runs, elapsed is
// now minus the start timestamp, so missed or late ticks never skew it.
// Suspending freezes elapsed; resuming moves the start timestamp forward by
// the paused time.
//
// Machine is not safe for concurrent use.
type Machine struct {
	clock    clock.Clock
	settings Settings
	targets  *TargetGenerator

	phase      Phase
	mode       Mode
	difficulty *Difficulty
	filter     detect.Filter
	target     int
	score      int
	counts     map[string]int
	visible    int
	sessionID  string

	startedAt time.Time
	elapsed   time.Duration
	running   bool
	endedAt   time.Time

	outcome Outcome
	tier    Tier
	verdict Verdict
}

// NewMachine returns a machine in the configuring phase.
func NewMachine(settings Settings, clk clock.Clock, targets *TargetGenerator) *Machine {
	if clk == nil {
		clk = clock.New()
	}
	m := &Machine{
		clock:    clk,
		settings: settings,
		targets:  targets,
	}
	m.clear()
	return m
}

// clear resets every session-scoped field and enters configuring.
func (m *Machine) clear() {
	m.phase = PhaseConfiguring
	m.mode = m.settings.DefaultMode
	if m.mode.Name == "" {
		m.mode = ModeHunt
	}
	m.difficulty = nil
	m.filter = detect.Filter{}
	m.target = 0
	m.score = 0
	m.counts = map[string]int{}
	m.visible = 0
	m.sessionID = ""
	m.startedAt = time.Time{}
	m.elapsed = 0
	m.running = false
	m.endedAt = time.Time{}
	m.outcome = OutcomeNone
	m.tier = TierNone
	m.verdict = VerdictNone
}

func (m *Machine) require(phase Phase, action string) error {
	if m.phase != phase {
		return errors.Wrapf(ErrInvalidTransition, "%s while %s", action, m.phase)
	}
	return nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Mode returns the selected mode.
func (m *Machine) Mode() Mode { return m.mode }

// Filter returns the object filter of the session.
func (m *Machine) Filter() detect.Filter { return m.filter }

// Score returns the accumulated score.
func (m *Machine) Score() int { return m.score }

// Running reports whether the game clock is running.
func (m *Machine) Running() bool { return m.running }

// SelectMode picks the game variant. An unknown name selects the default
// mode and returns ErrUnknownMode.
func (m *Machine) SelectMode(name string) error {
	if err := m.require(PhaseConfiguring, "select mode"); err != nil {
		return err
	}
	mode, ok := LookupMode(name)
	if !ok {
		m.mode = m.settings.DefaultMode
		return errors.Wrapf(ErrUnknownMode, "%q, using %s", name, m.mode.Name)
	}
	m.mode = mode
	return nil
}

// SelectObject restricts detections to the given label(s). Unknown labels
// fall back to showing every class and return the filter error. Modes that
// show every class drop the selection on Confirm.
func (m *Machine) SelectObject(value string) error {
	if err := m.require(PhaseConfiguring, "select object"); err != nil {
		return err
	}
	filter, err := detect.ParseFilter(value, m.settings.Classes)
	m.filter = filter
	return err
}

// SelectDifficulty fixes the time limit. An unknown name selects the default
// difficulty and returns ErrUnknownDifficulty.
func (m *Machine) SelectDifficulty(name string) error {
	if err := m.require(PhaseConfiguring, "select difficulty"); err != nil {
		return err
	}
	if d, ok := m.settings.difficulty(name); ok {
		m.difficulty = &d
		return nil
	}
	d, ok := m.settings.difficulty(m.settings.DefaultDifficulty)
	if !ok {
		if len(m.settings.Difficulties) == 0 {
			return errors.Wrapf(ErrNoDifficulty, "no difficulties configured")
		}
		d = m.settings.Difficulties[0]
	}
	m.difficulty = &d
	return errors.Wrapf(ErrUnknownDifficulty, "%q, using %s", name, d.Name)
}

// Confirm fixes the session parameters and moves to ready. Scoring modes
// draw their target here.
func (m *Machine) Confirm() error {
	if err := m.require(PhaseConfiguring, "confirm"); err != nil {
		return err
	}
	if m.difficulty == nil {
		return ErrNoDifficulty
	}
	if m.mode.Scoring {
		if m.targets == nil {
			return errors.New("scoring mode needs a target generator")
		}
		m.target = m.targets.Next()
	}
	if m.mode.AllClasses {
		m.filter = detect.Filter{}
	}
	m.phase = PhaseReady
	return nil
}

// Start begins play and captures the start timestamp.
func (m *Machine) Start() error {
	if err := m.require(PhaseReady, "start"); err != nil {
		return err
	}
	m.phase = PhasePlaying
	m.sessionID = uuid.NewString()
	m.score = 0
	m.counts = map[string]int{}
	m.visible = 0
	m.elapsed = 0
	m.startedAt = m.clock.Now()
	m.running = true
	return nil
}

// Elapsed returns the play time so far, excluding suspended time.
func (m *Machine) Elapsed() time.Duration {
	if m.running {
		return m.clock.Since(m.startedAt)
	}
	return m.elapsed
}

// Limit returns the time limit of the selected difficulty.
func (m *Machine) Limit() time.Duration {
	if m.difficulty == nil {
		return 0
	}
	return m.difficulty.TimeLimit
}

// Remaining returns the time left before the limit, never negative.
func (m *Machine) Remaining() time.Duration {
	remaining := m.Limit() - m.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tick re-derives time from the clock and ends the game once the limit is
// reached. It reports whether this call ended the game.
func (m *Machine) Tick() bool {
	if m.phase != PhasePlaying || !m.running {
		return false
	}
	m.elapsed = m.clock.Since(m.startedAt)
	if m.elapsed >= m.Limit() {
		m.end(OutcomeTimedOut)
		return true
	}
	return false
}

// Finish ends the game on the player's request. If the limit already
// passed the game ends as timed out.
func (m *Machine) Finish() error {
	if err := m.require(PhasePlaying, "finish"); err != nil {
		return err
	}
	m.elapsed = m.Elapsed()
	if m.elapsed >= m.Limit() {
		m.end(OutcomeTimedOut)
		return nil
	}
	m.end(OutcomeCompleted)
	return nil
}

func (m *Machine) end(outcome Outcome) {
	if m.elapsed > m.Limit() {
		m.elapsed = m.Limit()
	}
	m.running = false
	m.phase = PhaseEnded
	m.endedAt = m.clock.Now()
	m.outcome = outcome
	m.tier = TierNone
	if outcome == OutcomeCompleted {
		m.tier = ClassifyTier(m.elapsed, m.Limit())
	}
	m.verdict = VerdictNone
	if m.mode.Scoring {
		m.verdict = ClassifyScore(m.score, m.target)
	}
}

// Suspend freezes the game clock. It is a no-op unless the game is running.
func (m *Machine) Suspend() bool {
	if m.phase != PhasePlaying || !m.running {
		return false
	}
	m.elapsed = m.clock.Since(m.startedAt)
	m.running = false
	return true
}

// Resume restarts a suspended game clock so that paused time is not counted.
func (m *Machine) Resume() bool {
	if m.phase != PhasePlaying || m.running {
		return false
	}
	m.startedAt = m.clock.Now().Add(-m.elapsed)
	m.running = true
	return true
}

// AddScore adds points while playing.
func (m *Machine) AddScore(points int) {
	if m.phase == PhasePlaying {
		m.score += points
	}
}

// ObserveCounts records the per-label counts visible in the latest frame.
func (m *Machine) ObserveCounts(counts map[string]int) {
	if m.phase != PhasePlaying {
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	m.counts = counts
	m.visible = total
}

// Reset returns from ended to configuring ("play again").
func (m *Machine) Reset() error {
	if err := m.require(PhaseEnded, "reset"); err != nil {
		return err
	}
	m.clear()
	return nil
}

// Exit abandons the session from any phase and returns to configuring.
// It reports whether a running game was abandoned.
func (m *Machine) Exit() bool {
	abandoned := m.phase == PhasePlaying
	m.clear()
	return abandoned
}

// Result returns the record of a finished game.
func (m *Machine) Result() (Result, bool) {
	if m.phase != PhaseEnded {
		return Result{}, false
	}
	return Result{
		SessionID:  m.sessionID,
		Mode:       m.mode.Name,
		Difficulty: m.difficulty.Name,
		Object:     m.filter.String(),
		Outcome:    m.outcome,
		Tier:       m.tier,
		Verdict:    m.verdict,
		Elapsed:    m.elapsed,
		Limit:      m.Limit(),
		Score:      m.score,
		Target:     m.target,
		EndedAt:    m.endedAt,
	}, true
}

// Result is the record of one finished game.
type Result struct {
	SessionID  string
	Mode       string
	Difficulty string
	Object     string
	Outcome    Outcome
	Tier       Tier
	Verdict    Verdict
	Elapsed    time.Duration
	Limit      time.Duration
	Score      int
	Target     int
	EndedAt    time.Time
}

// ClassifyTier grades a completed game. Boundaries are inclusive: using
// exactly half the limit is still top tier, exactly 80% still middle.
func ClassifyTier(elapsed, limit time.Duration) Tier {
	if limit <= 0 {
		return TierBaseline
	}
	switch {
	case 2*elapsed <= limit:
		return TierTop
	case 5*elapsed <= 4*limit:
		return TierMiddle
	default:
		return TierBaseline
	}
}

// ClassifyScore grades a scoring game against its target.
func ClassifyScore(score, target int) Verdict {
	switch {
	case score >= target:
		return VerdictSuccess
	case 10*score >= 7*target:
		return VerdictNearMiss
	default:
		return VerdictRetry
	}
}

// Message returns the end-of-game text for an outcome.
func Message(r Result) string {
	seconds := int(r.Elapsed / time.Second)
	switch r.Verdict {
	case VerdictSuccess:
		return fmt.Sprintf("Target reached! %d of %d points in %ds!", r.Score, r.Target, seconds)
	case VerdictNearMiss:
		return fmt.Sprintf("So close! %d of %d points.", r.Score, r.Target)
	case VerdictRetry:
		return fmt.Sprintf("Keep practicing! %d of %d points.", r.Score, r.Target)
	}
	if r.Outcome == OutcomeTimedOut {
		return fmt.Sprintf("Time's up! You used all %d seconds!", int(r.Limit/time.Second))
	}
	switch r.Tier {
	case TierTop:
		return fmt.Sprintf("Amazing speed! Finished in %ds!", seconds)
	case TierMiddle:
		return fmt.Sprintf("Good job! Finished in %ds!", seconds)
	case TierBaseline:
		return fmt.Sprintf("Complete! Finished in %ds!", seconds)
	}
	return ""
}

package game

import "time"

// Snapshot is the presenter-facing view of a session at one instant.
type Snapshot struct {
	SessionID        string          `json:"sessionId,omitempty"`
	Phase            Phase           `json:"phase"`
	Mode             string          `json:"mode"`
	Timer            TimerDiscipline `json:"timer"`
	Difficulty       string          `json:"difficulty,omitempty"`
	Object           string          `json:"object"`
	ElapsedSeconds   int             `json:"elapsedSeconds"`
	RemainingSeconds int             `json:"remainingSeconds"`
	LimitSeconds     int             `json:"limitSeconds"`
	// ClockSeconds is what the HUD shows: elapsed for count-up, remaining for count-down.
	ClockSeconds int            `json:"clockSeconds"`
	Warning      bool           `json:"warning"`
	Paused       bool           `json:"paused"`
	Score        int            `json:"score"`
	Target       int            `json:"target,omitempty"`
	Visible      int            `json:"visible"`
	Counts       map[string]int `json:"counts,omitempty"`
	Outcome      Outcome        `json:"outcome,omitempty"`
	Tier         Tier           `json:"tier,omitempty"`
	Verdict      Verdict        `json:"verdict,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	elapsed := m.Elapsed()
	if limit := m.Limit(); limit > 0 && elapsed > limit {
		elapsed = limit
	}
	remaining := m.Remaining()

	s := Snapshot{
		SessionID:        m.sessionID,
		Phase:            m.phase,
		Mode:             m.mode.Name,
		Timer:            m.mode.Timer,
		Object:           m.filter.String(),
		ElapsedSeconds:   int(elapsed / time.Second),
		RemainingSeconds: ceilSeconds(remaining),
		LimitSeconds:     int(m.Limit() / time.Second),
		Paused:           m.phase == PhasePlaying && !m.running,
		Score:            m.score,
		Target:           m.target,
		Visible:          m.visible,
		Counts:           m.counts,
		Outcome:          m.outcome,
		Tier:             m.tier,
		Verdict:          m.verdict,
	}
	if m.difficulty != nil {
		s.Difficulty = m.difficulty.Name
	}

	s.ClockSeconds = s.ElapsedSeconds
	if m.mode.Timer == CountDown {
		s.ClockSeconds = s.RemainingSeconds
	}
	if m.phase == PhasePlaying && remaining > 0 && remaining <= m.settings.WarningWindow {
		s.Warning = true
	}
	if r, ok := m.Result(); ok {
		s.Message = Message(r)
	}
	return s
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

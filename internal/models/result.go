package models

import (
	"time"

	"recyclegame/internal/game"
)

// GameResult represents one finished game.
type GameResult struct {
	ID             int64     `json:"id"`
	SessionID      string    `json:"session_id"`
	Mode           string    `json:"mode"`
	Difficulty     string    `json:"difficulty"`
	Object         string    `json:"object"`
	Outcome        string    `json:"outcome"`
	Tier           string    `json:"tier,omitempty"`
	Verdict        string    `json:"verdict,omitempty"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	LimitSeconds   int       `json:"limit_seconds"`
	Score          int       `json:"score"`
	Target         int       `json:"target,omitempty"`
	Message        string    `json:"message"`
	EndedAt        time.Time `json:"ended_at"`
}

// NewGameResult converts a finished game into its stored form.
func NewGameResult(r game.Result) GameResult {
	return GameResult{
		SessionID:      r.SessionID,
		Mode:           r.Mode,
		Difficulty:     r.Difficulty,
		Object:         r.Object,
		Outcome:        string(r.Outcome),
		Tier:           string(r.Tier),
		Verdict:        string(r.Verdict),
		ElapsedSeconds: r.Elapsed.Seconds(),
		LimitSeconds:   int(r.Limit / time.Second),
		Score:          r.Score,
		Target:         r.Target,
		Message:        game.Message(r),
		EndedAt:        r.EndedAt,
	}
}

// ResultFilter contains filtering options for querying results.
type ResultFilter struct {
	Mode       string
	Difficulty string
	Outcome    string
	Limit      int
	Offset     int
}

// ResultStats summarizes stored results.
type ResultStats struct {
	TotalGames int            `json:"total_games"`
	PerMode    map[string]int `json:"per_mode"`
	PerOutcome map[string]int `json:"per_outcome"`
	BestScore  int            `json:"best_score"`
}

package dto

import "recyclegame/internal/models"

// ResultsPage is one page of the finished-game history.
type ResultsPage struct {
	Results []models.GameResult `json:"results"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
}

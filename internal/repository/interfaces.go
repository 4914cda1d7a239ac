package repository

import "recyclegame/internal/models"

// ResultRepository defines the interface for finished-game storage.
type ResultRepository interface {
	// Create operations
	Insert(result *models.GameResult) (int64, error)
	InsertBatch(results []models.GameResult) error

	// Read operations
	GetBySessionID(sessionID string) (*models.GameResult, error)
	GetAll(filter *models.ResultFilter) ([]models.GameResult, error)
	GetTotalCount(filter *models.ResultFilter) (int, error)
	GetStats() (*models.ResultStats, error)

	// Delete operations
	DeleteAll() error
}

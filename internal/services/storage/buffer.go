package storage

import (
	"context"
	"sync"
	"time"

	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/models"
	"recyclegame/internal/repository"
)

// ResultBuffer collects finished games and writes them to the repository in batches.
type ResultBuffer struct {
	repo        repository.ResultRepository
	results     []models.GameResult
	bufferLimit int
	logger      *logger.Logger
	mu          sync.Mutex
}

func NewResultBuffer(repo repository.ResultRepository, bufferLimit int, logger *logger.Logger) *ResultBuffer {
	if bufferLimit <= 0 {
		bufferLimit = 1
	}
	return &ResultBuffer{
		repo:        repo,
		bufferLimit: bufferLimit,
		results:     make([]models.GameResult, 0),
		logger:      logger,
	}
}

// Run flushes the buffer every flushInterval seconds until ctx is cancelled,
// then flushes once more.
func (s *ResultBuffer) Run(ctx context.Context, flushInterval int) error {
	if flushInterval <= 0 {
		flushInterval = 30
	}
	ticker := time.NewTicker(time.Duration(flushInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-ctx.Done():
			s.Flush()
			return nil
		}
	}
}

// Add buffers a finished game. A full buffer is flushed first.
func (s *ResultBuffer) Add(result game.Result) {
	s.mu.Lock()
	full := len(s.results) >= s.bufferLimit
	s.mu.Unlock()
	if full {
		s.Flush()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, models.NewGameResult(result))
	s.logger.Info("Result buffer size: %d/%d", len(s.results), s.bufferLimit)
}

// Pending returns the number of buffered results.
func (s *ResultBuffer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Flush writes buffered results. On failure they stay buffered for the next flush.
func (s *ResultBuffer) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.results) == 0 {
		return
	}

	if err := s.repo.InsertBatch(s.results); err != nil {
		s.logger.Error("Error saving %d results: %v", len(s.results), err)
		return
	}

	s.logger.Info("Flushed %d results to database", len(s.results))
	s.results = s.results[:0]
}

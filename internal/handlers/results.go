package handlers

import (
	"net/http"
	"strconv"

	"recyclegame/internal/dto"
	"recyclegame/internal/logger"
	"recyclegame/internal/models"
	"recyclegame/internal/repository"
)

// ResultsHandler pages through finished games, newest first. Supports
// page, limit, mode, difficulty and outcome query parameters.
func ResultsHandler(repo repository.ResultRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 20)

		filter := &models.ResultFilter{
			Mode:       q.Get("mode"),
			Difficulty: q.Get("difficulty"),
			Outcome:    q.Get("outcome"),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}

		results, err := repo.GetAll(filter)
		if err != nil {
			logger.Error("Error reading results: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		total, err := repo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting results: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := dto.ResultsPage{Results: results, Total: total, Page: page, Limit: limit}
		if err := writeJSON(w, http.StatusOK, data); err != nil {
			logger.Error("Error encoding results: %v", err)
		}
	}
}

// ResultStatsHandler summarizes finished games.
func ResultStatsHandler(repo repository.ResultRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.GetStats()
		if err != nil {
			logger.Error("Error reading result stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if err := writeJSON(w, http.StatusOK, stats); err != nil {
			logger.Error("Error encoding result stats: %v", err)
		}
	}
}

// atoiDefault parses a positive integer, or returns def.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"recyclegame/internal/dto"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/services"
	"recyclegame/internal/session"
)

const controlTimeout = 5 * time.Second

// Controller is the part of the manager the HTTP surface talks to.
type Controller interface {
	Do(ctx context.Context, cmd session.Command) (game.Snapshot, error)
	State(ctx context.Context) (game.Snapshot, error)
}

// controlStatus maps a rejected command to an HTTP status.
func controlStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidTransition), errors.Is(err, game.ErrNoDifficulty):
		return http.StatusConflict
	case errors.Is(err, services.ErrStopped),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func runControl(ctx context.Context, ctrl Controller, msg dto.ControlMessage) (dto.ControlResponse, int) {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()

	snapshot, err := ctrl.Do(ctx, session.Command{Action: msg.Action, Value: msg.Value})
	resp := dto.ControlResponse{Type: "control", OK: err == nil, State: snapshot}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp, controlStatus(err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// ControlHandler accepts a ControlMessage as a JSON POST body.
func ControlHandler(ctrl Controller, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var msg dto.ControlMessage
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&msg); err != nil {
			http.Error(w, "Invalid control message", http.StatusBadRequest)
			return
		}

		resp, status := runControl(r.Context(), ctrl, msg)
		if status != http.StatusOK {
			logger.Warning("⚠️  Control %q rejected: %s", msg.Action, resp.Error)
		}
		if err := writeJSON(w, status, resp); err != nil {
			logger.Error("Error encoding control response: %v", err)
		}
	}
}

// StateHandler returns the current game snapshot.
func StateHandler(ctrl Controller, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), controlTimeout)
		defer cancel()

		snapshot, err := ctrl.State(ctx)
		if err != nil {
			logger.Error("Error reading game state: %v", err)
			http.Error(w, "Game loop unavailable", controlStatus(err))
			return
		}
		if err := writeJSON(w, http.StatusOK, snapshot); err != nil {
			logger.Error("Error encoding state: %v", err)
		}
	}
}

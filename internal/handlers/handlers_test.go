package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"recyclegame/internal/config"
	"recyclegame/internal/dto"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/models"
	"recyclegame/internal/repository/sqlite"
	"recyclegame/internal/services"
	"recyclegame/internal/session"
)

type fakeController struct {
	got  []session.Command
	err  error
	snap game.Snapshot
}

func (c *fakeController) Do(_ context.Context, cmd session.Command) (game.Snapshot, error) {
	c.got = append(c.got, cmd)
	return c.snap, c.err
}

func (c *fakeController) State(context.Context) (game.Snapshot, error) {
	return c.snap, c.err
}

func postControl(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, dto.ControlResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/control", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp dto.ControlResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		test.That(t, json.Unmarshal(rec.Body.Bytes(), &resp), test.ShouldBeNil)
	}
	return rec, resp
}

func TestControlHandlerAppliesCommand(t *testing.T) {
	ctrl := &fakeController{snap: game.Snapshot{Phase: game.PhaseReady, Mode: "hunt"}}
	h := ControlHandler(ctrl, logger.Discard())

	rec, resp := postControl(t, h, `{"action":"difficulty","value":"hard"}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.OK, test.ShouldBeTrue)
	test.That(t, resp.State.Phase, test.ShouldEqual, game.PhaseReady)
	test.That(t, ctrl.got, test.ShouldResemble, []session.Command{{Action: "difficulty", Value: "hard"}})
}

func TestControlHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.Wrap(game.ErrInvalidTransition, "start"), http.StatusConflict},
		{errors.Wrap(game.ErrNoDifficulty, "confirm"), http.StatusConflict},
		{errors.Wrap(session.ErrUnknownAction, "fly"), http.StatusBadRequest},
		{services.ErrStopped, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ctrl := &fakeController{err: tc.err}
		rec, resp := postControl(t, ControlHandler(ctrl, logger.Discard()), `{"action":"start"}`)
		test.That(t, rec.Code, test.ShouldEqual, tc.status)
		test.That(t, resp.OK, test.ShouldBeFalse)
		test.That(t, resp.Error, test.ShouldNotEqual, "")
	}
}

func TestControlHandlerRejectsBadRequests(t *testing.T) {
	h := ControlHandler(&fakeController{}, logger.Discard())

	rec, _ := postControl(t, h, `not json`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodGet, "/api/control", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusMethodNotAllowed)
}

func TestStateHandler(t *testing.T) {
	ctrl := &fakeController{snap: game.Snapshot{Phase: game.PhasePlaying, Score: 40, Timer: game.CountDown}}
	rec := httptest.NewRecorder()
	StateHandler(ctrl, logger.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	var snap game.Snapshot
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &snap), test.ShouldBeNil)
	test.That(t, snap.Phase, test.ShouldEqual, game.PhasePlaying)
	test.That(t, snap.Timer, test.ShouldEqual, game.CountDown)
	test.That(t, snap.Score, test.ShouldEqual, 40)
}

func TestResultsHandlerPages(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "results.db"))
	test.That(t, err, test.ShouldBeNil)
	defer db.Close()
	repo := sqlite.NewResultRepository(db)

	var batch []models.GameResult
	for i := 0; i < 5; i++ {
		batch = append(batch, models.GameResult{
			SessionID:  string(rune('a' + i)),
			Mode:       "hunt",
			Difficulty: "easy",
			Object:     "all",
			Outcome:    "completed",
			EndedAt:    time.Date(2026, 3, 1, 10, i, 0, 0, time.UTC),
		})
	}
	test.That(t, repo.InsertBatch(batch), test.ShouldBeNil)

	rec := httptest.NewRecorder()
	ResultsHandler(repo, logger.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results?page=2&limit=2", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)

	var page dto.ResultsPage
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &page), test.ShouldBeNil)
	test.That(t, page.Total, test.ShouldEqual, 5)
	test.That(t, page.Page, test.ShouldEqual, 2)
	test.That(t, page.Results, test.ShouldHaveLength, 2)
	test.That(t, page.Results[0].SessionID, test.ShouldEqual, "c")

	rec = httptest.NewRecorder()
	ResultStatsHandler(repo, logger.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/stats", nil))
	var stats models.ResultStats
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &stats), test.ShouldBeNil)
	test.That(t, stats.TotalGames, test.ShouldEqual, 5)
}

func TestLogsHandlers(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewLogger(&config.Config{LogDirectory: dir})
	defer log.Close()
	log.Error("something broke")

	rec := httptest.NewRecorder()
	LogsHandler(log, logger.ErrorFile).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/error", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Body.String(), test.ShouldContainSubstring, "something broke")

	rec = httptest.NewRecorder()
	ClearLogsHandler(log, logger.ErrorFile).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logs/error/clear", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)

	rec = httptest.NewRecorder()
	LogsHandler(log, "missing.log").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/missing", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)
}

func TestAtoiDefault(t *testing.T) {
	test.That(t, atoiDefault("10", 5), test.ShouldEqual, 10)
	test.That(t, atoiDefault("", 5), test.ShouldEqual, 5)
	test.That(t, atoiDefault("-1", 5), test.ShouldEqual, 5)
	test.That(t, atoiDefault("12abc", 5), test.ShouldEqual, 5)
}

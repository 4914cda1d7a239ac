// Package session binds the detection pipeline, the identity tracker and the
// game machine into one explicitly owned object.
//
// A Session is driven by a single scheduler goroutine. Every method is
// re-entrant from that goroutine and none of them block.
package session

import (
	"strings"

	"github.com/pkg/errors"

	"recyclegame/internal/detect"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/tracker"
)

// Control actions accepted by Dispatch.
const (
	ActionMode       = "mode"
	ActionObject     = "object"
	ActionDifficulty = "difficulty"
	ActionConfirm    = "confirm"
	ActionStart      = "start"
	ActionFinish     = "finish"
	ActionReset      = "reset"
	ActionExit       = "exit"
	ActionVisibility = "visibility"
)

// Visibility values.
const (
	Hidden  = "hidden"
	Visible = "visible"
)

// ErrUnknownAction is returned for a command Dispatch does not understand.
var ErrUnknownAction = errors.New("unknown action")

// Command is one user or host request.
type Command struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// Presenter draws the current frame's detections and game state.
type Presenter interface {
	Render(detections []detect.Detection, snapshot game.Snapshot)
}

// ResultSink receives finished games.
type ResultSink interface {
	Add(result game.Result)
}

// Session is the state of one player's game plus its detection bookkeeping.
type Session struct {
	machine   *game.Machine
	tracker   *tracker.IdentityTracker
	pipeline  *detect.Pipeline
	presenter Presenter
	results   ResultSink
	logger    *logger.Logger

	epoch           uint64
	failures        int
	captureFailures int
	last            []detect.Detection
}

// New creates a session. presenter and results may be nil.
func New(machine *game.Machine, tr *tracker.IdentityTracker, pipeline *detect.Pipeline,
	presenter Presenter, results ResultSink, log *logger.Logger,
) *Session {
	if log == nil {
		log = logger.Discard()
	}
	return &Session{
		machine:   machine,
		tracker:   tr,
		pipeline:  pipeline,
		presenter: presenter,
		results:   results,
		logger:    log,
	}
}

// Epoch identifies the current detection run. It changes whenever the
// session stops or restarts detecting, so results launched under an older
// epoch can be recognized as stale.
func (s *Session) Epoch() uint64 { return s.epoch }

// Detecting reports whether detection cycles should run.
func (s *Session) Detecting() bool {
	return s.machine.Phase() == game.PhasePlaying && s.machine.Running()
}

// TimerRunning reports whether the periodic timer trigger should run.
func (s *Session) TimerRunning() bool {
	return s.Detecting()
}

// Failures returns the number of failed inference or decode cycles.
func (s *Session) Failures() int { return s.failures }

// CaptureFailures returns the number of failed frame grabs.
func (s *Session) CaptureFailures() int { return s.captureFailures }

// Snapshot returns the current game state.
func (s *Session) Snapshot() game.Snapshot { return s.machine.Snapshot() }

// Detections returns the detections of the last applied cycle.
func (s *Session) Detections() []detect.Detection { return s.last }

// Dispatch applies a command. Values replaced by their default are logged
// and do not fail the command.
func (s *Session) Dispatch(cmd Command) error {
	before := s.state()

	err := s.apply(cmd)
	if err != nil && game.IsFallback(err) {
		s.logger.Warning("⚠️  %s: %v", cmd.Action, err)
		err = nil
	}

	s.settle(before)
	if err != nil {
		return errors.Wrapf(err, "%s", cmd.Action)
	}
	return nil
}

func (s *Session) apply(cmd Command) error {
	switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
	case ActionMode:
		return s.machine.SelectMode(cmd.Value)
	case ActionObject:
		return s.machine.SelectObject(cmd.Value)
	case ActionDifficulty:
		return s.machine.SelectDifficulty(cmd.Value)
	case ActionConfirm:
		return s.machine.Confirm()
	case ActionStart:
		if err := s.machine.Start(); err != nil {
			return err
		}
		s.tracker.Reset()
		return nil
	case ActionFinish:
		return s.machine.Finish()
	case ActionReset:
		if err := s.machine.Reset(); err != nil {
			return err
		}
		s.tracker.Reset()
		return nil
	case ActionExit:
		s.tracker.Reset()
		if s.machine.Exit() {
			s.logger.Info("🚪 Game abandoned")
		}
		return nil
	case ActionVisibility:
		switch strings.ToLower(strings.TrimSpace(cmd.Value)) {
		case Hidden:
			s.machine.Suspend()
		case Visible:
			s.machine.Resume()
		default:
			return errors.Wrapf(ErrUnknownAction, "visibility %q", cmd.Value)
		}
		return nil
	}
	return errors.Wrapf(ErrUnknownAction, "%q", cmd.Action)
}

// ApplyInference consumes one detector output. It reports whether the
// result was used; stale results are dropped.
func (s *Session) ApplyInference(epoch uint64, output []float32, inferErr error) bool {
	if epoch != s.epoch || !s.Detecting() {
		return false
	}
	if inferErr != nil {
		s.failures++
		s.logger.Error("Inference failed (%d total): %v", s.failures, inferErr)
		return true
	}

	detections, err := s.pipeline.Process(output, s.machine.Filter())
	if err != nil {
		s.failures++
		s.logger.Error("Decode failed (%d total): %v", s.failures, err)
		return true
	}

	points, _ := s.tracker.Update(detections)
	if s.machine.Mode().Scoring {
		s.machine.AddScore(points)
	}
	s.machine.ObserveCounts(detect.CountByLabel(detections))
	s.last = detections
	s.render()
	return true
}

// RecordCaptureFailure notes a frame that could not be grabbed.
func (s *Session) RecordCaptureFailure(err error) {
	s.captureFailures++
	s.logger.Warning("⚠️  Frame capture failed (%d total): %v", s.captureFailures, err)
}

// TimerTick re-derives the clock and ends the game at the limit.
func (s *Session) TimerTick() {
	if !s.TimerRunning() {
		return
	}
	before := s.state()
	s.machine.Tick()
	s.settle(before)
}

type state struct {
	phase   game.Phase
	running bool
}

func (s *Session) state() state {
	return state{phase: s.machine.Phase(), running: s.machine.Running()}
}

// settle bumps the epoch on any run-state change, hands finished games to
// the sink and renders.
func (s *Session) settle(before state) {
	after := s.state()
	if after != before {
		s.epoch++
		if after.phase != game.PhasePlaying {
			s.last = nil
		}
		s.logger.Info("🎮 %s -> %s (running=%t)", before.phase, after.phase, after.running)
	}
	if before.phase != game.PhaseEnded && after.phase == game.PhaseEnded {
		if r, ok := s.machine.Result(); ok {
			s.logger.Info("🏁 %s", game.Message(r))
			if s.results != nil {
				s.results.Add(r)
			}
		}
	}
	s.render()
}

func (s *Session) render() {
	if s.presenter != nil {
		s.presenter.Render(s.last, s.machine.Snapshot())
	}
}

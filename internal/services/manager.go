package services

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"recyclegame/internal/config"
	"recyclegame/internal/detect"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/session"
)

// ErrStopped is returned by requests sent after the manager loop exited.
var ErrStopped = errors.New("manager stopped")

// Frame is one captured camera image. The receiver of a frame closes it.
type Frame interface {
	Close() error
}

// CaptureSource supplies frames.
type CaptureSource interface {
	// FrameReady reports whether a frame can be grabbed now.
	FrameReady() bool
	Grab() (Frame, error)
}

// Detector runs the model on a frame and returns the raw planar output.
type Detector interface {
	Infer(ctx context.Context, frame Frame) ([]float32, error)
}

// Encoder is a frame that can be encoded as a JPEG image.
type Encoder interface {
	Encode() ([]byte, error)
}

// ImageSink receives camera images for viewers.
type ImageSink interface {
	Stream(image []byte)
}

// Annotator draws detections onto an encoded image.
type Annotator func(image []byte, detections []detect.Detection) ([]byte, error)

// Presenter draws detections and game state.
type Presenter = session.Presenter

type request struct {
	cmd   session.Command
	query bool
	reply chan response
}

type response struct {
	snapshot game.Snapshot
	err      error
}

type inference struct {
	epoch  uint64
	output []float32
	image  []byte
	err    error
}

// Manager is the scheduler of one session. A single goroutine (Run) owns
// the session; handlers talk to it through Do and State.
type Manager struct {
	session  *session.Session
	detector Detector
	capture  CaptureSource
	clock    clock.Clock
	logger   *logger.Logger
	images   ImageSink
	annotate Annotator

	frameInterval time.Duration
	timerInterval time.Duration

	requests chan request
	results  chan inference
	done     chan struct{}

	// loop state, owned by Run
	ticker   *clock.Ticker
	cycle    <-chan time.Time
	inFlight bool
}

func NewManager(sess *session.Session, detector Detector, capture CaptureSource, clk clock.Clock, config *config.Config, logger *logger.Logger) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	manager := &Manager{
		session:       sess,
		detector:      detector,
		capture:       capture,
		clock:         clk,
		logger:        logger,
		frameInterval: config.FrameInterval,
		timerInterval: config.TimerInterval,
		requests:      make(chan request),
		results:       make(chan inference, 1),
		done:          make(chan struct{}),
	}
	if manager.timerInterval <= 0 {
		manager.timerInterval = time.Second
	}
	return manager
}

// StreamImages sends every analyzed camera frame to sink, annotated when
// annotate is set. It must be called before Run.
func (m *Manager) StreamImages(sink ImageSink, annotate Annotator) {
	m.images = sink
	m.annotate = annotate
}

// Run drives the session until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	defer m.stopTimer()

	m.logger.Info("🎬 Manager started - frame interval %v, timer interval %v", m.frameInterval, m.timerInterval)
	for {
		var tick <-chan time.Time
		if m.ticker != nil {
			tick = m.ticker.C
		}

		select {
		case <-ctx.Done():
			m.logger.Info("🛑 Manager stopped")
			return ctx.Err()

		case req := <-m.requests:
			var err error
			if !req.query {
				err = m.session.Dispatch(req.cmd)
				m.schedule()
			}
			req.reply <- response{snapshot: m.session.Snapshot(), err: err}

		case <-tick:
			m.session.TimerTick()
			m.schedule()

		case <-m.cycle:
			m.cycle = nil
			m.startCycle(ctx)

		case res := <-m.results:
			m.inFlight = false
			if m.session.ApplyInference(res.epoch, res.output, res.err) && res.err == nil && res.image != nil {
				m.stream(res.image)
			}
			m.schedule()
		}
	}
}

// schedule starts or stops the timer and arms the next detection cycle to
// match the session.
func (m *Manager) schedule() {
	if m.session.TimerRunning() {
		if m.ticker == nil {
			m.ticker = m.clock.Ticker(m.timerInterval)
		}
	} else {
		m.stopTimer()
	}

	if !m.session.Detecting() {
		m.cycle = nil
		return
	}
	if m.cycle == nil && !m.inFlight {
		m.cycle = m.clock.After(m.frameInterval)
	}
}

func (m *Manager) stream(image []byte) {
	if m.annotate != nil {
		annotated, err := m.annotate(image, m.session.Detections())
		if err != nil {
			m.logger.Warning("⚠️  Could not annotate frame: %v", err)
		} else {
			image = annotated
		}
	}
	m.images.Stream(image)
}

func (m *Manager) stopTimer() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

// startCycle grabs a frame and launches inference. Only one inference runs
// at a time; the next cycle is armed when its result is applied.
func (m *Manager) startCycle(ctx context.Context) {
	if !m.session.Detecting() {
		return
	}
	if !m.capture.FrameReady() {
		m.schedule()
		return
	}
	frame, err := m.capture.Grab()
	if err != nil {
		m.session.RecordCaptureFailure(err)
		m.schedule()
		return
	}

	m.inFlight = true
	epoch := m.session.Epoch()
	encoder, encodable := frame.(Encoder)
	encode := m.images != nil && encodable
	go func() {
		defer frame.Close()
		output, err := m.detector.Infer(ctx, frame)

		var image []byte
		if err == nil && encode {
			if image, err = encoder.Encode(); err != nil {
				m.logger.Warning("⚠️  Could not encode frame: %v", err)
				image, err = nil, nil
			}
		}
		select {
		case m.results <- inference{epoch: epoch, output: output, image: image, err: err}:
		case <-ctx.Done():
		}
	}()
}

// Do applies a control command and returns the resulting snapshot.
func (m *Manager) Do(ctx context.Context, cmd session.Command) (game.Snapshot, error) {
	return m.send(ctx, request{cmd: cmd})
}

// State returns the current snapshot.
func (m *Manager) State(ctx context.Context) (game.Snapshot, error) {
	return m.send(ctx, request{query: true})
}

func (m *Manager) send(ctx context.Context, req request) (game.Snapshot, error) {
	req.reply = make(chan response, 1)
	select {
	case m.requests <- req:
	case <-m.done:
		return game.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.snapshot, res.err
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
}

package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"recyclegame/internal/config"
	"recyclegame/internal/detect"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
	"recyclegame/internal/repository/sqlite"
	"recyclegame/internal/routes"
	"recyclegame/internal/services"
	"recyclegame/internal/services/ai"
	"recyclegame/internal/services/camera"
	"recyclegame/internal/services/storage"
	"recyclegame/internal/services/websocket"
	"recyclegame/internal/session"
	"recyclegame/internal/tracker"
)

type App struct {
	config       *config.Config
	logger       *logger.Logger
	db           *sqlite.DB
	results      *sqlite.ResultRepository
	resultBuffer *storage.ResultBuffer
	hubService   *websocket.HubService
	detector     *ai.YOLODetector
	camera       *camera.Camera
	manager      *services.Manager
}

// GameSettings builds the game configuration from the environment settings.
func GameSettings(cfg *config.Config) game.Settings {
	settings := game.DefaultSettings()
	settings.Classes = detect.ClassTable(cfg.ClassNames)
	settings.Difficulties = []game.Difficulty{
		{Name: "easy", TimeLimit: cfg.EasyTime},
		{Name: "normal", TimeLimit: cfg.NormalTime},
		{Name: "hard", TimeLimit: cfg.HardTime},
	}
	return settings
}

// NewPipeline builds the detection post-processing chain from the configuration.
func NewPipeline(cfg *config.Config) *detect.Pipeline {
	return detect.NewPipeline(detect.ClassTable(cfg.ClassNames), float64(cfg.InputSize),
		cfg.CandidateCount, cfg.ScoreThreshold, cfg.IoUThreshold, cfg.MaxDetections)
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "result database")
	}
	results := sqlite.NewResultRepository(db)
	buffer := storage.NewResultBuffer(results, cfg.ResultBufferLimit, log)
	hub := websocket.NewHubService(log)

	clk := clock.New()
	targets := game.NewTargetGenerator(cfg.TargetScores, rand.New(rand.NewSource(time.Now().UnixNano())))
	machine := game.NewMachine(GameSettings(cfg), clk, targets)
	identities := tracker.New(cfg.QuantizationGrid, cfg.PointsPerObject, cfg.TrackerGraceFrames)
	pipeline := NewPipeline(cfg)

	detector := ai.NewYOLODetector(cfg, log)
	if shape, err := detector.OutputShape(); err != nil {
		log.Warning("⚠️  Could not check detector output: %v", err)
	} else if err := pipeline.Decoder.CheckShape(shape); err != nil {
		log.Error("❌ Detector output does not match CLASS_NAMES/CANDIDATE_COUNT: %v", err)
	}

	sess := session.New(machine, identities, pipeline, hub, buffer, log)
	cam := camera.New(cfg, log)
	mng := services.NewManager(sess, detector, cam, clk, cfg, log)
	mng.StreamImages(hub, ai.DrawDetections)

	return &App{
		config:       cfg,
		logger:       log,
		db:           db,
		results:      results,
		resultBuffer: buffer,
		hubService:   hub,
		detector:     detector,
		camera:       cam,
		manager:      mng,
	}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := routes.SetupRoutes(a.manager, a.hubService, a.results, a.config, a.logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("🚀 Recycle Hunt Server\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🤖 AI Model: %s\n", a.config.ModelPath)
	fmt.Printf("📹 Camera: %d\n", a.config.CameraDevice)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.hubService.Run(ctx) })
	g.Go(func() error { return a.resultBuffer.Run(ctx, a.config.ResultFlushInterval) })
	g.Go(func() error {
		if err := a.manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.logger.Info("🛑 Server stopped")
	return multierr.Combine(err, a.Close())
}

// Close releases the camera, the model and the database.
func (a *App) Close() error {
	return multierr.Combine(
		a.camera.Close(),
		a.detector.Close(),
		a.db.Close(),
		a.logger.Close(),
	)
}

package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blueforce/skyshield/internal/airquality"
	"github.com/blueforce/skyshield/internal/airquality/sources"
	httpapi "github.com/blueforce/skyshield/internal/api/http"
	"github.com/blueforce/skyshield/internal/config"
	"github.com/blueforce/skyshield/internal/dispersion"
	"github.com/blueforce/skyshield/internal/export"
	"github.com/blueforce/skyshield/internal/metrics"
	"github.com/blueforce/skyshield/internal/scheduler"
	"github.com/blueforce/skyshield/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// The active threshold standard; unknown IDs are a startup error.
	profile, err := airquality.ProfileByID(cfg.ProfileID)
	if err != nil {
		zlog.Fatal("failed to resolve threshold profile", zap.Error(err))
	}

	units := airquality.NewUnitConverter()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Sources in priority order. Key-gated providers are only registered
	// when their key is configured, and rate limited to stay inside their
	// free-tier quotas.
	var srcs []airquality.Source
	if cfg.IQAirAPIKey != "" {
		srcs = append(srcs, sources.NewRateLimitedSource(
			sources.NewIQAirSource(httpClient, cfg.IQAirAPIKey, profile, units), 0.5, 1))
	} else {
		zlog.Warn("IQAIR_API_KEY not set; primary source disabled")
	}
	srcs = append(srcs, sources.NewOpenAQSource(httpClient, profile, units))
	if cfg.AirNowAPIKey != "" {
		srcs = append(srcs, sources.NewRateLimitedSource(
			sources.NewAirNowSource(httpClient, cfg.AirNowAPIKey, profile), 0.5, 1))
	}

	aggregator := airquality.NewAggregator(srcs, cfg.SufficiencyThreshold, zlog)

	// In-memory result store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	exporter, err := export.NewCSVExporter(cfg.ExportDir)
	if err != nil {
		zlog.Fatal("failed to create exporter", zap.Error(err))
	}

	estimator := dispersion.NewClient(cfg.HTTPTimeout)

	service := airquality.NewService(aggregator, estimator, memStore, exporter, zlog)

	loc := airquality.Location{
		Name: cfg.LocationName,
		City: cfg.LocationCity,
		Lat:  cfg.Lat,
		Lon:  cfg.Lon,
	}

	// Scheduler that periodically runs collection cycles.
	sched := scheduler.New(loc, cfg.UpdateInterval, cfg.CycleTimeout, service, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skyshield",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skyshield",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Prometheus metrics on a side port.
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("error during metrics shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

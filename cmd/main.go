package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron"

	"github.com/okian/poseflow/internal/adapters/http/api"
	"github.com/okian/poseflow/internal/adapters/http/swagger"
	"github.com/okian/poseflow/internal/adapters/repository"
	app "github.com/okian/poseflow/internal/app"
	"github.com/okian/poseflow/internal/config"
	"github.com/okian/poseflow/pkg/logger"
	"github.com/okian/poseflow/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := startService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Stop()

	jobs, err := startMetricsJobs(cfg, svc)
	if err != nil {
		return fmt.Errorf("failed to schedule metrics jobs: %w", err)
	}
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc, log.Named("api")),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the PostgreSQL session store.
var openStore = func(ctx context.Context, dsn string) (repository.Store, error) {
	return repository.OpenPostgres(ctx, dsn)
}

// startService builds and starts the service. A store opened here is closed
// again if the service fails to start.
func startService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithBodyWeight(cfg.BodyWeightKg),
	}
	var store repository.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = openStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		log.Info(ctx, "using postgres session store")
		opts = append(opts, app.WithStore(store))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		if store != nil {
			if cerr := store.Close(); cerr != nil {
				log.Error(ctx, "closing session store failed", logger.Error(cerr))
			}
		}
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

// newRouter registers the docs and business routes.
func newRouter(ctx context.Context, svc *app.Service, log logger.Logger) *mux.Router {
	r := mux.NewRouter()
	swagger.Register(ctx, r)
	api.NewServer(svc, log).Register(ctx, r)
	return r
}

// startMetricsJobs schedules the periodic system and service metric refreshes.
func startMetricsJobs(cfg *config.Config, svc *app.Service) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddFunc(cfg.SystemMetricsSchedule, updateSystemMetrics); err != nil {
		return nil, fmt.Errorf("system metrics schedule %q: %w", cfg.SystemMetricsSchedule, err)
	}
	if err := c.AddFunc(cfg.ServiceMetricsSchedule, func() { updateServiceMetrics(svc) }); err != nil {
		return nil, fmt.Errorf("service metrics schedule %q: %w", cfg.ServiceMetricsSchedule, err)
	}
	c.Start()
	return c, nil
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the gauges derived from service state.
// GetStats already publishes queue length and session count.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if queueSize, ok := stats["queueSize"].(int); ok {
		metrics.UpdateQueueCapacity(queueSize)
	}
}

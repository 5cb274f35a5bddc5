// Package service wires the scoring core, the attempt pipeline and the
// session store into the operations the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/poseflow/internal/adapters/mq/queue"
	"github.com/okian/poseflow/internal/adapters/mq/worker"
	"github.com/okian/poseflow/internal/adapters/repository"
	"github.com/okian/poseflow/internal/domain/catalog"
	"github.com/okian/poseflow/internal/domain/dedupe"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/scoring"
	"github.com/okian/poseflow/pkg/logger"
	"github.com/okian/poseflow/pkg/metrics"
)

const (
	stopTimeout         = 30 * time.Second
	defaultDrainTimeout = 10 * time.Second
)

// Service implements the API dependencies for the pose scorer.
type Service struct {
	mu sync.RWMutex

	catalog *catalog.Catalog
	scorer  *scoring.HeuristicScorer
	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	pending *inflight

	workerCount  int
	queueSize    int
	dedupeSize   int
	shardCount   int
	bodyWeightKg float64
	drainTimeout time.Duration
	now          func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:      catalog.New(),
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10_000,
		dedupeSize:   100_000,
		shardCount:   8,
		bodyWeightKg: scoring.DefaultBodyWeightKg,
		drainTimeout: defaultDrainTimeout,
		now:          time.Now,
		pending:      newInflight(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.scorer = scoring.NewHeuristicScorer(scoring.WithBodyWeight(s.bodyWeightKg))
	return s
}

// Start builds the attempt pipeline and launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	s.logger.Info(ctx, "starting pose scoring service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithShardCount(s.shardCount))
		s.logger.Info(ctx, "using in-memory session store", logger.Int("shards", s.shardCount))
	}
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	// Workers outlive the request that started the service; Stop drains them.
	s.pool = worker.NewPool(s.queue, s, s.scorer, s.store,
		worker.WithWorkers(s.workerCount),
		worker.WithLogger(s.logger.Named("workers")),
		worker.WithOnProcessed(func(job model.AttemptJob, _ error) { s.pending.done(job.SessionID) }),
	)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "pose scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Float64("body_weight_kg", s.bodyWeightKg),
	)
	return nil
}

// Stop closes intake, waits for queued attempts to be recorded and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping pose scoring service...")

	_ = s.queue.Close()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "workers stopped before draining", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing session store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "pose scoring service stopped")
}

// running returns the pipeline if the service is started.
func (s *Service) running() (*queue.InMemoryQueue, dedupe.Deduper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.queue, s.deduper, nil
}

func (s *Service) sessions() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"bodyWeightKg": s.bodyWeightKg,
		"poses":        len(s.catalog.Poses(context.Background(), "")),
	}
	if s.started {
		queueLen := s.queue.Len()
		sessions := s.store.Count(context.Background())

		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		stats["attemptsPending"] = s.pending.total()
		stats["sessions"] = sessions

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateRepositorySessions(sessions)
	}
	if totals, err := metrics.Totals(); err == nil {
		stats["attemptsScored"] = totals["attempts_scored_total"]
		stats["sessionsCompleted"] = totals["sessions_completed_total"]
	}
	return stats
}

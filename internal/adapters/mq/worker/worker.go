// Package worker scores queued pose attempts and records them on their session.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/poseflow/internal/adapters/mq/queue"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/scoring"
	"github.com/okian/poseflow/pkg/logger"
	"github.com/okian/poseflow/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// ErrShutdownTimeout is returned when workers do not drain before the deadline.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Source is where workers read jobs from.
type Source interface {
	Dequeue() <-chan queue.Item
}

// PoseResolver maps a job to the pose it should be scored against.
type PoseResolver interface {
	ResolvePose(ctx context.Context, job model.AttemptJob) (model.Pose, error)
}

// Scorer computes the accuracy of one frame.
type Scorer interface {
	Score(ctx context.Context, in scoring.Input) (scoring.Result, error)
}

// Recorder stores a scored attempt on its session.
type Recorder interface {
	AppendAttempt(ctx context.Context, sessionID string, a model.Attempt) error
}

// Pool runs a fixed set of workers over a Source.
type Pool struct {
	source   Source
	poses    PoseResolver
	scorer   Scorer
	recorder Recorder
	size     int
	logger   logger.Logger
	onDone   func(job model.AttemptJob, err error)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPool creates a pool; it does nothing until Start.
func NewPool(source Source, poses PoseResolver, scorer Scorer, recorder Recorder, opts ...Option) *Pool {
	p := &Pool{
		source:   source,
		poses:    poses,
		scorer:   scorer,
		recorder: recorder,
		size:     runtime.NumCPU() * defaultWorkerMultiplier,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Start launches the workers. They exit when the source is closed and
// drained, when ctx is cancelled, or when Shutdown gives up waiting.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerCount(p.size)
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, p.logger.Named("worker-"+strconv.Itoa(i)))
	}
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()

	items := p.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case it, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			metrics.RecordQueueWait(float64(time.Since(it.EnqueuedAt).Microseconds()) / 1000)
			err := p.process(ctx, it.Job)
			if err != nil {
				log.Error(ctx, "attempt processing failed",
					logger.String("attempt_id", it.Job.AttemptID),
					logger.String("session_id", it.Job.SessionID),
					logger.Error(err),
				)
			}
			if p.onDone != nil {
				p.onDone(it.Job, err)
			}
		}
	}
}

// process scores one job and appends the attempt to its session.
func (p *Pool) process(ctx context.Context, job model.AttemptJob) error {
	metrics.WorkerBusy(1)
	start := time.Now()
	defer func() {
		metrics.WorkerBusy(-1)
		metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	pose, err := p.poses.ResolvePose(ctx, job)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "resolve_pose")
		return fmt.Errorf("resolve pose for %s: %w", job.AttemptID, err)
	}

	scoreStart := time.Now()
	res, err := p.scorer.Score(ctx, scoring.Input{Pose: pose, Landmarks: job.Landmarks})
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring")
		return fmt.Errorf("score %s: %w", job.AttemptID, err)
	}
	metrics.RecordAttemptScored(res.Family.String(), res.Accuracy)

	if err := p.recorder.AppendAttempt(ctx, job.SessionID, NewAttempt(job, pose, res, time.Now())); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record")
		return fmt.Errorf("record %s: %w", job.AttemptID, err)
	}
	return nil
}

// NewAttempt builds the stored attempt from a job and its score. A zero
// EndedAt is replaced by now; a zero StartedAt collapses to EndedAt. Ad-hoc
// poses are recorded under their name.
func NewAttempt(job model.AttemptJob, pose model.Pose, res scoring.Result, now time.Time) model.Attempt {
	ended := job.EndedAt
	if ended.IsZero() {
		ended = now
	}
	started := job.StartedAt
	if started.IsZero() || started.After(ended) {
		started = ended
	}
	poseID := pose.ID
	if poseID == "" {
		poseID = pose.Name
	}
	return model.Attempt{
		ID:        job.AttemptID,
		PoseID:    poseID,
		StartedAt: started,
		EndedAt:   ended,
		Duration:  ended.Sub(started).Seconds(),
		Accuracy:  res.Accuracy,
		Feedback:  res.Feedback,
	}
}

// Shutdown waits for the workers to drain a closed source. If ctx expires
// first the workers are told to stop and ErrShutdownTimeout is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		metrics.UpdateWorkerCount(0)
		return nil
	case <-ctx.Done():
		p.stopOnce.Do(func() { close(p.stop) })
		p.logger.Warn(ctx, "workers did not drain in time")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

package worker

import (
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/pkg/logger"
)

// Option applies a configuration option to a Pool.
type Option func(*Pool)

// WithWorkers sets how many goroutines consume the queue.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithLogger sets a custom logger for the pool and its workers.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOnProcessed registers fn to run after every dequeued job, once the
// attempt is recorded or has failed.
func WithOnProcessed(fn func(job model.AttemptJob, err error)) Option {
	return func(p *Pool) {
		p.onDone = fn
	}
}

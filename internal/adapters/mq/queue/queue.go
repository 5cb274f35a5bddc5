// Package queue buffers scoring jobs between the HTTP intake and the workers.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/pkg/metrics"
)

const defaultCapacity = 10_000

// Item is a queued job stamped with its enqueue time.
type Item struct {
	Job        model.AttemptJob
	EnqueuedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job without blocking. It returns ErrFull when at capacity
	// and ErrClosed after Close.
	Enqueue(ctx context.Context, job model.AttemptJob) error

	// Dequeue returns the channel consumers range over. It is closed by Close
	// once drained.
	Dequeue() <-chan Item

	Len() int
	Cap() int
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Item
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Item, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, job model.AttemptJob) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("cancelled")
		return fmt.Errorf("enqueue %s: %w", job.AttemptID, err)
	}

	// The read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}

	select {
	case q.items <- Item{Job: job, EnqueuedAt: time.Now()}:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.items))
		return nil
	default:
		metrics.RecordQueueEnqueueError("full")
		return ErrFull
	}
}

func (q *InMemoryQueue) Dequeue() <-chan Item {
	return q.items
}

func (q *InMemoryQueue) Len() int {
	n := len(q.items)
	metrics.UpdateQueueSize(n)
	return n
}

func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops intake. Items already queued stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

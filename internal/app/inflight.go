package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/poseflow/internal/adapters/repository"
)

// inflight counts accepted attempts per session that the workers have not
// finished yet, so completion can wait for them.
type inflight struct {
	mu      sync.Mutex
	pending map[string]int
	closing map[string]int
	changed chan struct{}
}

func newInflight() *inflight {
	return &inflight{
		pending: make(map[string]int),
		closing: make(map[string]int),
		changed: make(chan struct{}),
	}
}

// add reserves a slot for one attempt. It fails once the session is being
// completed.
func (f *inflight) add(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closing[sessionID] > 0 {
		return fmt.Errorf("%w: %s", repository.ErrSessionCompleted, sessionID)
	}
	f.pending[sessionID]++
	return nil
}

// done releases a slot taken by add and wakes any waiting drain.
func (f *inflight) done(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := f.pending[sessionID] - 1; n > 0 {
		f.pending[sessionID] = n
	} else {
		delete(f.pending, sessionID)
	}
	close(f.changed)
	f.changed = make(chan struct{})
}

// drain blocks new attempts on the session and waits until the pending
// ones are done. On success the caller must call release.
func (f *inflight) drain(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.closing[sessionID]++
	for f.pending[sessionID] > 0 {
		ch := f.changed
		f.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			f.release(sessionID)
			return fmt.Errorf("%w: %s: %w", ErrAttemptsPending, sessionID, ctx.Err())
		}
		f.mu.Lock()
	}
	f.mu.Unlock()
	return nil
}

func (f *inflight) release(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := f.closing[sessionID] - 1; n > 0 {
		f.closing[sessionID] = n
	} else {
		delete(f.closing, sessionID)
	}
}

// total is the number of pending attempts across sessions.
func (f *inflight) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.pending {
		n += c
	}
	return n
}

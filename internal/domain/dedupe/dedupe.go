// Package dedupe tracks attempt IDs so a retried submission is scored once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 100_000

// Deduper records seen attempt IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if it was not. The check and the insert happen under one lock.
	SeenAndRecord(ctx context.Context, id string) bool

	// Forget drops id so the same attempt can be submitted again, e.g. after
	// the queue rejected it.
	Forget(ctx context.Context, id string)

	Size() int
}

var _ Deduper = (*Window)(nil)

// Window is a bounded Deduper that evicts the oldest ID once full.
type Window struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	index   map[string]*list.Element
}

// New builds a Window. A non-positive max size disables eviction.
func New(opts ...Option) *Window {
	w := &Window{
		maxSize: defaultMaxSize,
		order:   list.New(),
		index:   make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		oldest := w.order.Front()
		w.order.Remove(oldest)
		delete(w.index, oldest.Value.(string))
	}
	w.index[id] = w.order.PushBack(id)
	return false
}

func (w *Window) Forget(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if el, ok := w.index[id]; ok {
		w.order.Remove(el)
		delete(w.index, id)
	}
}

func (w *Window) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order.Len()
}

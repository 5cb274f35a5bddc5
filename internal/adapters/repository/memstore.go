package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/progress"
	"github.com/okian/poseflow/pkg/metrics"
)

const defaultShardCount = 8

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	byUser   map[string][]string
}

// MemoryStore is an in-memory Store split into shards by session ID.
type MemoryStore struct {
	shardCount int
	shards     []*shard
	count      atomic.Int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty sharded store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			sessions: make(map[string]*model.Session),
			byUser:   make(map[string][]string),
		}
	}
	metrics.UpdateRepositorySessions(0)
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func (s *MemoryStore) Create(_ context.Context, sess model.Session) error {
	defer observe("create", time.Now())

	sh := s.shardFor(sess.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.sessions[sess.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, sess.ID)
	}
	stored := clone(&sess)
	sh.sessions[sess.ID] = &stored
	sh.byUser[sess.UserID] = append(sh.byUser[sess.UserID], sess.ID)
	metrics.UpdateRepositorySessions(int(s.count.Add(1)))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Session, error) {
	defer observe("get", time.Now())

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, ok := sh.sessions[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(sess), nil
}

func (s *MemoryStore) AppendAttempt(_ context.Context, sessionID string, a model.Attempt) error {
	defer observe("append_attempt", time.Now())

	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if sess.Completed {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}
	for _, existing := range sess.Attempts {
		if existing.ID == a.ID {
			return nil
		}
	}
	a.Feedback = append([]string(nil), a.Feedback...)
	sess.Attempts = append(sess.Attempts, a)
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, c model.Completion) (model.Session, error) {
	defer observe("complete", time.Now())

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.Completed {
		return model.Session{}, fmt.Errorf("%w: %s", ErrSessionCompleted, id)
	}
	ended := c.EndedAt
	sess.EndedAt = &ended
	sess.TotalScore = progress.SessionScore(sess.Attempts)
	sess.Calories = c.Calories
	sess.Completed = true
	return clone(sess), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]model.Session, error) {
	defer observe("list_by_user", time.Now())

	var out []model.Session
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, id := range sh.byUser[userID] {
			out = append(out, clone(sh.sessions[id]))
		}
		sh.mu.RUnlock()
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	return int(s.count.Load())
}

func (s *MemoryStore) Close() error { return nil }

// Package repository persists practice sessions and their scored attempts.
package repository

import (
	"context"
	"sort"

	"github.com/okian/poseflow/internal/domain/model"
)

// Store provides read/write access to practice sessions.
type Store interface {
	// Create stores a new session. Returns ErrAlreadyExists on an ID clash.
	Create(ctx context.Context, s model.Session) error

	// Get returns a copy of the session or ErrNotFound.
	Get(ctx context.Context, id string) (model.Session, error)

	// AppendAttempt adds a scored attempt. An attempt whose ID is already on
	// the session is ignored. Returns ErrSessionCompleted once closed.
	AppendAttempt(ctx context.Context, sessionID string, a model.Attempt) error

	// Complete closes the session with its final values and returns it.
	Complete(ctx context.Context, id string, c model.Completion) (model.Session, error)

	// ListByUser returns a user's sessions ordered by start time.
	ListByUser(ctx context.Context, userID string) ([]model.Session, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int

	Close() error
}

func sortByStart(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
}

// clone deep-copies a session so callers never share its slices.
func clone(s *model.Session) model.Session {
	out := *s
	out.Attempts = make([]model.Attempt, len(s.Attempts))
	for i, a := range s.Attempts {
		a.Feedback = append([]string(nil), a.Feedback...)
		out.Attempts[i] = a
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	return out
}

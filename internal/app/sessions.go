package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/poseflow/internal/adapters/mq/queue"
	"github.com/okian/poseflow/internal/adapters/repository"
	"github.com/okian/poseflow/internal/domain/dedupe"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/scoring"
	"github.com/okian/poseflow/pkg/logger"
	"github.com/okian/poseflow/pkg/metrics"
)

// Submission is the outcome of SubmitAttempt.
type Submission struct {
	AttemptID string `json:"attempt_id"`
	SessionID string `json:"session_id"`
	Duplicate bool   `json:"duplicate"`
}

// StartSession opens a practice session for user on a catalog routine.
func (s *Service) StartSession(ctx context.Context, userID, routineID string) (model.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Session{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if _, err := s.catalog.Routine(ctx, routineID); err != nil {
		return model.Session{}, err
	}
	store, err := s.sessions()
	if err != nil {
		return model.Session{}, err
	}

	sess := model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoutineID: routineID,
		StartedAt: s.now().UTC(),
		Attempts:  []model.Attempt{},
	}
	if err := store.Create(ctx, sess); err != nil {
		return model.Session{}, err
	}
	metrics.RecordSessionStarted()
	s.logger.Debug(ctx, "session started",
		logger.String("session_id", sess.ID),
		logger.String("user_id", userID),
		logger.String("routine_id", routineID),
	)
	return sess, nil
}

// SubmitAttempt queues a frame for scoring on an open session. The attempt
// ID is generated when empty; resubmitting a known ID is acknowledged as a
// duplicate without being scored again.
func (s *Service) SubmitAttempt(ctx context.Context, sessionID string, job model.AttemptJob) (Submission, error) {
	q, seen, err := s.running()
	if err != nil {
		return Submission{}, err
	}
	store, err := s.sessions()
	if err != nil {
		return Submission{}, err
	}
	// The slot is held until a worker has recorded the attempt.
	if err := s.pending.add(sessionID); err != nil {
		return Submission{}, err
	}
	sub, err := s.submit(ctx, q, seen, store, sessionID, job)
	if err != nil || sub.Duplicate {
		s.pending.done(sessionID)
	}
	return sub, err
}

func (s *Service) submit(
	ctx context.Context,
	q *queue.InMemoryQueue,
	seen dedupe.Deduper,
	store repository.Store,
	sessionID string,
	job model.AttemptJob,
) (Submission, error) {
	sess, err := store.Get(ctx, sessionID)
	if err != nil {
		return Submission{}, err
	}
	if sess.Completed {
		return Submission{}, fmt.Errorf("%w: %s", repository.ErrSessionCompleted, sessionID)
	}
	if _, err := s.ResolvePose(ctx, job); err != nil {
		return Submission{}, err
	}

	job.SessionID = sessionID
	if job.AttemptID == "" {
		job.AttemptID = uuid.NewString()
	}
	if job.EndedAt.IsZero() {
		job.EndedAt = s.now().UTC()
	}
	sub := Submission{AttemptID: job.AttemptID, SessionID: sessionID}

	key := sessionID + "/" + job.AttemptID
	if seen.SeenAndRecord(ctx, key) {
		metrics.RecordAttemptDuplicate()
		sub.Duplicate = true
		return sub, nil
	}

	if err := q.Enqueue(ctx, job); err != nil {
		seen.Forget(ctx, key)
		switch {
		case errors.Is(err, queue.ErrFull):
			s.logger.Warn(ctx, "attempt rejected, queue full", logger.String("attempt_id", job.AttemptID))
			return Submission{}, ErrBackpressure
		case errors.Is(err, queue.ErrClosed):
			return Submission{}, ErrNotStarted
		default:
			return Submission{}, err
		}
	}
	return sub, nil
}

// CompleteSession closes a session once every accepted attempt on it has
// been recorded, waiting at most the drain timeout (ErrAttemptsPending).
// The store derives the total score from the recorded attempts; calories
// use the mean MET of the routine's poses over the elapsed minutes. A zero
// endedAt means now.
func (s *Service) CompleteSession(ctx context.Context, id string, endedAt time.Time) (model.Session, error) {
	store, err := s.sessions()
	if err != nil {
		return model.Session{}, err
	}

	dctx, cancel := context.WithTimeout(ctx, s.drainTimeout)
	err = s.pending.drain(dctx, id)
	cancel()
	if err != nil {
		return model.Session{}, err
	}
	defer s.pending.release(id)

	sess, err := store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	if sess.Completed {
		return model.Session{}, fmt.Errorf("%w: %s", repository.ErrSessionCompleted, id)
	}
	if endedAt.IsZero() {
		endedAt = s.now()
	}
	endedAt = endedAt.UTC()

	minutes := endedAt.Sub(sess.StartedAt).Minutes()
	calories, err := scoring.EstimateCalories(model.Pose{MET: s.routineMET(ctx, sess.RoutineID)}, minutes, s.bodyWeightKg)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	done, err := store.Complete(ctx, id, model.Completion{EndedAt: endedAt, Calories: calories})
	if err != nil {
		return model.Session{}, err
	}
	metrics.RecordSessionCompleted(done.Calories)
	s.logger.Info(ctx, "session completed",
		logger.String("session_id", id),
		logger.Int("attempts", len(done.Attempts)),
		logger.Float64("total_score", done.TotalScore),
		logger.Int("calories", done.Calories),
	)
	return done, nil
}

// routineMET averages the MET values of a routine's poses; 0 when unknown.
func (s *Service) routineMET(ctx context.Context, routineID string) float64 {
	poses, err := s.catalog.RoutinePoses(ctx, routineID)
	if err != nil || len(poses) == 0 {
		return 0
	}
	mets := make([]float64, len(poses))
	for i, p := range poses {
		mets[i] = p.MET
	}
	return stat.Mean(mets, nil)
}

// Session returns one session.
func (s *Service) Session(ctx context.Context, id string) (model.Session, error) {
	store, err := s.sessions()
	if err != nil {
		return model.Session{}, err
	}
	return store.Get(ctx, id)
}

// UserSessions returns a user's sessions ordered by start time.
func (s *Service) UserSessions(ctx context.Context, userID string) ([]model.Session, error) {
	store, err := s.sessions()
	if err != nil {
		return nil, err
	}
	list, err := store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Session{}
	}
	return list, nil
}

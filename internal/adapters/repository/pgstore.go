package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/progress"
	"github.com/okian/poseflow/pkg/metrics"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// PostgresStore is a Store backed by PostgreSQL through lib/pq.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to dsn, verifies the connection and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sess model.Session) error {
	defer observe("create", time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO practice_sessions (id, user_id, routine_id, started_at)
		VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, sess.RoutineID, sess.StartedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, sess.ID)
	}
	if err != nil {
		return fmt.Errorf("insert session %s: %w", sess.ID, err)
	}
	s.refreshCount(ctx)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var sess model.Session
	var ended sql.NullTime
	if err := row.Scan(
		&sess.ID, &sess.UserID, &sess.RoutineID, &sess.StartedAt, &ended,
		&sess.TotalScore, &sess.Calories, &sess.Completed,
	); err != nil {
		return model.Session{}, err
	}
	sess.StartedAt = sess.StartedAt.UTC()
	if ended.Valid {
		t := ended.Time.UTC()
		sess.EndedAt = &t
	}
	sess.Attempts = []model.Attempt{}
	return sess, nil
}

const sessionColumns = `id, user_id, routine_id, started_at, ended_at, total_score, calories, completed`

func (s *PostgresStore) Get(ctx context.Context, id string) (model.Session, error) {
	defer observe("get", time.Now())

	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM practice_sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("select session %s: %w", id, err)
	}
	if sess.Attempts, err = s.attempts(ctx, id); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

func (s *PostgresStore) attempts(ctx context.Context, sessionID string) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pose_id, started_at, ended_at, duration_seconds, accuracy, feedback
		FROM pose_attempts
		WHERE session_id = $1
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select attempts %s: %w", sessionID, err)
	}
	defer rows.Close()

	out := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		var feedback []string
		if err := rows.Scan(&a.ID, &a.PoseID, &a.StartedAt, &a.EndedAt, &a.Duration, &a.Accuracy, pq.Array(&feedback)); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.StartedAt, a.EndedAt = a.StartedAt.UTC(), a.EndedAt.UTC()
		a.Feedback = feedback
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// sessionState locks the session row and reports whether it is completed.
func sessionState(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var completed bool
	err := tx.QueryRowContext(ctx,
		`SELECT completed FROM practice_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return false, fmt.Errorf("lock session %s: %w", id, err)
	}
	return completed, nil
}

// lockedAttempts reads the accuracy of a session's attempts inside tx.
func lockedAttempts(ctx context.Context, tx *sql.Tx, sessionID string) ([]model.Attempt, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, accuracy FROM pose_attempts WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select attempts %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.Accuracy); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AppendAttempt(ctx context.Context, sessionID string, a model.Attempt) error {
	defer observe("append_attempt", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	completed, err := sessionState(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if completed {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}

	feedback := a.Feedback
	if feedback == nil {
		feedback = []string{}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pose_attempts (id, session_id, pose_id, started_at, ended_at, duration_seconds, accuracy, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, id) DO NOTHING`,
		a.ID, sessionID, a.PoseID, a.StartedAt, a.EndedAt, a.Duration, a.Accuracy, pq.Array(feedback),
	); err != nil {
		return fmt.Errorf("insert attempt %s: %w", a.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Complete(ctx context.Context, id string, c model.Completion) (model.Session, error) {
	defer observe("complete", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	completed, err := sessionState(ctx, tx, id)
	if err != nil {
		return model.Session{}, err
	}
	if completed {
		return model.Session{}, fmt.Errorf("%w: %s", ErrSessionCompleted, id)
	}
	// The row lock taken by sessionState also serializes AppendAttempt, so
	// the score covers every attempt stored before completion.
	attempts, err := lockedAttempts(ctx, tx, id)
	if err != nil {
		return model.Session{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE practice_sessions
		SET ended_at = $2, total_score = $3, calories = $4, completed = TRUE
		WHERE id = $1`,
		id, c.EndedAt, progress.SessionScore(attempts), c.Calories,
	); err != nil {
		return model.Session{}, fmt.Errorf("complete session %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Session{}, fmt.Errorf("commit: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]model.Session, error) {
	defer observe("list_by_user", time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM practice_sessions WHERE user_id = $1 ORDER BY started_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("select sessions for %s: %w", userID, err)
	}
	var out []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range out {
		if out[i].Attempts, err = s.attempts(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM practice_sessions`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return n
}

func (s *PostgresStore) refreshCount(ctx context.Context) {
	metrics.UpdateRepositorySessions(s.Count(ctx))
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/progress"
)

// ErrUnexpectedStatus is returned when the service answers with a status the
// caller did not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the poseflow HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// RoutineDetail mirrors GET /routines/{id}.
type RoutineDetail struct {
	model.Routine
	Poses []model.Pose `json:"poses"`
}

// Attempt is the body of POST /sessions/{id}/attempts.
type Attempt struct {
	AttemptID string          `json:"attempt_id"`
	PoseID    string          `json:"pose_id"`
	Landmarks model.Landmarks `json:"landmarks"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

// Ack mirrors the attempt acknowledgement.
type Ack struct {
	Status    string `json:"status"`
	AttemptID string `json:"attempt_id"`
}

// UserStats is the subset of GET /users/{id}/stats the runner reports.
type UserStats struct {
	TotalSessions  int             `json:"total_sessions"`
	TotalMinutes   int             `json:"total_minutes"`
	AvgAccuracy    int             `json:"avg_accuracy"`
	CaloriesBurned int             `json:"calories_burned"`
	Streak         progress.Streak `json:"streak"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK)
}

// Routines lists the catalog routines.
func (c *Client) Routines(ctx context.Context) ([]model.Routine, error) {
	var out []model.Routine
	err := c.do(ctx, http.MethodGet, "/routines", nil, &out, http.StatusOK)
	return out, err
}

// Routine fetches a routine with its poses.
func (c *Client) Routine(ctx context.Context, id string) (RoutineDetail, error) {
	var out RoutineDetail
	err := c.do(ctx, http.MethodGet, "/routines/"+id, nil, &out, http.StatusOK)
	return out, err
}

// StartSession opens a session for user on routine.
func (c *Client) StartSession(ctx context.Context, userID, routineID string) (model.Session, error) {
	var out model.Session
	body := map[string]string{"user_id": userID, "routine_id": routineID}
	err := c.do(ctx, http.MethodPost, "/sessions", body, &out, http.StatusCreated)
	return out, err
}

// SubmitAttempt posts an attempt. Both 202 and 200 (duplicate) succeed.
func (c *Client) SubmitAttempt(ctx context.Context, sessionID string, a Attempt) (Ack, error) {
	var out Ack
	err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/attempts", a, &out, http.StatusAccepted, http.StatusOK)
	return out, err
}

// Session fetches a session.
func (c *Client) Session(ctx context.Context, id string) (model.Session, error) {
	var out model.Session
	err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, &out, http.StatusOK)
	return out, err
}

// CompleteSession closes a session at endedAt.
func (c *Client) CompleteSession(ctx context.Context, id string, endedAt time.Time) (model.Session, error) {
	var out model.Session
	body := map[string]time.Time{"ended_at": endedAt}
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/complete", body, &out, http.StatusOK)
	return out, err
}

// UserStats fetches a user's aggregates.
func (c *Client) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var out UserStats
	err := c.do(ctx, http.MethodGet, "/users/"+userID+"/stats", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, want ...int) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if !expected(resp.StatusCode, want) {
		return fmt.Errorf("%w: %s %s answered %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func expected(code int, want []int) bool {
	for _, w := range want {
		if code == w {
			return true
		}
	}
	return false
}

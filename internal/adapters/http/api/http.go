// Package api exposes the pose scorer over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/okian/poseflow/internal/app"
	"github.com/okian/poseflow/internal/domain/model"
	"github.com/okian/poseflow/internal/domain/progress"
	"github.com/okian/poseflow/internal/domain/scoring"
	"github.com/okian/poseflow/pkg/logger"
)

const maxBodyBytes = 1 << 20

// CatalogReader serves the pose and routine library.
type CatalogReader interface {
	Poses(ctx context.Context, difficulty model.Difficulty) []model.Pose
	Pose(ctx context.Context, id string) (model.Pose, error)
	Routines(ctx context.Context, difficulty model.Difficulty, category string) []model.Routine
	Routine(ctx context.Context, id string) (app.RoutineDetail, error)
	Categories(ctx context.Context) []string
}

// Scoring scores frames synchronously and estimates calories.
type Scoring interface {
	Score(ctx context.Context, req app.ScoreRequest) (scoring.Result, error)
	Calories(ctx context.Context, req app.CaloriesRequest) (int, error)
}

// SessionTracker runs practice sessions.
type SessionTracker interface {
	StartSession(ctx context.Context, userID, routineID string) (model.Session, error)
	SubmitAttempt(ctx context.Context, sessionID string, job model.AttemptJob) (app.Submission, error)
	CompleteSession(ctx context.Context, id string, endedAt time.Time) (model.Session, error)
	Session(ctx context.Context, id string) (model.Session, error)
	UserSessions(ctx context.Context, userID string) ([]model.Session, error)
}

// ProgressReader serves per-user aggregates.
type ProgressReader interface {
	UserStats(ctx context.Context, userID string) (app.UserStats, error)
	UserProgress(ctx context.Context, userID string) ([]progress.Week, error)
	UserAchievements(ctx context.Context, userID string) ([]progress.Achievement, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	CatalogReader
	Scoring
	SessionTracker
	ProgressReader
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	logger logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, l logger.Logger) *Server {
	if l == nil {
		l = logger.Get().Named("api")
	}
	return &Server{deps: deps, logger: l}
}

// Register attaches all business routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(MetricsMiddleware)

	r.HandleFunc("/healthz", HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/poses", s.handleListPoses).Methods(http.MethodGet)
	r.HandleFunc("/poses/{id}", s.handleGetPose).Methods(http.MethodGet)
	r.HandleFunc("/routines", s.handleListRoutines).Methods(http.MethodGet)
	r.HandleFunc("/routines/{id}", s.handleGetRoutine).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)

	r.HandleFunc("/score", s.handleScore).Methods(http.MethodPost)
	r.HandleFunc("/calories", s.handleCalories).Methods(http.MethodPost)

	r.HandleFunc("/sessions", s.handleStartSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/attempts", s.handleSubmitAttempt).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/complete", s.handleCompleteSession).Methods(http.MethodPost)

	r.HandleFunc("/users/{id}/sessions", s.handleUserSessions).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/stats", s.handleUserStats).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/progress", s.handleUserProgress).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/achievements", s.handleUserAchievements).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", errors.New("no such route"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, name := status(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, code, name, err)
}

// decode reads a JSON body into v. An empty body is allowed when optional.
func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// difficulty parses the ?difficulty= filter.
func difficulty(r *http.Request) (model.Difficulty, error) {
	d := model.Difficulty(r.URL.Query().Get("difficulty"))
	switch d {
	case "", model.Beginner, model.Intermediate, model.Advanced:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", d)
}

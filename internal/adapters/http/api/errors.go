package api

import (
	"context"
	"errors"
	"net/http"

	app "github.com/okian/poseflow/internal/app"
	"github.com/okian/poseflow/internal/adapters/repository"
	"github.com/okian/poseflow/internal/domain/catalog"
	"github.com/okian/poseflow/internal/domain/scoring"
)

// ErrBadRequest marks malformed requests rejected before reaching the service.
var ErrBadRequest = errors.New("bad request")

// KindError tags an error with the operation that failed and its kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *KindError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind builds an error of kind for op.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op, keeping its own kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Op: op, Err: err}
}

// status maps an error to its HTTP status and error code.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrAttemptsPending):
		return http.StatusConflict, "attempts_pending"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, scoring.ErrNegativeDuration),
		errors.Is(err, scoring.ErrInvalidDuration),
		errors.Is(err, scoring.ErrInvalidBodyWeight),
		errors.Is(err, scoring.ErrInvalidMET):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, catalog.ErrPoseNotFound),
		errors.Is(err, catalog.ErrRoutineNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrSessionCompleted),
		errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, app.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, app.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

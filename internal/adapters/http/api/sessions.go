package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/poseflow/internal/domain/model"
)

type startSessionRequest struct {
	UserID    string `json:"user_id"`
	RoutineID string `json:"routine_id"`
}

type attemptRequest struct {
	AttemptID string          `json:"attempt_id,omitempty"`
	PoseID    string          `json:"pose_id,omitempty"`
	PoseName  string          `json:"pose_name,omitempty"`
	Landmarks model.Landmarks `json:"landmarks"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

type attemptResponse struct {
	Status    string `json:"status"`
	AttemptID string `json:"attempt_id"`
	SessionID string `json:"session_id"`
}

type completeRequest struct {
	EndedAt time.Time `json:"ended_at"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decode(w, r, &req, false); err != nil {
		s.fail(w, r, WrapKind("start session", ErrBadRequest, err))
		return
	}
	sess, err := s.deps.StartSession(r.Context(), req.UserID, req.RoutineID)
	if err != nil {
		s.fail(w, r, Wrap("start session", err))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleSubmitAttempt queues an attempt for asynchronous scoring. Accepted
// attempts answer 202; a replayed attempt ID answers 200 with status
// "duplicate".
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decode(w, r, &req, false); err != nil {
		s.fail(w, r, WrapKind("submit attempt", ErrBadRequest, err))
		return
	}
	if req.PoseID == "" && req.PoseName == "" {
		s.fail(w, r, NewKind("submit attempt: pose_id or pose_name is required", ErrBadRequest))
		return
	}
	sub, err := s.deps.SubmitAttempt(r.Context(), mux.Vars(r)["id"], model.AttemptJob{
		AttemptID: req.AttemptID,
		PoseID:    req.PoseID,
		PoseName:  req.PoseName,
		Landmarks: req.Landmarks,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	})
	if err != nil {
		s.fail(w, r, Wrap("submit attempt", err))
		return
	}
	resp := attemptResponse{Status: "accepted", AttemptID: sub.AttemptID, SessionID: sub.SessionID}
	code := http.StatusAccepted
	if sub.Duplicate {
		resp.Status = "duplicate"
		code = http.StatusOK
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(w, r, &req, true); err != nil {
		s.fail(w, r, WrapKind("complete session", ErrBadRequest, err))
		return
	}
	sess, err := s.deps.CompleteSession(r.Context(), mux.Vars(r)["id"], req.EndedAt)
	if err != nil {
		s.fail(w, r, Wrap("complete session", err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

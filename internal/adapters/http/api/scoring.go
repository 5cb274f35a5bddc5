package api

import (
	"net/http"

	app "github.com/okian/poseflow/internal/app"
)

type caloriesResponse struct {
	Calories int `json:"calories"`
}

// handleScore scores a single frame synchronously, bypassing the queue.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req app.ScoreRequest
	if err := decode(w, r, &req, false); err != nil {
		s.fail(w, r, WrapKind("score", ErrBadRequest, err))
		return
	}
	res, err := s.deps.Score(r.Context(), req)
	if err != nil {
		s.fail(w, r, Wrap("score", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	var req app.CaloriesRequest
	if err := decode(w, r, &req, false); err != nil {
		s.fail(w, r, WrapKind("calories", ErrBadRequest, err))
		return
	}
	n, err := s.deps.Calories(r.Context(), req)
	if err != nil {
		s.fail(w, r, Wrap("calories", err))
		return
	}
	writeJSON(w, http.StatusOK, caloriesResponse{Calories: n})
}

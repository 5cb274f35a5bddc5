package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleListPoses(w http.ResponseWriter, r *http.Request) {
	d, err := difficulty(r)
	if err != nil {
		s.fail(w, r, WrapKind("list poses", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Poses(r.Context(), d))
}

func (s *Server) handleGetPose(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Pose(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	d, err := difficulty(r)
	if err != nil {
		s.fail(w, r, WrapKind("list routines", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Routines(r.Context(), d, r.URL.Query().Get("category")))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Categories(r.Context()))
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	rt, err := s.deps.Routine(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

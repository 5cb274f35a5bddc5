package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleUserSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.UserSessions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.UserStats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.deps.UserProgress(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.UserAchievements(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

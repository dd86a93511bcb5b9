package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
)

// POST /sessions
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := quiz.Session{
		ID:        quiz.NewID(),
		Epoch:     1,
		CreatedAt: time.Now(),
	}
	if err := a.Store.PutSession(s); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// GET /sessions/{sessionID}
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DELETE /sessions/{sessionID}
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DeleteSession(chi.URLParam(r, "sessionID")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /sessions/{sessionID}/reset
//
// Bumps the epoch so any in-flight processing started before the reset
// is discarded when it tries to apply its result.
func (a *API) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	s.Epoch++
	s.Sources = nil
	s.Quiz = nil
	if err := a.Store.PutSession(s); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

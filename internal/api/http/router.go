// Package http exposes the conversion workflow over chi routes:
// session lifecycle, multi-file upload, processing, quiz editing, and
// package export.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/ai"
	"github.com/quizforge/quizforge/internal/quiz"
)

type API struct {
	Store quiz.Store
	// AI is nil when no proxy is configured; AI-backed paths then fall
	// back to heuristic parsing or report the feature unavailable.
	AI             *ai.Client
	MaxUploadBytes int64
	MaxUploadFiles int
}

// Mount attaches the session workflow routes to r. Auth, CORS, and the
// standard middleware stack are the caller's concern.
func (a *API) Mount(r chi.Router) {
	r.Post("/sessions", a.CreateSession)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", a.GetSession)
		sr.Delete("/", a.DeleteSession)
		sr.Post("/reset", a.ResetSession)
		sr.Post("/files", a.UploadFiles)
		sr.Post("/process", a.Process)
		sr.Patch("/quiz", a.UpdateQuiz)
		sr.Post("/quiz/questions", a.AddQuestion)
		sr.Put("/quiz/questions/{questionID}", a.UpdateQuestion)
		sr.Delete("/quiz/questions/{questionID}", a.DeleteQuestion)
		sr.Post("/quiz/answer-key", a.ApplyAnswerKey)
		sr.Get("/export", a.Export)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) session(w http.ResponseWriter, r *http.Request) (quiz.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := a.Store.GetSession(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return quiz.Session{}, false
	}
	return s, true
}

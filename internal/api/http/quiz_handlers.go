package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
)

func (a *API) sessionQuiz(w http.ResponseWriter, r *http.Request) (quiz.Session, bool) {
	s, ok := a.session(w, r)
	if !ok {
		return quiz.Session{}, false
	}
	if s.Quiz == nil {
		http.Error(w, "session has no quiz yet", http.StatusConflict)
		return quiz.Session{}, false
	}
	return s, true
}

func (a *API) saveQuiz(w http.ResponseWriter, s quiz.Session) {
	if err := a.Store.PutSession(s); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Quiz)
}

// PATCH /sessions/{sessionID}/quiz
func (a *API) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title != nil {
		s.Quiz.Title = *req.Title
	}
	if req.Description != nil {
		s.Quiz.Description = *req.Description
	}
	a.saveQuiz(w, s)
}

// POST /sessions/{sessionID}/quiz/questions
func (a *API) AddQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	var q quiz.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	q.ID = ""
	if q.Type == "" {
		q.Type = quiz.MultipleChoice
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	if q.Confidence <= 0 || q.Confidence > 100 {
		q.Confidence = 100
	}
	s.Quiz.AddQuestion(q)
	a.saveQuiz(w, s)
}

// PUT /sessions/{sessionID}/quiz/questions/{questionID}
func (a *API) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	var q quiz.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	q.ID = chi.URLParam(r, "questionID")
	if !s.Quiz.UpdateQuestion(q) {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	a.saveQuiz(w, s)
}

// DELETE /sessions/{sessionID}/quiz/questions/{questionID}
func (a *API) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	if !s.Quiz.DeleteQuestion(chi.URLParam(r, "questionID")) {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	a.saveQuiz(w, s)
}

// POST /sessions/{sessionID}/quiz/answer-key  { "text": "1. B 2. A ..." }
func (a *API) ApplyAnswerKey(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	answers := quiz.ParseAnswerKey(req.Text, len(s.Quiz.Questions))
	quiz.ApplyAnswerKey(s.Quiz, answers)
	for _, ans := range answers {
		if ans != "" {
			s.Quiz.Metadata.AnswerKeyFound = true
			break
		}
	}
	a.saveQuiz(w, s)
}

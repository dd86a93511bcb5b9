package http

import (
	"net/http"
	"strconv"

	"github.com/quizforge/quizforge/internal/qti/export"
)

// GET /sessions/{sessionID}/export?title=&timeLimit=&attempts=
func (a *API) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionQuiz(w, r)
	if !ok {
		return
	}
	settings := export.Settings{
		Title:           r.URL.Query().Get("title"),
		TimeLimitMin:    queryInt(r, "timeLimit"),
		AttemptsAllowed: queryInt(r, "attempts"),
	}
	if settings.Title == "" {
		settings.Title = s.Quiz.Title
	}

	pkg := export.Build(s.Quiz, settings)
	data, err := export.WriteZip(pkg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	name := export.Filename(settings.Title)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

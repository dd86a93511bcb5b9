package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/quizforge/internal/ai"
	"github.com/quizforge/quizforge/internal/ingest"
	"github.com/quizforge/quizforge/internal/quiz"
)

type processRequest struct {
	// Mode "parse" (default) converts uploaded content; "generate"
	// authors new questions from the combined text.
	Mode       string              `json:"mode"`
	UseAI      bool                `json:"useAI"`
	Generation ai.GenerationConfig `json:"generation"`
}

// POST /sessions/{sessionID}/process
func (a *API) Process(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	epoch := s.Epoch

	var req processRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	combined := s.CombinedText()
	imports := s.ImportedQuizzes()
	images := s.ExtractedImages()

	var primary *quiz.Quiz
	switch req.Mode {
	case "generate":
		if a.AI == nil {
			http.Error(w, "generation requires an AI proxy", http.StatusNotImplemented)
			return
		}
		if combined == "" {
			http.Error(w, "no source material to generate from", http.StatusBadRequest)
			return
		}
		z, err := a.AI.GenerateQuiz(r.Context(), combined, req.Generation)
		if err != nil {
			writeAIError(w, err)
			return
		}
		primary = z

	case "", "parse":
		if combined == "" {
			break
		}
		srcType, srcFile := firstSourceInfo(&s)
		if a.AI != nil && req.UseAI {
			z, err := a.AI.ParseQuiz(r.Context(), combined, srcType, srcFile, images)
			if err != nil {
				writeAIError(w, err)
				return
			}
			primary = z
		} else {
			primary = ingest.ParseText(combined, srcType, srcFile)
		}

	default:
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}

	final := quiz.Merge(primary, imports)
	if final == nil {
		http.Error(w, "nothing to process", http.StatusBadRequest)
		return
	}

	cur, err := a.Store.GetSession(s.ID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if cur.Epoch != epoch {
		http.Error(w, "session was reset during processing", http.StatusConflict)
		return
	}
	cur.Quiz = final
	if err := a.Store.PutSession(cur); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, final)
}

func firstSourceInfo(s *quiz.Session) (srcType, srcFile string) {
	srcType, srcFile = "text", "Text Input"
	for i := range s.Sources {
		if s.Sources[i].Quiz == nil && s.Sources[i].Text != "" {
			return s.Sources[i].Format, s.Sources[i].FileName
		}
	}
	return srcType, srcFile
}

func writeAIError(w http.ResponseWriter, err error) {
	var rle *ai.RateLimitError
	if errors.As(err, &rle) {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": rle.Message,
			"limit": rle.Limit,
			"used":  rle.Used,
		})
		return
	}
	http.Error(w, err.Error(), http.StatusBadGateway)
}

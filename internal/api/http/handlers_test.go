package http

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
)

func newTestAPI() (*API, http.Handler) {
	a := &API{
		Store:          quiz.NewInMemoryStore(),
		MaxUploadBytes: 8 << 20,
		MaxUploadFiles: 5,
	}
	r := chi.NewRouter()
	a.Mount(r)
	return a, r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) quiz.Session {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	var s quiz.Session
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func uploadText(t *testing.T, h http.Handler, sessionID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)
	if s.Epoch != 1 {
		t.Fatalf("epoch = %d", s.Epoch)
	}

	w := doJSON(t, h, http.MethodGet, "/sessions/"+s.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get session: %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}
	var reset quiz.Session
	_ = json.NewDecoder(w.Body).Decode(&reset)
	if reset.Epoch != 2 {
		t.Fatalf("epoch after reset = %d", reset.Epoch)
	}

	w = doJSON(t, h, http.MethodDelete, "/sessions/"+s.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/sessions/"+s.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", w.Code)
	}
}

const worksheet = `Biology Quiz

1. What is the powerhouse of the cell?
A. Nucleus
B. Mitochondria

2. True or False: Plants perform photosynthesis.

Answer Key: 1. B 2. True
`

func TestUploadAndProcess(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)

	w := uploadText(t, h, s.ID, "worksheet.txt", worksheet)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var after quiz.Session
	_ = json.NewDecoder(w.Body).Decode(&after)
	if len(after.Sources) != 1 {
		t.Fatalf("sources = %d", len(after.Sources))
	}

	w = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", `{"mode":"parse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("process: %d %s", w.Code, w.Body.String())
	}
	var z quiz.Quiz
	if err := json.NewDecoder(w.Body).Decode(&z); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if len(z.Questions) != 2 {
		t.Fatalf("questions = %d", len(z.Questions))
	}
	if !z.Metadata.AnswerKeyFound {
		t.Fatal("answer key not detected")
	}
	if !z.Questions[0].Options[1].IsCorrect {
		t.Fatalf("answer key not applied: %+v", z.Questions[0].Options)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)

	w := uploadText(t, h, s.ID, "photo.png", "binary")
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("code = %d, want 415", w.Code)
	}
}

func TestUploadTooManyFiles(t *testing.T) {
	a, h := newTestAPI()
	a.MaxUploadFiles = 1
	s := createSession(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.txt"} {
		fw, _ := mw.CreateFormFile("files", name)
		_, _ = fw.Write([]byte("text"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+s.ID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}

func TestProcessWithNothing(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)

	w := doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}

func TestProcessGenerateWithoutAI(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)
	_ = uploadText(t, h, s.ID, "notes.txt", "The water cycle has three phases.")

	w := doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", `{"mode":"generate"}`)
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("code = %d, want 501", w.Code)
	}
}

func TestQuizEditing(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)
	_ = uploadText(t, h, s.ID, "worksheet.txt", worksheet)
	_ = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", "")

	w := doJSON(t, h, http.MethodPatch, "/sessions/"+s.ID+"/quiz", `{"title":"Renamed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d", w.Code)
	}
	var z quiz.Quiz
	_ = json.NewDecoder(w.Body).Decode(&z)
	if z.Title != "Renamed" {
		t.Fatalf("title = %q", z.Title)
	}

	w = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/quiz/questions",
		`{"type":"essay","text":"Discuss.","points":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add question: %d %s", w.Code, w.Body.String())
	}
	_ = json.NewDecoder(w.Body).Decode(&z)
	if len(z.Questions) != 3 {
		t.Fatalf("questions = %d", len(z.Questions))
	}
	added := z.Questions[2]
	if added.ID != "q3" || added.Type != quiz.Essay {
		t.Fatalf("added = %+v", added)
	}

	w = doJSON(t, h, http.MethodDelete, "/sessions/"+s.ID+"/quiz/questions/"+added.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete question: %d", w.Code)
	}
	_ = json.NewDecoder(w.Body).Decode(&z)
	if len(z.Questions) != 2 {
		t.Fatalf("questions after delete = %d", len(z.Questions))
	}

	w = doJSON(t, h, http.MethodDelete, "/sessions/"+s.ID+"/quiz/questions/q99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
}

func TestAnswerKeyEndpoint(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)
	_ = uploadText(t, h, s.ID, "quiz.txt", "1. Pick one\nA. Yes\nB. No\n")
	_ = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", "")

	w := doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/quiz/answer-key", `{"text":"1. A"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("answer key: %d %s", w.Code, w.Body.String())
	}
	var z quiz.Quiz
	_ = json.NewDecoder(w.Body).Decode(&z)
	if !z.Questions[0].Options[0].IsCorrect {
		t.Fatalf("answer not applied: %+v", z.Questions[0].Options)
	}
	if !z.Metadata.AnswerKeyFound {
		t.Fatal("answerKeyFound not set")
	}
}

func TestExportDownload(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)
	_ = uploadText(t, h, s.ID, "worksheet.txt", worksheet)
	_ = doJSON(t, h, http.MethodPost, "/sessions/"+s.ID+"/process", "")

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/export?title=Final+Exam", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content-type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Final_Exam_quiz.zip") {
		t.Fatalf("content-disposition = %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("returned data is not a zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["imsmanifest.xml"] {
		t.Fatalf("zip members = %v", names)
	}
}

func TestExportWithoutQuiz(t *testing.T) {
	_, h := newTestAPI()
	s := createSession(t, h)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/export", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409", w.Code)
	}
}

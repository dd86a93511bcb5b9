package http

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/quizforge/quizforge/internal/ingest"
	"github.com/quizforge/quizforge/internal/quiz"
)

const uploadParallelism = 4

// POST /sessions/{sessionID}/files (multipart: files=...)
//
// Files parse concurrently but land in the session in upload order.
// The epoch captured before parsing gates the apply: a reset that
// happened mid-parse wins and the results are dropped.
func (a *API) UploadFiles(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	epoch := s.Epoch

	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "files required", http.StatusBadRequest)
		return
	}
	if a.MaxUploadFiles > 0 && len(headers) > a.MaxUploadFiles {
		http.Error(w, fmt.Sprintf("too many files (max %d)", a.MaxUploadFiles), http.StatusBadRequest)
		return
	}

	// Unsupported extensions reject the whole request before any
	// adapter runs.
	for _, hdr := range headers {
		if _, err := ingest.KindForFilename(hdr.Filename); err != nil {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
	}

	pages := ingest.PageRange{
		Start: formInt(r, "pageStart"),
		End:   formInt(r, "pageEnd"),
	}

	sources := make([]quiz.Source, len(headers))
	g := new(errgroup.Group)
	g.SetLimit(uploadParallelism)
	for i, hdr := range headers {
		i, hdr := i, hdr
		g.Go(func() error {
			f, err := hdr.Open()
			if err != nil {
				return fmt.Errorf("%s: %w", hdr.Filename, err)
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("%s: %w", hdr.Filename, err)
			}
			src, err := ingest.File(hdr.Filename, data, pages)
			if err != nil {
				return err
			}
			src.Order = i
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Order < sources[j].Order })

	cur, err := a.Store.GetSession(s.ID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if cur.Epoch != epoch {
		http.Error(w, "session was reset during upload", http.StatusConflict)
		return
	}
	base := len(cur.Sources)
	for i := range sources {
		sources[i].Order = base + i
	}
	cur.Sources = append(cur.Sources, sources...)
	if err := a.Store.PutSession(cur); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.FormValue(key))
	return n
}

package quiz

import "time"

// Source is one ingested file's contribution to a session: extracted
// text for unstructured documents, a parsed quiz for LMS formats.
type Source struct {
	FileName string   `json:"fileName"`
	Format   string   `json:"format"`
	Order    int      `json:"order"`
	Text     string   `json:"text,omitempty"`
	Quiz     *Quiz    `json:"quiz,omitempty"`
	Images   []Image  `json:"images,omitempty"`
	Dropped  int      `json:"dropped,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Session holds one user's workflow state. Epoch increments on every
// reset; results computed under a stale epoch must be discarded by the
// caller instead of applied.
type Session struct {
	ID        string    `json:"id"`
	Epoch     int64     `json:"epoch"`
	Sources   []Source  `json:"sources,omitempty"`
	Quiz      *Quiz     `json:"quiz,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImportedQuizzes returns the parsed LMS quizzes in upload order.
func (s *Session) ImportedQuizzes() []*Quiz {
	var out []*Quiz
	for i := range s.Sources {
		if q := s.Sources[i].Quiz; q != nil && len(q.Questions) > 0 {
			out = append(out, q)
		}
	}
	return out
}

// CombinedText concatenates non-LMS extracted text in upload order,
// each chunk prefixed with its file name.
func (s *Session) CombinedText() string {
	var b []byte
	for i := range s.Sources {
		src := &s.Sources[i]
		if src.Quiz != nil || src.Text == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, "\n\n"...)
		}
		b = append(b, "--- "...)
		b = append(b, src.FileName...)
		b = append(b, " ---\n"...)
		b = append(b, src.Text...)
	}
	return string(b)
}

// ExtractedImages returns document-level images (not yet owned by a
// question) in upload order.
func (s *Session) ExtractedImages() []Image {
	var out []Image
	for i := range s.Sources {
		out = append(out, s.Sources[i].Images...)
	}
	return out
}

package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Question types form a closed set; behavior branches on these tags
// throughout the adapters and the exporter.
const (
	MultipleChoice = "multiple_choice"
	MultipleSelect = "multiple_select"
	TrueFalse      = "true_false"
	ShortAnswer    = "short_answer"
	Essay          = "essay"
	Matching       = "matching"
	Ordering       = "ordering"
	FillBlank      = "fill_blank"
	Numerical      = "numerical"
)

// Warning strings are matched literally by the answer-key resolver, so
// they must stay byte-for-byte stable.
const (
	WarnNoCorrectAnswer = "No correct answer detected"
	WarnFewOptions      = "Fewer than 2 answer options"
	WarnNoQuestions     = "No questions detected"
)

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Image is self-contained: DataURL carries the base64 payload with its
// mime prefix so nothing downstream needs external file references.
type Image struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	DataURL  string `json:"dataUrl"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Source   string `json:"source"` // docx|qti|upload
}

type Question struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Text          string         `json:"text"`
	Points        float64        `json:"points"`
	Options       []Option       `json:"options,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
	MatchingPairs []MatchingPair `json:"matchingPairs,omitempty"`
	OrderItems    []string       `json:"orderItems,omitempty"`
	Tolerance     float64        `json:"tolerance,omitempty"`
	Explanation   string         `json:"explanation,omitempty"`
	Images        []Image        `json:"images,omitempty"`
	Confidence    int            `json:"confidence"`
	Warnings      []string       `json:"warnings,omitempty"`
}

type Metadata struct {
	SourceType      string    `json:"sourceType"`
	SourceFile      string    `json:"sourceFile,omitempty"`
	SourceCount     int       `json:"sourceCount,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	ParseConfidence int       `json:"parseConfidence"`
	ImageCount      int       `json:"imageCount"`
	Dropped         int       `json:"dropped,omitempty"`
	AnswerKeyFound  bool      `json:"answerKeyFound"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Warnings    []string   `json:"warnings,omitempty"`
	Metadata    Metadata   `json:"metadata"`
}

func NewID() string { return uuid.NewString() }

// IsChoiceType reports whether the type carries options and is subject
// to the no-correct-answer invariant.
func IsChoiceType(t string) bool {
	return t == MultipleChoice || t == MultipleSelect || t == TrueFalse
}

// HasCorrectOption reports whether any option is flagged correct.
func (q *Question) HasCorrectOption() bool {
	for _, o := range q.Options {
		if o.IsCorrect {
			return true
		}
	}
	return false
}

// CheckWarnings re-derives structural warnings for the question. Call
// after any mutation that can affect correctness.
func (q *Question) CheckWarnings() {
	q.Warnings = removeWarning(q.Warnings, WarnNoCorrectAnswer)
	q.Warnings = removeWarning(q.Warnings, WarnFewOptions)
	if IsChoiceType(q.Type) && !q.HasCorrectOption() {
		q.Warnings = append(q.Warnings, WarnNoCorrectAnswer)
	}
	if q.Type == MultipleChoice && len(q.Options) < 2 {
		q.Warnings = append(q.Warnings, WarnFewOptions)
	}
}

func removeWarning(ws []string, w string) []string {
	out := ws[:0]
	for _, s := range ws {
		if s != w {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Recalculate re-derives quiz-level confidence and image count from the
// current question list.
func (z *Quiz) Recalculate() {
	if len(z.Questions) == 0 {
		z.Metadata.ParseConfidence = 0
		z.Metadata.ImageCount = 0
		return
	}
	sum := 0
	imgs := 0
	for i := range z.Questions {
		sum += z.Questions[i].Confidence
		imgs += len(z.Questions[i].Images)
	}
	z.Metadata.ParseConfidence = int(float64(sum)/float64(len(z.Questions)) + 0.5)
	z.Metadata.ImageCount = imgs
}

// AddQuestion appends q with a fresh sequential id.
func (z *Quiz) AddQuestion(q Question) {
	if q.ID == "" {
		q.ID = nextQuestionID(z)
	}
	q.CheckWarnings()
	z.Questions = append(z.Questions, q)
	z.Recalculate()
}

// UpdateQuestion replaces the question with the same id; returns false
// if no question matches.
func (z *Quiz) UpdateQuestion(q Question) bool {
	for i := range z.Questions {
		if z.Questions[i].ID == q.ID {
			q.CheckWarnings()
			z.Questions[i] = q
			z.Recalculate()
			return true
		}
	}
	return false
}

// DeleteQuestion removes the question with the given id.
func (z *Quiz) DeleteQuestion(id string) bool {
	for i := range z.Questions {
		if z.Questions[i].ID == id {
			z.Questions = append(z.Questions[:i], z.Questions[i+1:]...)
			z.Recalculate()
			return true
		}
	}
	return false
}

func nextQuestionID(z *Quiz) string {
	n := len(z.Questions) + 1
	for {
		id := questionID(n)
		taken := false
		for i := range z.Questions {
			if z.Questions[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		n++
	}
}

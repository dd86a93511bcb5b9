package ingest

import (
	"testing"

	"github.com/quizforge/quizforge/internal/quiz"
)

const worksheetSample = `Biology Chapter 5 Quiz

1. What is the powerhouse of the cell?
A. Nucleus
B. Mitochondria
C. Ribosome
D. Golgi apparatus

2. True or False: Plants perform photosynthesis.

3. Briefly explain the role of chlorophyll.

4. Describe the process of cellular respiration in detail.

Answer Key: 1. B 2. True
`

func TestParseTextWorksheet(t *testing.T) {
	z := ParseText(worksheetSample, "text", "worksheet.txt")

	if z.Title != "Biology Chapter 5 Quiz" {
		t.Fatalf("title = %q", z.Title)
	}
	if len(z.Questions) != 4 {
		t.Fatalf("questions = %d, want 4", len(z.Questions))
	}
	if !z.Metadata.AnswerKeyFound {
		t.Fatal("answer key should be detected")
	}

	q1 := z.Questions[0]
	if q1.Type != quiz.MultipleChoice || len(q1.Options) != 4 {
		t.Fatalf("q1 = %+v", q1)
	}
	if !q1.Options[1].IsCorrect || q1.CorrectAnswer != "b" {
		t.Fatalf("q1 answer key not applied: %q %+v", q1.CorrectAnswer, q1.Options)
	}
	if q1.Points != 2 {
		t.Fatalf("q1 points = %v", q1.Points)
	}

	q2 := z.Questions[1]
	if q2.Type != quiz.TrueFalse {
		t.Fatalf("q2 type = %q", q2.Type)
	}
	if !q2.Options[0].IsCorrect || q2.CorrectAnswer != "t" {
		t.Fatalf("q2 answer wrong: %q %+v", q2.CorrectAnswer, q2.Options)
	}

	q3 := z.Questions[2]
	if q3.Type != quiz.ShortAnswer || q3.Points != 5 {
		t.Fatalf("q3 = %+v", q3)
	}

	q4 := z.Questions[3]
	if q4.Type != quiz.Essay || q4.Points != 10 {
		t.Fatalf("q4 = %+v", q4)
	}

	for i, q := range z.Questions {
		if q.Confidence < 85 || q.Confidence > 99 {
			t.Fatalf("q%d confidence out of range: %d", i+1, q.Confidence)
		}
	}
}

func TestParseTextNoAnswerKey(t *testing.T) {
	z := ParseText("1. Pick one\nA. Yes\nB. No\n", "text", "q.txt")

	if z.Metadata.AnswerKeyFound {
		t.Fatal("no answer key in input")
	}
	q := z.Questions[0]
	if q.HasCorrectOption() {
		t.Fatalf("options should be unmarked: %+v", q.Options)
	}
	if !containsWarn(q.Warnings, quiz.WarnNoCorrectAnswer) {
		t.Fatalf("expected no-correct-answer warning, got %v", q.Warnings)
	}
}

func TestParseTextEmpty(t *testing.T) {
	z := ParseText("just prose, nothing numbered", "text", "prose.txt")
	if len(z.Questions) != 0 {
		t.Fatalf("questions = %d", len(z.Questions))
	}
	if !containsWarn(z.Warnings, quiz.WarnNoQuestions) {
		t.Fatalf("warnings = %v", z.Warnings)
	}
	if z.Metadata.ParseConfidence != 0 {
		t.Fatalf("parseConfidence = %d", z.Metadata.ParseConfidence)
	}
}

func TestParseTextTypeHints(t *testing.T) {
	cases := []struct {
		stem string
		want string
	}{
		{"Match the terms with their definitions", quiz.Matching},
		{"Fill in the blank: water is made of ____", quiz.FillBlank},
		{"True/False: the sun is a star", quiz.TrueFalse},
		{"Pick the best option", quiz.MultipleChoice},
	}
	for _, tc := range cases {
		z := ParseText("1. "+tc.stem, "text", "t.txt")
		if len(z.Questions) != 1 {
			t.Fatalf("%q: questions = %d", tc.stem, len(z.Questions))
		}
		if got := z.Questions[0].Type; got != tc.want {
			t.Fatalf("%q: type = %q, want %q", tc.stem, got, tc.want)
		}
	}
}

func containsWarn(ws []string, w string) bool {
	for _, s := range ws {
		if s == w {
			return true
		}
	}
	return false
}

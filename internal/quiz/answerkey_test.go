package quiz

import (
	"reflect"
	"testing"
)

func TestParseAnswerKeyNumbered(t *testing.T) {
	cases := []struct {
		name  string
		input string
		count int
		want  []string
	}{
		{"dotted", "1. B 2. A 3. C", 3, []string{"B", "A", "C"}},
		{"dashed", "1-B, 2-A, 3-C", 3, []string{"B", "A", "C"}},
		{"parens", "1) D 2) C", 2, []string{"D", "C"}},
		{"colon", "1: A 2: B", 2, []string{"A", "B"}},
		{"true false words", "1. True 2. False", 2, []string{"TRUE", "FALSE"}},
		{"tf shorthand", "1. T 2. F", 2, []string{"TRUE", "FALSE"}},
		{"sparse", "2. B", 3, []string{"", "B", ""}},
		{"out of range dropped", "1. A 5. B", 2, []string{"A", ""}},
		{"lowercase", "1. b 2. a", 2, []string{"B", "A"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAnswerKey(tc.input, tc.count)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseAnswerKey(%q, %d) = %v, want %v", tc.input, tc.count, got, tc.want)
			}
		})
	}
}

func TestParseAnswerKeyBareSequence(t *testing.T) {
	got := ParseAnswerKey("Answer Key: B A C D", 4)
	want := []string{"B", "A", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// Sequence longer than the quiz truncates.
	got = ParseAnswerKey("A B C D", 2)
	want = []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// E is not a valid choice letter and does not consume a slot.
	got = ParseAnswerKey("A E B", 3)
	want = []string{"A", "B", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseAnswerKeyNumberedWinsOverSequence(t *testing.T) {
	// Once any numbered entry matches, the bare-sequence strategy never
	// runs, even for the positions the numbered entries left empty.
	got := ParseAnswerKey("1. B\nC D", 3)
	if got[0] != "B" {
		t.Fatalf("numbered entry lost: %v", got)
	}
	if got[1] != "" || got[2] != "" {
		t.Fatalf("sequence fallback ran alongside numbered strategy: %v", got)
	}
}

func TestParseAnswerKeyEmpty(t *testing.T) {
	got := ParseAnswerKey("   ", 3)
	want := []string{"", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func twoOptionQuestion(typ string) Question {
	q := Question{
		ID:   "q1",
		Type: typ,
		Text: "Pick one",
		Options: []Option{
			{ID: "a", Text: "First"},
			{ID: "b", Text: "Second"},
		},
	}
	q.CheckWarnings()
	return q
}

func TestApplyAnswerKeyMultipleChoice(t *testing.T) {
	z := &Quiz{Questions: []Question{twoOptionQuestion(MultipleChoice)}}
	ApplyAnswerKey(z, []string{"B"})

	q := z.Questions[0]
	if q.Options[0].IsCorrect || !q.Options[1].IsCorrect {
		t.Fatalf("option correctness wrong: %+v", q.Options)
	}
	if q.CorrectAnswer != "b" {
		t.Fatalf("CorrectAnswer = %q, want b", q.CorrectAnswer)
	}
	if containsWarning(q.Warnings, WarnNoCorrectAnswer) {
		t.Fatalf("warning not cleared: %v", q.Warnings)
	}
}

func TestApplyAnswerKeyNoMatchingOption(t *testing.T) {
	z := &Quiz{Questions: []Question{twoOptionQuestion(MultipleChoice)}}
	ApplyAnswerKey(z, []string{"D"})

	q := z.Questions[0]
	if q.HasCorrectOption() {
		t.Fatalf("unexpected correct option: %+v", q.Options)
	}
	if !containsWarning(q.Warnings, WarnNoCorrectAnswer) {
		t.Fatalf("warning should survive a failed match: %v", q.Warnings)
	}
}

func TestApplyAnswerKeyTrueFalse(t *testing.T) {
	q := Question{
		ID:   "q1",
		Type: TrueFalse,
		Text: "The sky is blue.",
		Options: []Option{
			{ID: "t", Text: "True"},
			{ID: "f", Text: "False"},
		},
	}
	q.CheckWarnings()
	z := &Quiz{Questions: []Question{q}}

	ApplyAnswerKey(z, []string{"FALSE"})
	got := z.Questions[0]
	if got.Options[0].IsCorrect || !got.Options[1].IsCorrect {
		t.Fatalf("expected false marked correct: %+v", got.Options)
	}
	if got.CorrectAnswer != "f" {
		t.Fatalf("CorrectAnswer = %q, want f", got.CorrectAnswer)
	}

	ApplyAnswerKey(z, []string{"TRUE"})
	got = z.Questions[0]
	if !got.Options[0].IsCorrect || got.Options[1].IsCorrect {
		t.Fatalf("expected true marked correct: %+v", got.Options)
	}
}

func TestApplyAnswerKeySkipsUnsetPositions(t *testing.T) {
	z := &Quiz{Questions: []Question{
		twoOptionQuestion(MultipleChoice),
		twoOptionQuestion(MultipleChoice),
	}}
	ApplyAnswerKey(z, []string{"", "A"})

	if z.Questions[0].HasCorrectOption() {
		t.Fatalf("question 1 should be untouched")
	}
	if !z.Questions[1].Options[0].IsCorrect {
		t.Fatalf("question 2 should have option a correct")
	}
}

func containsWarning(ws []string, w string) bool {
	for _, s := range ws {
		if s == w {
			return true
		}
	}
	return false
}

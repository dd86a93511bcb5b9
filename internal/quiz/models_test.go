package quiz

import "testing"

func TestCheckWarningsChoiceTypes(t *testing.T) {
	q := Question{
		Type: MultipleChoice,
		Options: []Option{
			{ID: "a", Text: "one"},
			{ID: "b", Text: "two"},
		},
	}
	q.CheckWarnings()
	if !containsWarning(q.Warnings, WarnNoCorrectAnswer) {
		t.Fatalf("expected no-correct-answer warning, got %v", q.Warnings)
	}

	q.Options[0].IsCorrect = true
	q.CheckWarnings()
	if containsWarning(q.Warnings, WarnNoCorrectAnswer) {
		t.Fatalf("warning should clear once an option is correct: %v", q.Warnings)
	}
}

func TestCheckWarningsFewOptions(t *testing.T) {
	q := Question{
		Type:    MultipleChoice,
		Options: []Option{{ID: "a", Text: "only", IsCorrect: true}},
	}
	q.CheckWarnings()
	if !containsWarning(q.Warnings, WarnFewOptions) {
		t.Fatalf("expected few-options warning, got %v", q.Warnings)
	}

	// Non-choice types never carry either warning.
	essay := Question{Type: Essay}
	essay.CheckWarnings()
	if len(essay.Warnings) != 0 {
		t.Fatalf("essay warnings = %v", essay.Warnings)
	}
}

func TestCheckWarningsIdempotent(t *testing.T) {
	q := Question{Type: MultipleChoice}
	q.CheckWarnings()
	q.CheckWarnings()
	count := 0
	for _, w := range q.Warnings {
		if w == WarnNoCorrectAnswer {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("warning duplicated: %v", q.Warnings)
	}
}

func TestRecalculate(t *testing.T) {
	z := &Quiz{Questions: []Question{
		{Confidence: 90, Images: []Image{{ID: "i1"}}},
		{Confidence: 85},
	}}
	z.Recalculate()
	if z.Metadata.ParseConfidence != 88 {
		t.Fatalf("parseConfidence = %d, want 88", z.Metadata.ParseConfidence)
	}
	if z.Metadata.ImageCount != 1 {
		t.Fatalf("imageCount = %d, want 1", z.Metadata.ImageCount)
	}

	z.Questions = nil
	z.Recalculate()
	if z.Metadata.ParseConfidence != 0 || z.Metadata.ImageCount != 0 {
		t.Fatalf("empty quiz metadata not zeroed: %+v", z.Metadata)
	}
}

func TestQuestionCRUD(t *testing.T) {
	z := &Quiz{}
	z.AddQuestion(Question{Type: Essay, Text: "Discuss.", Points: 10, Confidence: 100})
	z.AddQuestion(Question{Type: Essay, Text: "Elaborate.", Points: 10, Confidence: 100})
	if z.Questions[0].ID != "q1" || z.Questions[1].ID != "q2" {
		t.Fatalf("ids = %q, %q", z.Questions[0].ID, z.Questions[1].ID)
	}

	if !z.UpdateQuestion(Question{ID: "q2", Type: ShortAnswer, Text: "Summarize.", Points: 5, Confidence: 100}) {
		t.Fatal("update failed")
	}
	if z.Questions[1].Type != ShortAnswer {
		t.Fatalf("update not applied: %+v", z.Questions[1])
	}
	if z.UpdateQuestion(Question{ID: "q9"}) {
		t.Fatal("update of missing id must fail")
	}

	if !z.DeleteQuestion("q1") {
		t.Fatal("delete failed")
	}
	if len(z.Questions) != 1 || z.Questions[0].ID != "q2" {
		t.Fatalf("questions after delete: %+v", z.Questions)
	}
	if z.DeleteQuestion("q1") {
		t.Fatal("double delete must fail")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	s := Session{ID: "s1", Epoch: 1}
	if err := store.PutSession(s); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Epoch != 1 {
		t.Fatalf("epoch = %d", got.Epoch)
	}
	if err := store.DeleteSession("s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetSession("s1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

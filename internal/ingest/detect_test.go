package ingest

import "testing"

func TestKindForFilename(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"quiz.txt", KindText},
		{"Quiz.TXT", KindText},
		{"notes.text", KindText},
		{"exam.docx", KindDOCX},
		{"exam.pdf", KindPDF},
		{"export.xml", KindXML},
		{"package.zip", KindZip},
	}
	for _, tc := range cases {
		got, err := KindForFilename(tc.name)
		if err != nil {
			t.Fatalf("KindForFilename(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("KindForFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}

	for _, name := range []string{"image.png", "quiz.doc", "noext", "archive.tar.gz"} {
		if _, err := KindForFilename(name); err == nil {
			t.Fatalf("KindForFilename(%q) should be rejected", name)
		}
	}
}

func TestDetectXML(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    Format
	}{
		{
			"qti",
			`<?xml version="1.0"?><questestinterop><assessment title="T"></assessment></questestinterop>`,
			FormatQTI,
		},
		{
			"blackboard via bbmd marker",
			`<questestinterop><assessment><qtimetadatafield><fieldlabel>bbmd_questiontype</fieldlabel></qtimetadatafield></assessment></questestinterop>`,
			FormatBlackboard,
		},
		{
			"blackboard via bb_question_type",
			`<questestinterop><item><bb_question_type>Multiple Choice</bb_question_type></item></questestinterop>`,
			FormatBlackboard,
		},
		{
			"moodle",
			`<?xml version="1.0" encoding="UTF-8"?><quiz><question type="multichoice"></question></quiz>`,
			FormatMoodle,
		},
		{
			"unknown root",
			`<workbook><sheet/></workbook>`,
			FormatUnrecognized,
		},
		{
			"malformed",
			`<questestinterop><unclosed`,
			FormatUnrecognized,
		},
		{
			"not xml",
			`1. What color is the sky? A. Blue B. Green`,
			FormatUnrecognized,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectXML([]byte(tc.content)); got != tc.want {
				t.Fatalf("DetectXML = %q, want %q", got, tc.want)
			}
		})
	}
}

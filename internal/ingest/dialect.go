package ingest

import (
	"strconv"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

// Dialect parameterizes the tagged-XML quiz parser. The three LMS
// dialects share most structure and differ only in vocabulary and a
// handful of element preferences, so one engine with per-dialect
// configuration replaces three near-identical parsers.
type Dialect struct {
	SourceType   string
	SourceFile   string
	Confidence   int
	DefaultTitle string
	Description  string
	ErrorLabel   string

	// TypeMap translates the vendor question-type vocabulary into the
	// normalized closed type set. Unmapped strings default to
	// multiple_choice.
	TypeMap map[string]string

	// VendorType recovers the vendor type string from one item element.
	VendorType func(item *node) string

	// Points recovers the point value from one item element.
	Points func(item *node) float64

	// StemNode selects the element carrying the question stem.
	StemNode func(item *node) *node

	// OptionTextNode selects the element carrying an option's text.
	OptionTextNode func(label *node) *node
}

// QTI12 follows the Canvas-flavored QTI 1.2 conventions: question type
// and points live in qtimetadata field pairs.
var QTI12 = Dialect{
	SourceType:   "qti",
	SourceFile:   "QTI Import",
	Confidence:   95,
	DefaultTitle: "Imported QTI Quiz",
	Description:  "Imported from QTI file",
	ErrorLabel:   "QTI",
	TypeMap: map[string]string{
		"multiple_choice_question":         quiz.MultipleChoice,
		"true_false_question":              quiz.TrueFalse,
		"short_answer_question":            quiz.ShortAnswer,
		"essay_question":                   quiz.Essay,
		"matching_question":                quiz.Matching,
		"multiple_answers_question":        quiz.MultipleSelect,
		"fill_in_multiple_blanks_question": quiz.FillBlank,
		"numerical_question":               quiz.Numerical,
		"calculated_question":              quiz.Numerical,
		"text_only_question":               quiz.Essay,
	},
	VendorType: func(item *node) string {
		return qtiMetadataField(item, "question_type")
	},
	Points: func(item *node) float64 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(qtiMetadataField(item, "points_possible")), 64); err == nil && v > 0 {
			return v
		}
		return 1
	},
	StemNode: func(item *node) *node {
		if p := item.find("presentation"); p != nil {
			if m := p.find("mattext"); m != nil {
				return m
			}
		}
		return item.find("mattext")
	},
	OptionTextNode: func(label *node) *node {
		return label.find("mattext")
	},
}

// Moodle covers Moodle's quiz export; it reuses the same engine but the
// item shape diverges enough that parseMoodle owns its own loop.
var Moodle = Dialect{
	SourceType:   "moodle",
	SourceFile:   "Moodle Import",
	Confidence:   90,
	DefaultTitle: "Imported Moodle Quiz",
	Description:  "Imported from Moodle XML format",
	ErrorLabel:   "Moodle",
	TypeMap: map[string]string{
		"multichoice": quiz.MultipleChoice,
		"truefalse":   quiz.TrueFalse,
		"shortanswer": quiz.ShortAnswer,
		"essay":       quiz.Essay,
		"matching":    quiz.Matching,
		"numerical":   quiz.Numerical,
		"cloze":       quiz.FillBlank,
		"multianswer": quiz.FillBlank,
	},
}

// Blackboard shares the questestinterop skeleton with QTI 1.2 but
// carries its type in a bbmd element, its score in
// qmd_absolutescore_max, and prefers mat_formattedtext for text.
var Blackboard = Dialect{
	SourceType:   "blackboard",
	SourceFile:   "Blackboard Import",
	Confidence:   88,
	DefaultTitle: "Imported Blackboard Quiz",
	Description:  "Imported from Blackboard",
	ErrorLabel:   "Blackboard",
	TypeMap: map[string]string{
		"Multiple Choice":   quiz.MultipleChoice,
		"True/False":        quiz.TrueFalse,
		"Short Response":    quiz.ShortAnswer,
		"Essay":             quiz.Essay,
		"Matching":          quiz.Matching,
		"Fill in the Blank": quiz.FillBlank,
		"Numeric":           quiz.Numerical,
		"Multiple Answer":   quiz.MultipleSelect,
	},
	VendorType: func(item *node) string {
		if n := item.find("bbmd_questiontype"); n != nil {
			return strings.TrimSpace(n.textContent())
		}
		return ""
	},
	Points: func(item *node) float64 {
		if n := item.find("qmd_absolutescore_max"); n != nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(n.textContent()), 64); err == nil && v > 0 {
				return v
			}
		}
		return 1
	},
	StemNode: func(item *node) *node {
		if p := item.find("presentation"); p != nil {
			if m := p.find("mat_formattedtext"); m != nil {
				return m
			}
		}
		return item.find("mattext")
	},
	OptionTextNode: func(label *node) *node {
		if m := label.find("mat_formattedtext"); m != nil {
			return m
		}
		return label.find("mattext")
	},
}

func (d Dialect) mapType(vendor string) string {
	if t, ok := d.TypeMap[vendor]; ok {
		return t
	}
	return quiz.MultipleChoice
}

func qtiMetadataField(item *node, label string) string {
	for _, f := range item.findAll("qtimetadatafield") {
		l := f.find("fieldlabel")
		e := f.find("fieldentry")
		if l != nil && e != nil && strings.TrimSpace(l.textContent()) == label {
			return strings.TrimSpace(e.textContent())
		}
	}
	return ""
}

package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

// GenerationConfig controls what the prompt asks the model to produce.
type GenerationConfig struct {
	QuestionTypes       map[string]int `json:"questionTypes"`
	Difficulty          string         `json:"difficulty"`
	BloomsLevels        []string       `json:"bloomsLevels"`
	IncludeExplanations bool           `json:"includeExplanations"`
	DistractorQuality   string         `json:"distractorQuality"`
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		QuestionTypes: map[string]int{
			quiz.MultipleChoice: 4,
			quiz.TrueFalse:      3,
			quiz.ShortAnswer:    2,
			quiz.Essay:          1,
		},
		Difficulty:          "medium",
		BloomsLevels:        []string{"remember", "understand"},
		IncludeExplanations: true,
		DistractorQuality:   "plausible",
	}
}

func (c *GenerationConfig) applyDefaults() {
	def := DefaultGenerationConfig()
	if c.total() == 0 {
		c.QuestionTypes = def.QuestionTypes
	}
	if c.Difficulty == "" {
		c.Difficulty = def.Difficulty
	}
	if len(c.BloomsLevels) == 0 {
		c.BloomsLevels = def.BloomsLevels
	}
	if c.DistractorQuality == "" {
		c.DistractorQuality = def.DistractorQuality
	}
}

func (c GenerationConfig) total() int {
	n := 0
	for _, v := range c.QuestionTypes {
		n += v
	}
	return n
}

var bloomsDescriptions = map[string]string{
	"remember":   "recall facts and basic concepts",
	"understand": "explain ideas or concepts",
	"apply":      "use information in new situations",
	"analyze":    "draw connections among ideas",
	"evaluate":   "justify a decision or course of action",
	"create":     "produce new or original work",
}

// typeOrder keeps the breakdown deterministic across runs.
var typeOrder = []string{
	quiz.MultipleChoice, quiz.TrueFalse, quiz.ShortAnswer, quiz.Essay,
	quiz.Matching, quiz.Ordering, quiz.FillBlank, quiz.Numerical,
}

// BuildPrompt assembles the generation instruction with the source
// material, the requested question breakdown, and strict JSON output
// requirements.
func BuildPrompt(sourceText string, cfg GenerationConfig) string {
	var breakdown []string
	seen := make(map[string]bool, len(cfg.QuestionTypes))
	for _, t := range typeOrder {
		if n := cfg.QuestionTypes[t]; n > 0 {
			breakdown = append(breakdown, fmt.Sprintf("- %s: %d", strings.ReplaceAll(t, "_", " "), n))
			seen[t] = true
		}
	}
	var extra []string
	for t, n := range cfg.QuestionTypes {
		if n > 0 && !seen[t] {
			extra = append(extra, fmt.Sprintf("- %s: %d", strings.ReplaceAll(t, "_", " "), n))
		}
	}
	sort.Strings(extra)
	breakdown = append(breakdown, extra...)

	blooms := make([]string, 0, len(cfg.BloomsLevels))
	for _, level := range cfg.BloomsLevels {
		if desc, ok := bloomsDescriptions[level]; ok {
			blooms = append(blooms, fmt.Sprintf("%s: %s", level, desc))
		} else {
			blooms = append(blooms, level)
		}
	}

	explain := "Do not include explanations."
	if cfg.IncludeExplanations {
		explain = "Include explanations for correct answers."
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert educator creating quiz questions from source material.

SOURCE MATERIAL:
%s

REQUIREMENTS:
Generate exactly %d questions with this breakdown:
%s

Difficulty level: %s
Bloom's taxonomy levels to target: %s
%s

DISTRACTOR QUALITY: %s

CONSTRAINTS:
- All questions must be directly answerable from the source material
- Distractors must be plausible but clearly incorrect when compared to source
- Avoid trick questions, double negatives, and "all of the above" or "none of the above" options
- Each question should test a distinct concept from the material
- Match the requested difficulty and cognitive levels
- For true/false questions, ensure approximately half are true and half are false
- For matching questions, provide 4-6 pairs with clear, distinct matches
- For short answer and essay questions, provide a model answer

OUTPUT FORMAT - Return ONLY valid JSON matching this exact structure:
`,
		sourceText, cfg.total(), strings.Join(breakdown, "\n"),
		cfg.Difficulty, strings.Join(blooms, ", "), explain,
		strings.ReplaceAll(cfg.DistractorQuality, "_", " "))
	b.WriteString(outputSchema)
	b.WriteString("\n\nIMPORTANT: Return ONLY the JSON object, no additional text before or after.")
	return b.String()
}

const outputSchema = `{
  "title": "Generated Quiz",
  "description": "Quiz generated from source material",
  "questions": [
    {
      "type": "multiple_choice",
      "text": "Question text here?",
      "points": 2,
      "options": [
        {"id": "a", "text": "Option A", "isCorrect": true},
        {"id": "b", "text": "Option B", "isCorrect": false},
        {"id": "c", "text": "Option C", "isCorrect": false},
        {"id": "d", "text": "Option D", "isCorrect": false}
      ],
      "explanation": "Explanation of why A is correct (if explanations enabled)",
      "confidence": 90
    },
    {
      "type": "true_false",
      "text": "Statement to evaluate as true or false.",
      "points": 1,
      "options": [
        {"id": "true", "text": "True", "isCorrect": true},
        {"id": "false", "text": "False", "isCorrect": false}
      ],
      "explanation": "Explanation",
      "confidence": 95
    },
    {
      "type": "short_answer",
      "text": "Short answer question?",
      "points": 3,
      "correctAnswer": "Expected answer or key points",
      "explanation": "Model answer or grading rubric",
      "confidence": 85
    },
    {
      "type": "essay",
      "text": "Essay question requiring detailed response?",
      "points": 10,
      "correctAnswer": "Key points that should be covered",
      "explanation": "Grading rubric or model answer outline",
      "confidence": 80
    },
    {
      "type": "matching",
      "text": "Match the items in Column A with Column B",
      "points": 4,
      "matchingPairs": [
        {"left": "Term 1", "right": "Definition 1"},
        {"left": "Term 2", "right": "Definition 2"},
        {"left": "Term 3", "right": "Definition 3"},
        {"left": "Term 4", "right": "Definition 4"}
      ],
      "confidence": 88
    },
    {
      "type": "fill_blank",
      "text": "Complete the sentence: The ____ is important because ____.",
      "points": 2,
      "correctAnswer": "First blank answer; Second blank answer",
      "confidence": 82
    },
    {
      "type": "ordering",
      "text": "Arrange the following in correct order:",
      "points": 3,
      "orderItems": ["First item", "Second item", "Third item", "Fourth item"],
      "confidence": 85
    },
    {
      "type": "numerical",
      "text": "Calculate the value of X.",
      "points": 2,
      "correctAnswer": "42",
      "tolerance": 0.5,
      "explanation": "Calculation steps",
      "confidence": 90
    }
  ]
}`

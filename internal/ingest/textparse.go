package ingest

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

// The heuristic parser recognizes the common worksheet shape: numbered
// question stems followed by lettered options, with an optional
// embedded answer key. It trades precision for never failing: whatever
// it cannot read simply does not become a question.

var (
	answerKeySectionRe = regexp.MustCompile(`(?i)answer\s*key\s*:?\s*(.+)`)
	answerKeyLineRe    = regexp.MustCompile(`(?i)answer\s*key`)
	titleRe            = regexp.MustCompile(`(?i)^(.+?)(Test|Quiz|Exam)`)
	questionLineRe     = regexp.MustCompile(`^(\d+)[.)]\s*(.+)`)
	optionLineRe       = regexp.MustCompile(`^([A-Da-d])[.)]\s*(.+)`)

	trueFalseHintRe = regexp.MustCompile(`(?i)true\s*(/|or)\s*false`)
	shortAnsHintRe  = regexp.MustCompile(`(?i)short answer|briefly|explain`)
	essayHintRe     = regexp.MustCompile(`(?i)essay|describe|discuss`)
	matchingHintRe  = regexp.MustCompile(`(?i)match`)
	fillBlankHintRe = regexp.MustCompile(`(?i)fill in|blank|_____`)
)

// ParseText converts free-form quiz text into the normalized model.
func ParseText(content, sourceType, sourceFile string) *quiz.Quiz {
	var questions []quiz.Question

	var foundAnswers []string
	if m := answerKeySectionRe.FindStringSubmatch(content); m != nil {
		foundAnswers = quiz.ParseAnswerKey(m[1], 100)
	}

	title := "Imported Quiz"
	if m := titleRe.FindString(content); m != "" {
		title = strings.TrimSpace(m)
	}

	var current *quiz.Question
	questionNumber := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || answerKeyLineRe.MatchString(line) {
			continue
		}

		if m := questionLineRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				questions = append(questions, *current)
			}
			questionNumber++
			current = newHeuristicQuestion(questionNumber, m[2], answerAt(foundAnswers, questionNumber-1))
			continue
		}

		if m := optionLineRe.FindStringSubmatch(line); m != nil && current != nil && current.Type == quiz.MultipleChoice {
			optID := strings.ToLower(m[1])
			answer := answerAt(foundAnswers, questionNumber-1)
			isCorrect := answer != "" && strings.ToLower(answer) == optID
			current.Options = append(current.Options, quiz.Option{ID: optID, Text: m[2], IsCorrect: isCorrect})
			if isCorrect {
				current.CorrectAnswer = optID
			}
		}
	}
	if current != nil {
		questions = append(questions, *current)
	}

	for i := range questions {
		questions[i].CheckWarnings()
	}

	z := &quiz.Quiz{
		ID:          quiz.NewID(),
		Title:       title,
		Description: "Imported quiz - please review and verify all questions.",
		Questions:   questions,
		Metadata: quiz.Metadata{
			SourceType:     sourceType,
			SourceFile:     sourceFile,
			CreatedAt:      time.Now(),
			AnswerKeyFound: countAnswers(foundAnswers) > 0,
		},
	}
	if len(questions) == 0 {
		z.Warnings = []string{quiz.WarnNoQuestions}
	}
	z.Recalculate()
	return z
}

func newHeuristicQuestion(number int, text, answer string) *quiz.Question {
	qType := quiz.MultipleChoice
	points := 2.0
	switch {
	case trueFalseHintRe.MatchString(text):
		qType = quiz.TrueFalse
	case shortAnsHintRe.MatchString(text):
		qType = quiz.ShortAnswer
		points = 5
	case essayHintRe.MatchString(text):
		qType = quiz.Essay
		points = 10
	case matchingHintRe.MatchString(text):
		qType = quiz.Matching
	case fillBlankHintRe.MatchString(text):
		qType = quiz.FillBlank
	}

	q := &quiz.Question{
		ID:         fmt.Sprintf("q%d", number),
		Type:       qType,
		Text:       text,
		Points:     points,
		Confidence: 85 + rand.Intn(15),
	}

	if qType == quiz.TrueFalse {
		isTrue := answer == "TRUE"
		isFalse := answer == "FALSE"
		q.Options = []quiz.Option{
			{ID: "t", Text: "True", IsCorrect: isTrue},
			{ID: "f", Text: "False", IsCorrect: isFalse},
		}
		if isTrue {
			q.CorrectAnswer = "t"
		} else if isFalse {
			q.CorrectAnswer = "f"
		}
	}
	return q
}

func answerAt(answers []string, idx int) string {
	if idx < 0 || idx >= len(answers) {
		return ""
	}
	return answers[idx]
}

func countAnswers(answers []string) int {
	n := 0
	for _, a := range answers {
		if a != "" {
			n++
		}
	}
	return n
}

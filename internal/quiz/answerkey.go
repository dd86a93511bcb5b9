package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

// The resolver accepts free-form answer-key text ("1-B, 2-A", "1. True",
// "B A C", ...) and produces a per-question answer token slice. Two
// strategies run in strict priority order: the numbered pattern wins
// outright when it matches at all.

var (
	numberedAnswerRe = regexp.MustCompile(`(?i)(\d+)\s*[.\-\):\s]\s*([A-Z]|TRUE|FALSE|T|F)`)
	answerKeyLabelRe = regexp.MustCompile(`(?i)ANSWER\s*KEY\s*:?`)
	nonLetterRe      = regexp.MustCompile(`[^A-Z\s,\n]`)
	tokenSplitRe     = regexp.MustCompile(`[\s,\n]+`)
	letterTokenRe    = regexp.MustCompile(`^[A-D]$`)
	boolTokenRe      = regexp.MustCompile(`^(TRUE|FALSE|T|F)$`)
)

// ParseAnswerKey parses raw answer-key text into answer tokens indexed
// by 0-based question position. Unresolved positions stay empty.
// Out-of-range numbered entries are dropped silently.
func ParseAnswerKey(input string, questionCount int) []string {
	results := make([]string, questionCount)
	text := strings.ToUpper(strings.TrimSpace(input))
	if text == "" {
		return results
	}

	if matches := numberedAnswerRe.FindAllStringSubmatch(input, -1); len(matches) > 0 {
		for _, m := range matches {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			idx := n - 1
			if idx < 0 || idx >= questionCount {
				continue
			}
			results[idx] = normalizeAnswerToken(strings.ToUpper(m[2]))
		}
		return results
	}

	clean := answerKeyLabelRe.ReplaceAllString(text, "")
	clean = nonLetterRe.ReplaceAllString(clean, " ")
	parts := tokenSplitRe.Split(strings.TrimSpace(clean), -1)

	i := 0
	for _, p := range parts {
		if p == "" || i >= questionCount {
			continue
		}
		if letterTokenRe.MatchString(p) || boolTokenRe.MatchString(p) {
			results[i] = normalizeAnswerToken(p)
			i++
		}
	}
	return results
}

func normalizeAnswerToken(tok string) string {
	switch tok {
	case "T":
		return "TRUE"
	case "F":
		return "FALSE"
	}
	return tok
}

// ApplyAnswerKey sets option correctness from parsed answer tokens. A
// token that matches an option clears the no-correct-answer warning on
// that question; a token that matches nothing leaves the question
// untouched (the warning is deliberately not re-added).
func ApplyAnswerKey(z *Quiz, answers []string) {
	for i := range z.Questions {
		if i >= len(answers) || answers[i] == "" {
			continue
		}
		q := &z.Questions[i]
		answer := answers[i]

		switch q.Type {
		case TrueFalse:
			isTrue := answer == "TRUE" || answer == "T"
			for j := range q.Options {
				id := q.Options[j].ID
				q.Options[j].IsCorrect = (id == "t" && isTrue) || (id == "f" && !isTrue)
			}
			if isTrue {
				q.CorrectAnswer = "t"
			} else {
				q.CorrectAnswer = "f"
			}
			q.Warnings = removeWarning(q.Warnings, WarnNoCorrectAnswer)

		case MultipleChoice, MultipleSelect:
			answerID := strings.ToLower(answer)
			found := false
			for j := range q.Options {
				if q.Options[j].ID == answerID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
			for j := range q.Options {
				q.Options[j].IsCorrect = q.Options[j].ID == answerID
			}
			q.CorrectAnswer = answerID
			q.Warnings = removeWarning(q.Warnings, WarnNoCorrectAnswer)
		}
	}
}

package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

// archiveFiles resolves package-relative paths for image lookup when a
// dialect document arrived inside an IMS zip.
type archiveFiles interface {
	read(path string) ([]byte, bool)
}

// ParseLMS dispatches XML content to the matching dialect parser.
// Unrecognized formats come back as a degraded quiz; adapters never
// leak errors.
func ParseLMS(format Format, content []byte, files archiveFiles) *quiz.Quiz {
	switch format {
	case FormatQTI:
		return ParseQTIFamily(QTI12, content, files)
	case FormatBlackboard:
		return ParseQTIFamily(Blackboard, content, files)
	case FormatMoodle:
		return ParseMoodle(content)
	}
	return degradedQuiz(QTI12, fmt.Errorf("unrecognized LMS format"))
}

// ParseQTIFamily handles the questestinterop dialects (QTI 1.2 and
// Blackboard). One malformed item is dropped and counted; it never
// invalidates the rest of the document.
func ParseQTIFamily(d Dialect, content []byte, files archiveFiles) *quiz.Quiz {
	root, err := parseXMLTree(content)
	if err != nil {
		return degradedQuiz(d, err)
	}

	title := d.DefaultTitle
	if a := root.find("assessment"); a != nil && a.attr("title") != "" {
		title = a.attr("title")
	}

	var questions []quiz.Question
	dropped := 0
	for i, item := range root.findAll("item") {
		q, ok := parseQTIItem(d, item, i, files)
		if !ok {
			dropped++
			continue
		}
		questions = append(questions, q)
	}

	z := &quiz.Quiz{
		ID:          quiz.NewID(),
		Title:       title,
		Description: d.Description,
		Questions:   questions,
		Metadata: quiz.Metadata{
			SourceType:      d.SourceType,
			SourceFile:      d.SourceFile,
			CreatedAt:       time.Now(),
			ParseConfidence: d.Confidence,
			AnswerKeyFound:  true,
		},
	}
	for i := range z.Questions {
		z.Metadata.ImageCount += len(z.Questions[i].Images)
	}
	if dropped > 0 {
		z.Metadata.Dropped = dropped
		z.Warnings = append(z.Warnings, fmt.Sprintf("%d question(s) could not be parsed and were skipped", dropped))
	}
	return z
}

func parseQTIItem(d Dialect, item *node, index int, files archiveFiles) (q quiz.Question, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	qType := d.mapType(d.VendorType(item))

	stem := d.StemNode(item)
	text := extractMattext(stem)

	var rawText string
	if stem != nil {
		rawText = stem.textContent()
	}
	images := extractInlineImages(rawText, files)
	text = strings.TrimSpace(imgTagRe.ReplaceAllString(text, ""))

	var options []quiz.Option
	correctAnswer := ""
	if quiz.IsChoiceType(qType) {
		correctIDs := extractCorrectAnswerIDs(item)
		for i, label := range item.findAll("response_label") {
			id := label.attr("ident")
			if id == "" {
				id = string(rune('a' + i))
			}
			isCorrect := containsString(correctIDs, id)
			if isCorrect && correctAnswer == "" {
				correctAnswer = id
			}
			options = append(options, quiz.Option{
				ID:        id,
				Text:      extractMattext(d.OptionTextNode(label)),
				IsCorrect: isCorrect,
			})
		}
		if qType == quiz.TrueFalse && len(options) == 2 {
			options = normalizeTrueFalseIDs(options)
			correctAnswer = ""
			for _, o := range options {
				if o.IsCorrect {
					correctAnswer = o.ID
					break
				}
			}
		}
	}

	// An item with no stem and no options carries nothing worth keeping.
	if text == "" && len(options) == 0 {
		return quiz.Question{}, false
	}

	q = quiz.Question{
		ID:            fmt.Sprintf("q%d", index+1),
		Type:          qType,
		Text:          text,
		Points:        d.Points(item),
		Options:       options,
		CorrectAnswer: correctAnswer,
		Images:        images,
		Confidence:    d.Confidence,
	}
	q.CheckWarnings()
	return q, true
}

// extractCorrectAnswerIDs unions two mechanisms: respcondition blocks
// whose SCORE setvar is positive, and Canvas-style
// correctresponse/value blocks. Duplicates are removed.
func extractCorrectAnswerIDs(item *node) []string {
	var ids []string
	for _, rc := range item.findAll("respcondition") {
		sv := rc.find("setvar")
		if sv == nil {
			continue
		}
		varname := sv.attr("varname")
		if varname == "" {
			varname = sv.attr("name")
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(sv.textContent()), 64)
		if err != nil || score <= 0 {
			continue
		}
		if varname != "" && !strings.EqualFold(varname, "SCORE") {
			continue
		}
		for _, ve := range rc.findAll("varequal") {
			if id := strings.TrimSpace(ve.textContent()); id != "" && !containsString(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	if cr := item.find("correctresponse"); cr != nil {
		for _, v := range cr.findAll("value") {
			if id := strings.TrimSpace(v.textContent()); id != "" && !containsString(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func normalizeTrueFalseIDs(options []quiz.Option) []quiz.Option {
	out := make([]quiz.Option, len(options))
	copy(out, options)
	for i := range out {
		switch strings.ToLower(out[i].Text) {
		case "true", "t":
			out[i].ID = "t"
		case "false", "f":
			out[i].ID = "f"
		}
	}
	return out
}

// ParseMoodle handles Moodle's quiz export. Category and description
// pseudo-questions are skipped; an answer's positive fraction marks it
// correct (partial credit registers as fully correct, kept for
// compatibility).
func ParseMoodle(content []byte) *quiz.Quiz {
	d := Moodle
	root, err := parseXMLTree(content)
	if err != nil {
		return degradedQuiz(d, err)
	}

	var questions []quiz.Question
	for _, qEl := range root.findAll("question") {
		vendorType := qEl.attr("type")
		if vendorType == "category" || vendorType == "description" {
			continue
		}
		qType := d.mapType(vendorType)

		text := ""
		if qt := qEl.find("questiontext"); qt != nil {
			if t := qt.find("text"); t != nil {
				text = stripHTMLTags(t.textContent())
			}
		}
		if text == "" {
			if name := qEl.find("name"); name != nil {
				if t := name.find("text"); t != nil {
					text = strings.TrimSpace(t.textContent())
				}
			}
		}

		points := 1.0
		if dg := qEl.find("defaultgrade"); dg != nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(dg.textContent()), 64); err == nil && v > 0 {
				points = v
			}
		}

		var options []quiz.Option
		correctAnswer := ""
		if qType == quiz.MultipleChoice || qType == quiz.TrueFalse {
			for i, ans := range qEl.findAll("answer") {
				fraction, _ := strconv.ParseFloat(strings.TrimSpace(ans.attr("fraction")), 64)
				id := string(rune('a' + i))
				isCorrect := fraction > 0
				if isCorrect && correctAnswer == "" {
					correctAnswer = id
				}
				optText := ""
				if t := ans.find("text"); t != nil {
					optText = stripHTMLTags(t.textContent())
				}
				options = append(options, quiz.Option{ID: id, Text: optText, IsCorrect: isCorrect})
			}
			if qType == quiz.TrueFalse {
				options = normalizeTrueFalseIDs(options)
				correctAnswer = ""
				for _, o := range options {
					if o.IsCorrect {
						correctAnswer = o.ID
						break
					}
				}
			}
		}

		q := quiz.Question{
			ID:            fmt.Sprintf("q%d", len(questions)+1),
			Type:          qType,
			Text:          text,
			Points:        points,
			Options:       options,
			CorrectAnswer: correctAnswer,
			Confidence:    d.Confidence,
		}
		q.CheckWarnings()
		questions = append(questions, q)
	}

	return &quiz.Quiz{
		ID:          quiz.NewID(),
		Title:       d.DefaultTitle,
		Description: d.Description,
		Questions:   questions,
		Metadata: quiz.Metadata{
			SourceType:      d.SourceType,
			SourceFile:      d.SourceFile,
			CreatedAt:       time.Now(),
			ParseConfidence: d.Confidence,
			AnswerKeyFound:  true,
		},
	}
}

func degradedQuiz(d Dialect, err error) *quiz.Quiz {
	return &quiz.Quiz{
		ID:          quiz.NewID(),
		Title:       "Import Error",
		Description: fmt.Sprintf("Failed to parse %s file: %v", d.ErrorLabel, err),
		Warnings:    []string{fmt.Sprintf("Import failed: %v", err)},
		Metadata: quiz.Metadata{
			SourceType: d.SourceType,
			CreatedAt:  time.Now(),
		},
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

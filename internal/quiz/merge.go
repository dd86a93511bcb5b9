package quiz

import (
	"fmt"
	"time"
)

func questionID(n int) string { return fmt.Sprintf("q%d", n) }

// Merge combines an optional primary quiz with imported quizzes into a
// single quiz. Question order is concatenation order; ids are
// reassigned q1..qN so they stay unique after the merge. A single
// source passes through unchanged.
func Merge(primary *Quiz, imports []*Quiz) *Quiz {
	if len(imports) == 0 && primary != nil {
		return primary
	}
	if primary == nil && len(imports) == 1 {
		return imports[0]
	}
	if primary == nil && len(imports) == 0 {
		return nil
	}

	all := make([]*Quiz, 0, len(imports)+1)
	if primary != nil {
		all = append(all, primary)
	}
	all = append(all, imports...)

	idx := 0
	var questions []Question
	for _, src := range all {
		for _, q := range src.Questions {
			idx++
			q.ID = questionID(idx)
			questions = append(questions, q)
		}
	}

	base := all[0]
	title := base.Title
	description := base.Description
	sourceType := base.Metadata.SourceType
	if len(all) > 1 {
		title = "Combined Quiz"
		description = fmt.Sprintf("Combined from %d sources", len(all))
		sourceType = "merged"
	}

	var warnings []string
	confSum := 0
	imageCount := 0
	answerKeyFound := false
	for _, src := range all {
		warnings = append(warnings, src.Warnings...)
		conf := src.Metadata.ParseConfidence
		if conf == 0 {
			conf = 80
		}
		confSum += conf
		answerKeyFound = answerKeyFound || src.Metadata.AnswerKeyFound
	}
	for i := range questions {
		imageCount += len(questions[i].Images)
	}

	return &Quiz{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Questions:   questions,
		Warnings:    warnings,
		Metadata: Metadata{
			SourceType:      sourceType,
			SourceCount:     len(all),
			CreatedAt:       time.Now(),
			ParseConfidence: int(float64(confSum)/float64(len(all)) + 0.5),
			ImageCount:      imageCount,
			AnswerKeyFound:  answerKeyFound,
		},
	}
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

// ParseQuiz asks the model to extract structured questions from raw
// quiz text. Extracted images travel alongside as numbered references
// so the model can attach them to the questions that mention them.
func (c *Client) ParseQuiz(ctx context.Context, content, sourceType, sourceFile string, images []quiz.Image) (*quiz.Quiz, error) {
	reqBody, err := json.Marshal(generateRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Messages:  []message{{Role: "user", Content: buildParsePrompt(content, len(images))}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ClientID != "" {
		req.Header.Set("X-Client-ID", c.ClientID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	defer resp.Body.Close()

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		rle := &RateLimitError{Message: "rate limit exceeded"}
		if gr.Error != nil {
			rle.Message = gr.Error.Message
			rle.Limit = gr.Error.Limit
			rle.Used = gr.Error.Used
		}
		return nil, rle
	}
	if resp.StatusCode != http.StatusOK {
		if gr.Error != nil {
			return nil, fmt.Errorf("parse failed: %s", gr.Error.Message)
		}
		return nil, fmt.Errorf("parse failed: status %d", resp.StatusCode)
	}
	if len(gr.Content) == 0 {
		return nil, errors.New("parse response had no content")
	}

	return DecodeParsedQuiz(gr.Content[0].Text, sourceType, sourceFile, images)
}

type parsedQuestion struct {
	quiz.Question
	ImageRefs []int `json:"imageRefs"`
}

type parsedPayload struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Questions      []parsedQuestion `json:"questions"`
	AnswerKeyFound bool             `json:"answerKeyFound"`
	Warnings       []string         `json:"warnings"`
}

// DecodeParsedQuiz normalizes the model's extraction output and
// resolves 1-based imageRefs against the extracted image list.
func DecodeParsedQuiz(text, sourceType, sourceFile string, images []quiz.Image) (*quiz.Quiz, error) {
	jsonStr := strings.TrimSpace(text)
	if m := fencedJSONRe.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = strings.TrimSpace(m[1])
	}

	var p parsedPayload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON: %w", err)
	}

	questions := make([]quiz.Question, 0, len(p.Questions))
	for i, pq := range p.Questions {
		q := pq.Question
		q.ID = fmt.Sprintf("q%d", i+1)
		if q.Type == "" {
			q.Type = quiz.MultipleChoice
		}
		if q.Text == "" {
			q.Text = "Question text missing"
		}
		if q.Points <= 0 {
			q.Points = 1
		}
		if q.Confidence <= 0 || q.Confidence > 100 {
			q.Confidence = 80
		}
		q.Images = nil
		for _, ref := range pq.ImageRefs {
			idx := ref - 1
			if idx >= 0 && idx < len(images) {
				img := images[idx]
				img.ID = quiz.NewID()
				q.Images = append(q.Images, img)
			}
		}
		q.CheckWarnings()
		questions = append(questions, q)
	}

	z := &quiz.Quiz{
		ID:          quiz.NewID(),
		Title:       p.Title,
		Description: p.Description,
		Questions:   questions,
		Warnings:    p.Warnings,
		Metadata: quiz.Metadata{
			SourceType:     sourceType,
			SourceFile:     sourceFile,
			CreatedAt:      time.Now(),
			ImageCount:     len(images),
			AnswerKeyFound: p.AnswerKeyFound,
		},
	}
	if z.Title == "" {
		z.Title = "Imported Quiz"
	}
	if len(questions) == 0 {
		z.Warnings = append(z.Warnings, quiz.WarnNoQuestions)
	}
	if len(questions) > 0 {
		sum := 0
		for i := range questions {
			sum += questions[i].Confidence
		}
		z.Metadata.ParseConfidence = int(float64(sum)/float64(len(questions)) + 0.5)
	}
	return z, nil
}

func buildParsePrompt(content string, imageCount int) string {
	imageContext := ""
	if imageCount > 0 {
		imageContext = fmt.Sprintf("\n\nNOTE: This document contains %d embedded images. They are referenced as [IMAGE_1], [IMAGE_2], etc. When you detect that a question references an image, include an \"imageRefs\" array with the image numbers.", imageCount)
	}
	return fmt.Sprintf(`You are a quiz parsing assistant. Parse the following quiz content and extract structured data.

IMPORTANT: Look for an answer key in the document. It might be at the end, labeled "Answer Key", "Answers", or just a list like "1-B, 2-A, 3-C". If you find answers, mark the correct options.

Handle inconsistent formatting gracefully:
- Questions may be numbered as 1., 1), A., a), etc.
- Answer choices may use various markers
- Question types: multiple_choice, multiple_select, true_false, short_answer, essay, matching, fill_blank
%s

Output ONLY valid JSON in this format:
{
  "title": "Quiz Title",
  "description": "Instructions if found",
  "questions": [
    {
      "id": "q1",
      "type": "multiple_choice",
      "text": "Question text",
      "points": 1,
      "options": [
        {"id": "a", "text": "Option A", "isCorrect": false},
        {"id": "b", "text": "Option B", "isCorrect": true}
      ],
      "correctAnswer": "b",
      "confidence": 95,
      "warnings": [],
      "imageRefs": []
    }
  ],
  "answerKeyFound": true,
  "warnings": []
}

For true_false: options should be [{"id": "t", "text": "True", "isCorrect": ?}, {"id": "f", "text": "False", "isCorrect": ?}]
Confidence: 0-100 indicating parsing confidence.
answerKeyFound: true if you found and applied an answer key.

QUIZ CONTENT:
---
%s
---`, imageContext, content)
}

// Package ai talks to the hosted question-generation model through the
// API proxy. The proxy's JSON payload uses the same shape as the
// normalized quiz model, but it is an untrusted external schema: every
// field is validated and defaulted on receipt.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

type Client struct {
	BaseURL    string
	Model      string
	MaxTokens  int
	ClientID   string
	HTTPClient *http.Client
}

func NewClient(baseURL, model string, maxTokens int, clientID string) *Client {
	return &Client{
		BaseURL:   baseURL,
		Model:     model,
		MaxTokens: maxTokens,
		ClientID:  clientID,
		// No timeout: a hanging generation blocks only its own session's
		// progress, and partial-source prompts can run long.
		HTTPClient: &http.Client{},
	}
}

// RateLimitError carries the proxy's structured quota counters so the
// caller can surface them.
type RateLimitError struct {
	Limit   int
	Used    int
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("rate limit exceeded (%d/%d)", e.Used, e.Limit)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type generateResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Limit   int    `json:"limit"`
		Used    int    `json:"used"`
	} `json:"error"`
}

// GenerateQuiz sends the source text with the generation prompt and
// normalizes the model's reply into a quiz.
func (c *Client) GenerateQuiz(ctx context.Context, sourceText string, cfg GenerationConfig) (*quiz.Quiz, error) {
	cfg.applyDefaults()
	reqBody, err := json.Marshal(generateRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Messages:  []message{{Role: "user", Content: BuildPrompt(sourceText, cfg)}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ClientID != "" {
		req.Header.Set("X-Client-ID", c.ClientID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("generation response: %w", err)
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
			return nil, fmt.Errorf("generation failed: %s", gr.Error.Message)
		}
		return nil, fmt.Errorf("generation failed: status %d", resp.StatusCode)
	}
	if len(gr.Content) == 0 {
		return nil, errors.New("generation response had no content")
	}

	return DecodeQuizJSON(gr.Content[0].Text)
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// payload mirrors the expected response document. Defaults are applied
// after decoding; nothing here is trusted structurally.
type payload struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Questions      []quiz.Question `json:"questions"`
	AnswerKeyFound bool            `json:"answerKeyFound"`
	Warnings       []string        `json:"warnings"`
}

// DecodeQuizJSON accepts raw JSON or JSON fenced in a markdown code
// block and normalizes it into the quiz model.
func DecodeQuizJSON(text string) (*quiz.Quiz, error) {
	jsonStr := strings.TrimSpace(text)
	if m := fencedJSONRe.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = strings.TrimSpace(m[1])
	}

	var p payload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON: %w", err)
	}

	questions := make([]quiz.Question, 0, len(p.Questions))
	for i, q := range p.Questions {
		q.ID = fmt.Sprintf("q%d", i+1)
		if q.Type == "" {
			q.Type = quiz.MultipleChoice
		}
		if q.Text == "" {
			q.Text = "Question text missing"
		}
		if q.Points <= 0 {
			q.Points = 2
		}
		if q.Confidence <= 0 || q.Confidence > 100 {
			q.Confidence = 80
		}
		q.Images = nil
		q.Warnings = nil
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
			SourceType:     "text",
			SourceFile:     "Source Material",
			CreatedAt:      time.Now(),
			AnswerKeyFound: p.AnswerKeyFound,
		},
	}
	if z.Title == "" {
		z.Title = "Generated Quiz"
	}
	if z.Description == "" {
		z.Description = "Quiz generated from source material"
	}
	if len(questions) == 0 {
		z.Warnings = append(z.Warnings, "No questions generated")
	}
	z.Recalculate()
	return z, nil
}

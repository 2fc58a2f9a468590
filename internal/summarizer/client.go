// Package summarizer writes page titles and descriptions with an
// OpenAI-compatible chat completions API.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
)

const (
	// DefaultBaseURL is the public OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	temperature     = 0.3
	maxTokens       = 100
	maxResponseBody = 1 << 20
)

var (
	errMissingKey   = errors.New("no OpenAI API key available")
	errEmptyChoices = errors.New("completion has no choices")
)

// Client summarizes pages through the chat completions endpoint. A
// caller-supplied key takes precedence over the server default.
type Client struct {
	baseURL    string
	defaultKey string
	model      string
	client     *http.Client
}

// NewClient returns a Client. Empty baseURL and model select the defaults.
func NewClient(baseURL, defaultKey, chatModel string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if chatModel == "" {
		chatModel = DefaultModel
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultKey: defaultKey,
		model:      chatModel,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize asks the model for a title and description of the page. Fields
// the model leaves out come back empty.
func (c *Client) Summarize(ctx context.Context, pageURL, markdown string, creds model.Credentials) (model.Summary, error) {
	key := creds.OpenAIKey
	if key == "" {
		key = c.defaultKey
	}
	if key == "" {
		return model.Summary{}, &errs.AppError{Kind: errs.Unauthorized, Message: "Summaries need an OpenAI API key.", Cause: errMissingKey}
	}

	content := truncate(markdown, maxContentRunes)
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(pageURL, content)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
	}

	text, err := c.complete(ctx, key, reqBody)
	if err != nil {
		return model.Summary{}, err
	}
	return parseSummary(text)
}

func (c *Client) complete(ctx context.Context, key string, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := errs.Unreachable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = errs.Timeout
		}
		return "", &errs.AppError{Kind: kind, Message: "The summarization service could not be reached.", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		kind := errs.Unreachable
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = errs.Unauthorized
		case http.StatusTooManyRequests:
			kind = errs.RateLimited
		}
		return "", &errs.AppError{
			Kind:           kind,
			UpstreamStatus: resp.StatusCode,
			Message:        "The summarization service returned an error status.",
		}
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return "", &errs.AppError{Kind: errs.ParsingFailed, Message: "Unreadable summarization response.", Cause: err}
	}
	if len(out.Choices) == 0 {
		return "", &errs.AppError{Kind: errs.ParsingFailed, Message: "Unreadable summarization response.", Cause: errEmptyChoices}
	}
	return out.Choices[0].Message.Content, nil
}

// parseSummary reads the first JSON object in the model's answer.
func parseSummary(text string) (model.Summary, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return model.Summary{}, &errs.AppError{Kind: errs.ParsingFailed, Message: "Unreadable summarization response.", Cause: err}
	}
	var s model.Summary
	if err := json.Unmarshal([]byte(obj), &s); err != nil {
		return model.Summary{}, &errs.AppError{Kind: errs.ParsingFailed, Message: "Unreadable summarization response.", Cause: err}
	}
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	return s, nil
}

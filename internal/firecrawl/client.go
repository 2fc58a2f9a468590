// Package firecrawl discovers and fetches site pages through the Firecrawl
// HTTP API.
package firecrawl

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

// DefaultBaseURL is the public Firecrawl API.
const DefaultBaseURL = "https://api.firecrawl.dev"

const (
	scrapeFailedMessage = "Scraping failed"
	mapFailedMessage    = "The website could not be mapped."
	missingKeyMessage   = "A Firecrawl API key is required."

	// Scrape timeout requested from Firecrawl, in milliseconds.
	scrapeTimeoutMillis = 30000

	maxResponseBody = 10 << 20
)

var errUnexpectedStatus = errors.New("unexpected status from firecrawl")

// Client calls the Firecrawl map and scrape endpoints. A caller-supplied key
// takes precedence over the server default.
type Client struct {
	baseURL    string
	defaultKey string
	client     *http.Client
}

// NewClient returns a Client for baseURL. An empty baseURL selects the public
// API.
func NewClient(baseURL, defaultKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultKey: defaultKey,
		client: &http.Client{
			// Firecrawl is given 30s per scrape; leave room for the round trip.
			Timeout: 45 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type mapRequest struct {
	URL               string `json:"url"`
	Limit             int    `json:"limit"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
	IgnoreSitemap     bool   `json:"ignoreSitemap"`
}

type mapResponse struct {
	Success bool     `json:"success"`
	Links   []string `json:"links"`
	Error   string   `json:"error"`
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int      `json:"timeout"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

// Discover maps siteURL and returns up to limit page URLs.
func (c *Client) Discover(ctx context.Context, siteURL string, creds model.Credentials, limit int) ([]string, error) {
	key, err := c.key(creds)
	if err != nil {
		return nil, err
	}

	var resp mapResponse
	err = c.post(ctx, "/v1/map", key, mapRequest{URL: siteURL, Limit: limit}, &resp, mapFailedMessage)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: mapFailedMessage,
			Cause:   upstreamError(resp.Error),
		}
	}
	return resp.Links, nil
}

// Fetch scrapes pageURL and returns its main content as markdown.
func (c *Client) Fetch(ctx context.Context, pageURL string, creds model.Credentials) (string, error) {
	key, err := c.key(creds)
	if err != nil {
		return "", err
	}

	var resp scrapeResponse
	err = c.post(ctx, "/v1/scrape", key, scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         scrapeTimeoutMillis,
	}, &resp, scrapeFailedMessage)
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Data == nil || strings.TrimSpace(resp.Data.Markdown) == "" {
		return "", &errs.AppError{
			Kind:    errs.NoContent,
			Message: scrapeFailedMessage,
			Cause:   upstreamError(resp.Error),
		}
	}
	return resp.Data.Markdown, nil
}

func (c *Client) key(creds model.Credentials) (string, error) {
	if creds.FirecrawlKey != "" {
		return creds.FirecrawlKey, nil
	}
	if c.defaultKey != "" {
		return c.defaultKey, nil
	}
	return "", &errs.AppError{Kind: errs.Unauthorized, Message: missingKeyMessage}
}

// post sends in to path and decodes the reply into out. failedMessage
// describes an upstream failure that has no more specific status mapping.
func (c *Client) post(ctx context.Context, path, key string, in, out any, failedMessage string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode firecrawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build firecrawl request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := errs.Unreachable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = errs.Timeout
		}
		return &errs.AppError{Kind: kind, Message: "Firecrawl could not be reached.", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxResponseBody)

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, body)
		return statusError(resp.StatusCode, failedMessage)
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Firecrawl returned an unreadable response.",
			Cause:   err,
		}
	}
	return nil
}

func statusError(status int, failedMessage string) *errs.AppError {
	appErr := &errs.AppError{
		UpstreamStatus: status,
		Cause:          fmt.Errorf("%w: %d", errUnexpectedStatus, status),
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		appErr.Kind = errs.Unauthorized
		appErr.Message = "The Firecrawl API key was rejected."
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		appErr.Kind = errs.RateLimited
		appErr.Message = "The Firecrawl quota is exhausted. Try again later."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		appErr.Kind = errs.Timeout
		appErr.Message = "Firecrawl timed out."
	default:
		appErr.Kind = errs.Unreachable
		appErr.Message = failedMessage
	}
	return appErr
}

func upstreamError(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

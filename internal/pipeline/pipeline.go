// Package pipeline runs one llms.txt generation: discover a site's pages, fetch
// and summarize them concurrently, report progress and assemble the documents.
package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Bahjat/llms-txt-generator/internal/llmstxt"
	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
	"github.com/Bahjat/llms-txt-generator/internal/platform/requestid"
	"github.com/Bahjat/llms-txt-generator/internal/progress"
)

const (
	invalidURLMessage = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."
	noURLsMessage     = "No URLs found for the website."
)

// Limits bounds how many pages one generation may process.
type Limits struct {
	Default int // keyed caller without an explicit choice
	Cap     int // hard ceiling for keyed callers
	Free    int // fixed ceiling for callers without their own key
}

// Effective resolves the URL ceiling for a request. It is never below 1.
func (l Limits) Effective(requested int, hasKey bool) int {
	limit := l.Free
	if hasKey {
		limit = l.Default
		if requested > 0 {
			limit = min(requested, l.Cap)
		}
	}
	return max(limit, 1)
}

// Request is one generation as submitted by a caller.
type Request struct {
	SiteURL     string
	MaxURLs     int
	Credentials model.Credentials
}

// Pipeline orchestrates discovery, page workers and document assembly.
type Pipeline struct {
	discoverer Discoverer
	worker     *Worker
	limits     Limits
	logger     *slog.Logger
	now        func() time.Time
}

// New returns a Pipeline.
func New(discoverer Discoverer, worker *Worker, limits Limits, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		discoverer: discoverer,
		worker:     worker,
		limits:     limits,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one generation, publishing snapshots on out and closing it
// after the terminal snapshot, which is also returned. Publishing to an
// abandoned channel is a no-op; page workers still run to completion.
func (p *Pipeline) Run(ctx context.Context, req Request, out *progress.Channel) model.ProgressSnapshot {
	defer out.Close()

	logger := p.logger.With(
		"run_id", requestid.New(),
		"request_id", requestid.FromContext(ctx),
		"url", req.SiteURL,
	)

	siteURL, err := NormalizeSiteURL(req.SiteURL)
	if err != nil {
		return p.fail(out, logger, err)
	}
	hasFullAccess := req.Credentials.HasFullAccess()
	limit := p.limits.Effective(req.MaxURLs, hasFullAccess)
	logger.Info("generation started", "limit", limit, "full_access", hasFullAccess)

	out.Publish(model.ProgressSnapshot{Status: model.StatusMapping, Errors: []model.PageError{}})

	discovered, err := p.discoverer.Discover(ctx, siteURL, req.Credentials, limit)
	if err != nil {
		return p.fail(out, logger, err)
	}
	urls := uniqueURLs(discovered)
	if len(urls) == 0 {
		return p.fail(out, logger, &errs.AppError{Kind: errs.NoContent, Message: noURLsMessage})
	}
	urls = urls[:min(len(urls), limit)]
	total := len(urls)
	logger.Info("discovery complete", "discovered", len(discovered), "total", total)

	out.Publish(model.ProgressSnapshot{Status: model.StatusScraping, TotalURLs: total, Errors: []model.PageError{}})

	outcomes := make(chan model.PageOutcome)
	var wg sync.WaitGroup
	for i, u := range urls {
		task := model.PageTask{URL: u, Index: i}
		wg.Go(func() {
			outcomes <- p.worker.Process(ctx, task, req.Credentials)
		})
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// This loop is the only owner of the counters and the error list.
	var (
		processed  int
		pageErrors []model.PageError
		pages      = make([]model.PageResult, 0, total)
	)
	for outcome := range outcomes {
		processed++
		if outcome.Failure != nil {
			pageErrors = append(pageErrors, *outcome.Failure)
			logger.Warn("page failed", "page_url", outcome.Task.URL, "error", outcome.Failure.Message)
		} else {
			pages = append(pages, *outcome.Result)
		}

		out.Publish(model.ProgressSnapshot{
			Status:        model.StatusScraping,
			TotalURLs:     total,
			ProcessedURLs: processed,
			CurrentURL:    outcome.Task.URL,
			Errors:        copyErrors(pageErrors),
		})
	}

	out.Publish(model.ProgressSnapshot{
		Status:        model.StatusGenerating,
		TotalURLs:     total,
		ProcessedURLs: processed,
		Errors:        copyErrors(pageErrors),
	})

	docs := llmstxt.AssembleAt(pages, siteURL, hasFullAccess, p.now())

	final := model.ProgressSnapshot{
		Status:        model.StatusCompleted,
		TotalURLs:     total,
		ProcessedURLs: processed,
		Errors:        copyErrors(pageErrors),
		Files: &model.Files{
			LLMSTxt:     docs.LLMSTxt,
			LLMSFullTxt: docs.LLMSFullTxt,
		},
	}
	out.Publish(final)

	logger.Info("generation complete",
		"total", total,
		"succeeded", len(pages),
		"failed", len(pageErrors),
		"delivered", !out.Abandoned(),
	)
	return final
}

func (p *Pipeline) fail(out *progress.Channel, logger *slog.Logger, err error) model.ProgressSnapshot {
	logger.Error("generation failed", "error", err)

	final := model.ProgressSnapshot{
		Status: model.StatusError,
		Errors: []model.PageError{{Message: errs.Message(err)}},
	}
	out.Publish(final)
	return final
}

// NormalizeSiteURL validates a user-supplied site URL and returns it in
// canonical form: https assumed when no scheme is given, lowercase scheme and
// host, no fragment, no bare trailing slash.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: "The \"url\" field is required."}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage, Cause: err}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: "Only http and https URLs are supported."}
	}
	if u.Host == "" {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage}
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "/" && u.RawQuery == "" {
		u.Path = ""
	}
	return u.String(), nil
}

func uniqueURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// copyErrors gives each snapshot its own error slice, never nil.
func copyErrors(src []model.PageError) []model.PageError {
	return append(make([]model.PageError, 0, len(src)), src...)
}

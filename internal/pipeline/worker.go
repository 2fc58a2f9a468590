package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Bahjat/llms-txt-generator/internal/llmstxt"
	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
)

const emptyPageMessage = "No usable content could be extracted from the page."

var firstHeading = regexp.MustCompile(`(?m)^[ \t]*#[ \t]+(.+?)[ \t#]*$`)

// Worker fetches and summarizes one page.
type Worker struct {
	fetcher    Fetcher
	summarizer Summarizer
	logger     *slog.Logger
}

// NewWorker returns a Worker backed by the given collaborators.
func NewWorker(fetcher Fetcher, summarizer Summarizer, logger *slog.Logger) *Worker {
	return &Worker{fetcher: fetcher, summarizer: summarizer, logger: logger}
}

// Process fetches task.URL and summarizes it. A fetch failure yields a
// failed outcome and skips summarization; a summarization failure is absorbed
// with placeholder text.
func (w *Worker) Process(ctx context.Context, task model.PageTask, creds model.Credentials) model.PageOutcome {
	markdown, err := w.fetcher.Fetch(ctx, task.URL, creds)
	if err == nil && strings.TrimSpace(markdown) == "" {
		err = &errs.AppError{Kind: errs.NoContent, Message: emptyPageMessage}
	}
	if err != nil {
		return model.PageOutcome{
			Task:    task,
			Failure: &model.PageError{URL: task.URL, Message: errs.Message(err)},
		}
	}

	summary, err := w.summarizer.Summarize(ctx, task.URL, markdown, creds)
	if err != nil {
		w.logger.Debug("summarization failed, using fallback",
			"page_url", task.URL,
			"error", err,
		)
		summary = model.Summary{}
	}

	return model.PageOutcome{
		Task: task,
		Result: &model.PageResult{
			URL:         task.URL,
			Index:       task.Index,
			Title:       titleOrFallback(summary.Title, markdown),
			Description: descriptionOrFallback(summary.Description),
			Markdown:    markdown,
		},
	}
}

func titleOrFallback(title, markdown string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	if m := firstHeading.FindStringSubmatch(markdown); m != nil {
		return m[1]
	}
	return llmstxt.PlaceholderTitle
}

func descriptionOrFallback(description string) string {
	if description = strings.TrimSpace(description); description != "" {
		return description
	}
	return llmstxt.PlaceholderDescription
}

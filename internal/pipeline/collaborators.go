package pipeline

import (
	"context"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

// Discoverer lists candidate page URLs for a site, in the order they should
// appear in the output.
type Discoverer interface {
	Discover(ctx context.Context, siteURL string, creds model.Credentials, limit int) ([]string, error)
}

// Fetcher returns the main content of a page as markdown. It fails when no
// usable text could be extracted.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, creds model.Credentials) (string, error)
}

// Summarizer writes a short title and description for a page.
type Summarizer interface {
	Summarize(ctx context.Context, pageURL, markdown string, creds model.Credentials) (model.Summary, error)
}

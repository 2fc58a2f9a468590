// Package sitecrawl is a self-hosted page source: it discovers a site's pages
// from its sitemap or by following links, and turns pages into markdown.
package sitecrawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
)

const (
	// Nested sitemaps read from a sitemap index.
	maxNestedSitemaps = 5
	// Pages visited while following links, as a multiple of the URL limit.
	crawlBudgetFactor = 3
)

// Crawler discovers and fetches pages directly from the target site.
type Crawler struct {
	getter Getter
	logger *slog.Logger
}

// NewCrawler returns a Crawler that issues its requests through getter.
func NewCrawler(getter Getter, logger *slog.Logger) *Crawler {
	return &Crawler{getter: getter, logger: logger}
}

// Discover lists up to limit pages of siteURL. The site root comes first,
// followed by sitemap entries; links found by crawling from the root fill
// any remaining room.
func (c *Crawler) Discover(ctx context.Context, siteURL string, _ model.Credentials, limit int) ([]string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: "Invalid URL format.", Cause: err}
	}

	found := newURLSet(limit)
	found.add(canonical(base))

	for _, u := range c.sitemapPages(ctx, base) {
		if found.full() {
			break
		}
		if link, ok := resolveLink(u, base, base.Host); ok {
			found.add(link)
		}
	}
	fromSitemap := found.len() > 1

	if !found.full() {
		if err := c.crawl(ctx, base, found, limit*crawlBudgetFactor); err != nil && !fromSitemap {
			return nil, err
		}
	}

	c.logger.Debug("local discovery finished",
		"site", siteURL,
		"found", found.len(),
		"from_sitemap", fromSitemap,
	)
	return found.list(), nil
}

// sitemapPages reads /sitemap.xml and, for a sitemap index, its first nested
// sitemaps. A missing or broken sitemap yields no pages.
func (c *Crawler) sitemapPages(ctx context.Context, base *url.URL) []string {
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/sitemap.xml"}
	pages, nested := c.readSitemap(ctx, root.String())

	for i, loc := range nested {
		if i == maxNestedSitemaps {
			break
		}
		more, _ := c.readSitemap(ctx, loc)
		pages = append(pages, more...)
	}
	return pages
}

func (c *Crawler) readSitemap(ctx context.Context, loc string) (pages, nested []string) {
	resp, err := c.getter.Get(ctx, loc, SitemapResource)
	if err != nil {
		c.logger.Debug("sitemap unavailable", "sitemap", loc, "error", err)
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("sitemap unavailable", "sitemap", loc, "status", resp.StatusCode)
		return nil, nil
	}
	pages, nested, err = parseSitemap(resp.Body)
	if err != nil {
		c.logger.Debug("sitemap unreadable", "sitemap", loc, "error", err)
		return nil, nil
	}
	return pages, nested
}

// crawl walks the site breadth-first from base until found is full or
// budget pages have been visited. It fails only when the root itself is
// unreachable.
func (c *Crawler) crawl(ctx context.Context, base *url.URL, found *urlSet, budget int) error {
	queue := []string{canonical(base)}
	visited := make(map[string]bool)

	for len(queue) > 0 && len(visited) < budget && !found.full() {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		links, err := c.pageLinks(ctx, current, base.Host)
		if err != nil {
			if len(visited) == 1 {
				return err
			}
			c.logger.Debug("skipping page during crawl", "page_url", current, "error", err)
			continue
		}
		for _, link := range links {
			found.add(link)
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}
	return nil
}

// pageLinks resolves links against the address the page was served from,
// which differs from pageURL after a redirect.
func (c *Crawler) pageLinks(ctx context.Context, pageURL, siteHost string) ([]string, error) {
	resp, err := c.getPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	links, err := extractLinks(resp.Body, resp.URL, siteHost)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.ParsingFailed, Message: "Failed to parse the HTML content.", Cause: err}
	}
	return links, nil
}

// Fetch downloads pageURL and returns its main content as markdown.
func (c *Crawler) Fetch(ctx context.Context, pageURL string, _ model.Credentials) (string, error) {
	if _, err := url.Parse(pageURL); err != nil {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: "Invalid page URL.", Cause: err}
	}

	resp, err := c.getPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.AppError{Kind: errs.Unreachable, Message: "The page could not be read.", Cause: err}
	}

	md, err := toMarkdown(string(raw), resp.URL)
	if err != nil {
		return "", &errs.AppError{Kind: errs.ParsingFailed, Message: "Failed to parse the HTML content.", Cause: err}
	}
	if md == "" {
		return "", &errs.AppError{Kind: errs.NoContent, Message: "No usable content could be extracted from the page."}
	}
	return md, nil
}

func (c *Crawler) getPage(ctx context.Context, pageURL string) (*Response, error) {
	resp, err := c.getter.Get(ctx, pageURL, PageResource)
	if err != nil {
		if errors.Is(err, errNotHTML) {
			return nil, &errs.AppError{Kind: errs.NoContent, Message: "The page is not an HTML document.", Cause: err}
		}
		kind := errs.Unreachable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = errs.Timeout
		}
		return nil, &errs.AppError{Kind: kind, Message: "The page could not be reached.", Cause: err}
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: resp.StatusCode,
			Message:        fmt.Sprintf("The page returned HTTP %d.", resp.StatusCode),
		}
	}
	if resp.URL == nil {
		resp.URL, err = url.Parse(pageURL)
		if err != nil {
			_ = resp.Body.Close()
			return nil, &errs.AppError{Kind: errs.InvalidInput, Message: "Invalid page URL.", Cause: err}
		}
	}
	return resp, nil
}

// urlSet keeps discovered URLs unique and in insertion order, up to a limit.
type urlSet struct {
	limit int
	seen  map[string]bool
	order []string
}

func newURLSet(limit int) *urlSet {
	return &urlSet{limit: limit, seen: make(map[string]bool)}
}

func (s *urlSet) add(u string) {
	if s.full() || s.seen[u] {
		return
	}
	s.seen[u] = true
	s.order = append(s.order, u)
}

func (s *urlSet) full() bool { return len(s.order) >= s.limit }
func (s *urlSet) len() int   { return len(s.order) }
func (s *urlSet) list() []string {
	return append([]string(nil), s.order...)
}

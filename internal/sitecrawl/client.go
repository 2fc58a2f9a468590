package sitecrawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// Resource is the kind of document a request expects back.
type Resource int

const (
	PageResource Resource = iota
	SitemapResource
)

type resourcePolicy struct {
	accept  string
	maxBody int64
	// HTML content types only; other media never turns into page markdown.
	htmlOnly bool
}

var resourcePolicies = map[Resource]resourcePolicy{
	PageResource:    {accept: "text/html,application/xhtml+xml", maxBody: 10 << 20, htmlOnly: true},
	SitemapResource: {accept: "application/xml,text/xml", maxBody: 50 << 20},
}

// Response is a fetched document. The caller closes Body.
type Response struct {
	Body       io.ReadCloser
	StatusCode int
	// URL is where the body was served from, after redirects.
	URL *url.URL
}

// Getter retrieves site documents.
type Getter interface {
	Get(ctx context.Context, rawURL string, res Resource) (*Response, error)
}

// errNotHTML reports a page URL that served something other than HTML.
var errNotHTML = errors.New("response is not an HTML document")

// limitedReadCloser reads from a LimitReader but closes the original body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// HTTPClient implements Getter with an http.Client restricted to public hosts.
type HTTPClient struct {
	client *http.Client
}

const (
	maxRedirects = 5
	userAgent    = "LLMsTxtBot/1.0 (+https://llmstxt.org)"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// NewHTTPClient returns a Getter with a 15s timeout whose connections and
// redirects can only reach public http(s) hosts.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext:         crawlDialer().DialContext,
				MaxConnsPerHost:     16,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: redirectPolicy,
		},
	}
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Get requests rawURL with the Accept header and body cap of res. A page
// that answers 2xx with a non-HTML content type fails with errNotHTML.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, res Resource) (*Response, error) {
	policy := resourcePolicies[res]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", policy.accept)

	resp, err := c.client.Do(req) //nolint:bodyclose // closed by the caller through limitedReadCloser
	if err != nil {
		return nil, err
	}

	if policy.htmlOnly && resp.StatusCode < 300 && !isHTML(resp.Header.Get("Content-Type")) {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", errNotHTML, resp.Header.Get("Content-Type"))
	}

	return &Response{
		Body: &limitedReadCloser{
			Reader: io.LimitReader(resp.Body, policy.maxBody),
			Closer: resp.Body,
		},
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL,
	}, nil
}

// isHTML accepts a missing content type; servers omit it for plain pages.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return media == "text/html" || media == "application/xhtml+xml"
}

package llmstxt

import (
	"strings"
	"unicode/utf8"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

// minContentLength is the shortest trimmed markdown a page may have.
const minContentLength = 30

// Fallbacks a page gets when summarization failed.
const (
	PlaceholderTitle       = "Page"
	PlaceholderDescription = "No description available"
)

var ignoredSuffixes = []string{
	".xml", ".json", ".png", ".jpg", ".jpeg", ".ico", ".svg", ".webp", ".gif",
	"sitemap.xml", "robots.txt", "feed.xml", "rss.xml",
}

// IsContentPage reports whether page is substantive enough to be listed.
// Asset and feed URLs, directory-style URLs other than the site root,
// placeholder titles and short pages are rejected. The root is exempt from
// the directory rule only; it must still meet the length bar.
func IsContentPage(page model.PageResult, siteURL string) bool {
	u := strings.ToLower(page.URL)

	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(u, suffix) {
			return false
		}
	}

	if strings.HasSuffix(u, "/") && !isRoot(u, strings.ToLower(siteURL)) {
		return false
	}

	if page.Title == PlaceholderTitle {
		return false
	}

	return utf8.RuneCountInString(strings.TrimSpace(page.Markdown)) >= minContentLength
}

func isRoot(u, site string) bool {
	site = strings.TrimSuffix(site, "/")
	return u == site || u == site+"/"
}

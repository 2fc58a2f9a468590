package llmstxt

import (
	"strings"
	"testing"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

const longBody = "This page has more than thirty characters of body text."

func TestIsContentPage(t *testing.T) {
	const site = "https://example.com"

	tests := []struct {
		name string
		page model.PageResult
		want bool
	}{
		{
			name: "sitemap",
			page: model.PageResult{URL: "https://example.com/sitemap.xml", Title: "Sitemap", Markdown: longBody},
			want: false,
		},
		{
			name: "robots",
			page: model.PageResult{URL: "https://example.com/robots.txt", Title: "Robots", Markdown: longBody},
			want: false,
		},
		{
			name: "image uppercase extension",
			page: model.PageResult{URL: "https://example.com/logo.PNG", Title: "Logo", Markdown: longBody},
			want: false,
		},
		{
			name: "json",
			page: model.PageResult{URL: "https://example.com/api/data.json", Title: "Data", Markdown: longBody},
			want: false,
		},
		{
			name: "non-root trailing slash",
			page: model.PageResult{URL: "https://example.com/blog/", Title: "Blog", Markdown: longBody},
			want: false,
		},
		{
			name: "root with trailing slash",
			page: model.PageResult{URL: "https://example.com/", Title: "Home", Markdown: longBody},
			want: true,
		},
		{
			name: "root case-insensitive",
			page: model.PageResult{URL: "HTTPS://EXAMPLE.COM/", Title: "Home", Markdown: longBody},
			want: true,
		},
		{
			name: "root still needs content",
			page: model.PageResult{URL: "https://example.com/", Title: "Home", Markdown: "short"},
			want: false,
		},
		{
			name: "placeholder title",
			page: model.PageResult{URL: "https://example.com/about", Title: PlaceholderTitle, Markdown: longBody},
			want: false,
		},
		{
			name: "whitespace markdown",
			page: model.PageResult{URL: "https://example.com/about", Title: "About", Markdown: "   \n\t "},
			want: false,
		},
		{
			name: "29 characters",
			page: model.PageResult{URL: "https://example.com/about", Title: "About", Markdown: strings.Repeat("a", 29)},
			want: false,
		},
		{
			name: "30 characters padded",
			page: model.PageResult{URL: "https://example.com/about", Title: "About", Markdown: "  " + strings.Repeat("a", 30) + "\n"},
			want: true,
		},
		{
			name: "regular page",
			page: model.PageResult{URL: "https://example.com/about", Title: "About", Markdown: longBody},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContentPage(tt.page, site); got != tt.want {
				t.Errorf("IsContentPage(%q) = %v, want %v", tt.page.URL, got, tt.want)
			}
		})
	}
}

func TestIsContentPage_SiteURLWithSlash(t *testing.T) {
	page := model.PageResult{URL: "https://example.com/", Title: "Home", Markdown: longBody}
	if !IsContentPage(page, "https://example.com/") {
		t.Error("root should qualify when the site URL carries a trailing slash")
	}
}

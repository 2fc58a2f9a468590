package sitecrawl

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Elements removed when readability cannot isolate an article.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio", "svg", "canvas",
	"form", "button", "input", "select", "textarea",
	"[role=navigation]", "[aria-hidden=true]",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement", ".cookie-banner",
}

// Below this much text, readability's pick is treated as a miss.
const minArticleText = 200

// toMarkdown isolates the main content of an HTML page and converts it to
// markdown. The page title becomes a top-level heading when the content has
// none of its own.
func toMarkdown(page string, pageURL *url.URL) (string, error) {
	fragment, title, err := mainContent(page, pageURL)
	if err != nil {
		return "", err
	}

	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if title != "" && !strings.HasPrefix(md, "# ") {
		md = "# " + title + "\n\n" + md
	}
	return md, nil
}

func mainContent(page string, pageURL *url.URL) (fragment, title string, err error) {
	parser := readability.NewParser()
	article, rerr := parser.Parse(strings.NewReader(page), pageURL)
	if rerr == nil && textLength(article.Content) >= minArticleText {
		return article.Content, strings.TrimSpace(article.Title), nil
	}
	return stripNoise(page)
}

func textLength(fragment string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0
	}
	return len(strings.TrimSpace(doc.Text()))
}

// stripNoise drops boilerplate elements and returns the best remaining
// container: <main>, then <article>, then <body>.
func stripNoise(page string) (fragment, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(strings.Join(noiseSelectors, ",")).Remove()

	for _, tag := range []string{"main", "article", "[role=main]", "body"} {
		if sel := doc.Find(tag).First(); sel.Length() > 0 {
			fragment, err = goquery.OuterHtml(sel)
			if err != nil {
				return "", "", fmt.Errorf("serialize content: %w", err)
			}
			return fragment, title, nil
		}
	}
	return "", title, nil
}

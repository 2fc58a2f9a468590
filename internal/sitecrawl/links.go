package sitecrawl

import (
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Extensions that never lead to an HTML page.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".avif": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".txt": true,
}

// extractLinks returns the page links of an HTML document that stay on
// siteHost, resolved against base, in document order and without duplicates.
// A <base> element changes resolution but never the site being crawled.
func extractLinks(body io.Reader, base *url.URL, siteHost string) ([]string, error) {
	z := html.NewTokenizer(body)
	seen := make(map[string]bool)
	var links []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return links, nil
			}
			return links, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			switch string(tn) {
			case "base":
				if href := attr(z, "href"); href != "" {
					if u, err := base.Parse(href); err == nil {
						base = u
					}
				}
			case "a":
				link, ok := resolveLink(attr(z, "href"), base, siteHost)
				if ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
		}
	}
}

func attr(z *html.Tokenizer, name string) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == name {
			return strings.TrimSpace(string(val))
		}
		if !more {
			return ""
		}
	}
}

// resolveLink resolves href against base and keeps it only when it is an
// http(s) page on siteHost.
func resolveLink(href string, base *url.URL, siteHost string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !sameSite(u.Host, siteHost) || isAsset(u) {
		return "", false
	}
	return canonical(u), true
}

// sameSite treats example.com and www.example.com as one site.
func sameSite(a, b string) bool {
	trim := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return trim(a) == trim(b)
}

func isAsset(u *url.URL) bool {
	return assetExtensions[strings.ToLower(path.Ext(u.Path))]
}

// canonical drops the fragment and the bare root slash. Other trailing
// slashes are kept: they mark index pages, which the classifier skips.
func canonical(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.Host = strings.ToLower(c.Host)
	if c.Path == "/" && c.RawQuery == "" {
		c.Path = ""
	}
	return c.String()
}

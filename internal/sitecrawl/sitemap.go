package sitecrawl

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var errNotSitemap = errors.New("document is neither a urlset nor a sitemapindex")

// sitemapDoc covers both sitemap shapes: a <urlset> of pages or a
// <sitemapindex> of nested sitemaps.
type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// parseSitemap returns the page URLs and nested sitemap URLs of a sitemap.
func parseSitemap(r io.Reader) (pages, nested []string, err error) {
	var doc sitemapDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, err
	}
	switch doc.XMLName.Local {
	case "urlset", "sitemapindex":
	default:
		return nil, nil, errNotSitemap
	}
	return locs(doc.URLs), locs(doc.Sitemaps), nil
}

func locs(in []sitemapLoc) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if loc := strings.TrimSpace(l.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

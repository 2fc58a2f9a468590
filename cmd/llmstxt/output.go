package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

type writtenFile struct {
	path string
	size int
}

// fileBase is the domain a site's files are named after, without "www.".
func fileBase(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Hostname() == "" {
		return "site"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func writeDocuments(dir, siteURL string, files model.Files, fullText bool) ([]writtenFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := fileBase(siteURL)
	docs := []struct {
		name    string
		content string
	}{
		{name: base + "-llms.txt", content: files.LLMSTxt},
	}
	if fullText {
		docs = append(docs, struct {
			name    string
			content string
		}{name: base + "-llms-full.txt", content: files.LLMSFullTxt})
	}

	written := make([]writtenFile, 0, len(docs))
	for _, d := range docs {
		path := filepath.Join(dir, d.name)
		if err := os.WriteFile(path, []byte(d.content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, writtenFile{path: path, size: len(d.content)})
	}
	return written, nil
}

func printSummary(w io.Writer, final model.ProgressSnapshot, written []writtenFile) {
	fmt.Fprintf(w, "Processed %d out of %d URLs\n", final.ProcessedURLs-len(final.Errors), final.TotalURLs)
	for _, f := range written {
		fmt.Fprintf(w, "  %s (%s)\n", f.path, humanize.Bytes(uint64(f.size)))
	}
	for _, e := range final.Errors {
		fmt.Fprintf(w, "  failed: %s: %s\n", e.URL, e.Message)
	}
}

// reporter prints phase changes, and every settled page when verbose.
type reporter struct {
	w       io.Writer
	verbose bool
	last    model.Status
}

func newReporter(w io.Writer, verbose bool) *reporter {
	return &reporter{w: w, verbose: verbose}
}

func (r *reporter) observe(s model.ProgressSnapshot) {
	if s.Status != r.last {
		r.last = s.Status
		switch s.Status {
		case model.StatusMapping:
			fmt.Fprintln(r.w, "Mapping website...")
		case model.StatusScraping:
			fmt.Fprintf(r.w, "Found %d URLs, processing...\n", s.TotalURLs)
		case model.StatusGenerating:
			fmt.Fprintln(r.w, "Generating documents...")
		}
	}
	if r.verbose && s.Status == model.StatusScraping && s.CurrentURL != "" {
		fmt.Fprintf(r.w, "[%d/%d] %s\n", s.ProcessedURLs, s.TotalURLs, s.CurrentURL)
	}
}

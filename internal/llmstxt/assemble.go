package llmstxt

import (
	"slices"
	"strings"
	"time"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

// TimestampLayout is the format of the "Generated on" header line.
const TimestampLayout = "January 02, 2006, 03:04:05 PM"

// PartialNote is appended to llms.txt when the caller did not bring their own
// crawl key.
const PartialNote = "*Note: This is a partial result. For the full generation, add your Firecrawl key in the settings.*"

// Assemble builds both documents from the fetched pages, stamped with the
// current time.
func Assemble(pages []model.PageResult, siteURL string, hasFullAccess bool) model.GeneratedDocuments {
	return AssembleAt(pages, siteURL, hasFullAccess, time.Now())
}

// AssembleAt builds both documents stamped with generatedAt. Pages that are
// not content pages are dropped and the rest are written in discovery order,
// whatever order they arrive in.
func AssembleAt(pages []model.PageResult, siteURL string, hasFullAccess bool, generatedAt time.Time) model.GeneratedDocuments {
	kept := make([]model.PageResult, 0, len(pages))
	for _, p := range pages {
		if IsContentPage(p, siteURL) {
			kept = append(kept, p)
		}
	}
	slices.SortStableFunc(kept, func(a, b model.PageResult) int {
		return a.Index - b.Index
	})

	stamp := "# Generated on " + generatedAt.UTC().Format(TimestampLayout) + "\n"

	var txt, full strings.Builder
	txt.WriteString("# " + siteURL + " llms.txt\n" + stamp + "\n")
	full.WriteString("# " + siteURL + " llms-full.txt\n" + stamp + "\n")

	for _, p := range kept {
		txt.WriteString("- [" + p.Title + "](" + p.URL + "): " + p.Description + "\n")

		full.WriteString("## " + p.Title + "\n")
		if p.Description != "" {
			full.WriteString("*" + p.Description + "*\n\n")
		}
		full.WriteString(Clean(p.Markdown) + "\n\n---\n")
	}

	if !hasFullAccess {
		txt.WriteString("\n\n" + PartialNote + "\n")
	}

	return model.GeneratedDocuments{
		LLMSTxt:     strings.TrimSpace(txt.String()),
		LLMSFullTxt: strings.TrimSpace(full.String()),
	}
}

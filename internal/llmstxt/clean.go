// Package llmstxt turns fetched pages into llms.txt and llms-full.txt.
package llmstxt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	backslashes  = regexp.MustCompile(`\\+`)
	linkSyntax   = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]*)\)`)
	isolatedLink = regexp.MustCompile(`!?\[[^\]]+\]\([^)]+\)`)
	lineMarker   = regexp.MustCompile(`^(?:[-*>]|\d+\.|#{1,6})$`)
	multiSpace   = regexp.MustCompile(` {2,}`)
	bulletMarker = regexp.MustCompile(`(?m)^[*-][ \t]+`)
	numberMarker = regexp.MustCompile(`(?m)^(\d+)\.[ \t]+`)
	parenWord    = regexp.MustCompile(`\)([\p{L}\p{N}_])`)
	headingLine  = regexp.MustCompile(`^(#{1,6})[ \t]*([^#\s].*)$`)
	emptyHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]*$`)
	ruleLine     = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes extracted page markdown into compact text for
// llms-full.txt. Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = backslashes.ReplaceAllString(s, "")
	s = linkSyntax.ReplaceAllStringFunc(s, normalizeLink)
	s = isolateLinks(s)
	s = tidyLines(s)
	s = bulletMarker.ReplaceAllString(s, "- ")
	s = numberMarker.ReplaceAllString(s, "$1. ")
	s = parenWord.ReplaceAllString(s, ") $1")
	s = joinWrappedWords(s)
	s = spaceHeadings(s)
	s = emptyHeading.ReplaceAllString(s, "")
	s = ruleLine.ReplaceAllString(s, "")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// normalizeLink collapses whitespace in link text. A link without text becomes
// its bare target, a link without target becomes its text.
func normalizeLink(link string) string {
	m := linkSyntax.FindStringSubmatch(link)
	bang := m[1]
	text := strings.Join(strings.Fields(m[2]), " ")
	target := strings.Join(strings.Fields(m[3]), "")

	switch {
	case text == "":
		return target
	case target == "":
		return text
	}
	return bang + "[" + text + "](" + target + ")"
}

// isolateLinks puts every link on its own line. A link that directly follows
// a bare list, quote or heading marker stays on that marker's line.
func isolateLinks(s string) string {
	locs := isolatedLink.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*len(locs))
	last := 0
	for _, loc := range locs {
		b.WriteString(strings.TrimRight(s[last:loc[0]], " \t"))

		out := b.String()
		line := strings.TrimSpace(out[strings.LastIndexByte(out, '\n')+1:])
		switch {
		case line == "":
		case lineMarker.MatchString(line):
			b.WriteByte(' ')
		default:
			b.WriteByte('\n')
		}
		b.WriteString(s[loc[0]:loc[1]])

		rest := s[loc[1]:]
		trimmed := strings.TrimLeft(rest, " \t")
		if trimmed != "" && trimmed[0] != '\n' {
			b.WriteByte('\n')
		}
		last = loc[1] + len(rest) - len(trimmed)
	}
	b.WriteString(s[last:])
	return b.String()
}

// tidyLines trims every line and collapses runs of spaces.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
	}
	return strings.Join(lines, "\n")
}

// joinWrappedWords removes a line break that sits between two lowercase
// letters, repairing words split by hard wrapping. Heading lines are left
// alone.
func joinWrappedWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lineStart := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			b.WriteByte(s[i])
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		next, _ := utf8.DecodeRuneInString(s[i+1:])
		if unicode.IsLower(prev) && unicode.IsLower(next) && s[lineStart] != '#' {
			continue
		}
		b.WriteByte('\n')
		lineStart = i + 1
	}
	return b.String()
}

// spaceHeadings writes headings as "#… text" surrounded by blank lines.
func spaceHeadings(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, m[1]+" "+m[2])
		if i+1 < len(lines) && lines[i+1] != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

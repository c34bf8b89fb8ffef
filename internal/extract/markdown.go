package extract

import (
	"html"
	"regexp"
	"strings"
)

// listState tracks which list element, if any, is currently open while
// scanning lines.
type listState int

const (
	stateNormal listState = iota
	stateUnordered
	stateOrdered
)

var (
	orderedItemRe = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*]+)\*`)
)

// RenderMarkdown converts the restricted Markdown the prompts request into
// display markup: #/##/### headings, **bold**, *italic*, hyphen bullets,
// numbered lists, and --- separators. It is a line-by-line parser with an
// explicit list state, so a document mixing both list styles produces one
// correctly closed list per run of items. Nested structures, tables, code
// fences, and links are out of scope.
func RenderMarkdown(text string) string {
	var b strings.Builder
	state := stateNormal

	closeList := func() {
		switch state {
		case stateUnordered:
			b.WriteString("</ul>\n")
		case stateOrdered:
			b.WriteString("</ol>\n")
		}
		state = stateNormal
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "- ") {
			if state == stateOrdered {
				closeList()
			}
			if state == stateNormal {
				b.WriteString("<ul>\n")
				state = stateUnordered
			}
			b.WriteString("<li>" + renderInline(trimmed[2:]) + "</li>\n")
			continue
		}

		if m := orderedItemRe.FindStringSubmatch(trimmed); m != nil {
			if state == stateUnordered {
				closeList()
			}
			if state == stateNormal {
				b.WriteString("<ol>\n")
				state = stateOrdered
			}
			b.WriteString("<li>" + renderInline(m[1]) + "</li>\n")
			continue
		}

		closeList()

		switch {
		case trimmed == "---":
			b.WriteString("<hr />\n")
		case strings.HasPrefix(trimmed, "### "):
			b.WriteString("<h3>" + renderInline(trimmed[4:]) + "</h3>\n")
		case strings.HasPrefix(trimmed, "## "):
			b.WriteString("<h2>" + renderInline(trimmed[3:]) + "</h2>\n")
		case strings.HasPrefix(trimmed, "# "):
			b.WriteString("<h1>" + renderInline(trimmed[2:]) + "</h1>\n")
		case trimmed == "":
			b.WriteString("<br />\n")
		default:
			b.WriteString(renderInline(trimmed) + "<br />\n")
		}
	}
	closeList()

	out := strings.TrimSuffix(b.String(), "\n")
	out = strings.TrimSuffix(out, "<br />")
	return strings.TrimSuffix(out, "\n")
}

// renderInline escapes the raw text and applies emphasis. Bold runs before
// italic so "**x**" is never read as two italic markers.
func renderInline(s string) string {
	s = html.EscapeString(s)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}

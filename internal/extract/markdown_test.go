package extract

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain line",
			input:    "just some feedback",
			expected: "just some feedback",
		},
		{
			name:     "bold before italic",
			input:    "**bold** and *italic*",
			expected: "<strong>bold</strong> and <em>italic</em>",
		},
		{
			name:     "bold only is not two italics",
			input:    "**Feedback**",
			expected: "<strong>Feedback</strong>",
		},
		{
			name:     "headings",
			input:    "# Top\n## Mid\n### Low",
			expected: "<h1>Top</h1>\n<h2>Mid</h2>\n<h3>Low</h3>",
		},
		{
			name:     "unordered list wrapped once",
			input:    "- first\n- second",
			expected: "<ul>\n<li>first</li>\n<li>second</li>\n</ul>",
		},
		{
			name:     "ordered list wrapped once",
			input:    "1. first\n2. second",
			expected: "<ol>\n<li>first</li>\n<li>second</li>\n</ol>",
		},
		{
			name:  "mixed lists close and reopen cleanly",
			input: "- bullet one\n- bullet two\n1. step one\n2. step two",
			expected: "<ul>\n<li>bullet one</li>\n<li>bullet two</li>\n</ul>\n" +
				"<ol>\n<li>step one</li>\n<li>step two</li>\n</ol>",
		},
		{
			name:     "horizontal rule",
			input:    "**Feedback**\n---\n**Next Question**",
			expected: "<strong>Feedback</strong><br />\n<hr />\n<strong>Next Question</strong>",
		},
		{
			name:     "newlines become breaks",
			input:    "line one\nline two",
			expected: "line one<br />\nline two",
		},
		{
			name:     "blank line becomes break",
			input:    "para one\n\npara two",
			expected: "para one<br />\n<br />\npara two",
		},
		{
			name:     "list item with emphasis",
			input:    "- learn **Go** for *backend* work",
			expected: "<ul>\n<li>learn <strong>Go</strong> for <em>backend</em> work</li>\n</ul>",
		},
		{
			name:     "heading after list closes the list",
			input:    "- item\n## Next Section",
			expected: "<ul>\n<li>item</li>\n</ul>\n<h2>Next Section</h2>",
		},
		{
			name:     "raw html is escaped",
			input:    "use <b>tags</b> & ampersands",
			expected: "use &lt;b&gt;tags&lt;/b&gt; &amp; ampersands",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.input)
			if got != tt.expected {
				t.Errorf("RenderMarkdown(%q) =\n%q\nwant\n%q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRenderMarkdownSingleListWrap(t *testing.T) {
	input := "Plan:\n1. review basics\n2. build a project\nNotes:\n- stay consistent\n- ask for feedback"
	got := RenderMarkdown(input)

	if n := strings.Count(got, "<ol>"); n != 1 {
		t.Errorf("expected exactly one <ol>, got %d in %q", n, got)
	}
	if n := strings.Count(got, "<ul>"); n != 1 {
		t.Errorf("expected exactly one <ul>, got %d in %q", n, got)
	}
	if strings.Count(got, "</ol>") != 1 || strings.Count(got, "</ul>") != 1 {
		t.Errorf("lists not closed exactly once: %q", got)
	}
}

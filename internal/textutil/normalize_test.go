package textutil

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "already clean",
			input:    "Senior Go engineer with 8 years of experience",
			expected: "Senior Go engineer with 8 years of experience",
		},
		{
			name:     "crlf to lf",
			input:    "line one\r\nline two\r\nline three",
			expected: "line one\nline two\nline three",
		},
		{
			name:     "bare carriage returns",
			input:    "line one\rline two",
			expected: "line one\nline two",
		},
		{
			name:     "tabs become single spaces",
			input:    "name:\tAda Lovelace",
			expected: "name: Ada Lovelace",
		},
		{
			name:     "space runs collapse",
			input:    "too    many     spaces",
			expected: "too many spaces",
		},
		{
			name:     "tab run collapses like spaces",
			input:    "a\t\t\tb",
			expected: "a b",
		},
		{
			name:     "leading and trailing whitespace trimmed",
			input:    "  \t padded resume text \r\n",
			expected: "padded resume text",
		},
		{
			name:     "trailing spaces stripped per line",
			input:    "first line   \nsecond line",
			expected: "first line\nsecond line",
		},
		{
			name:     "blank lines preserved",
			input:    "paragraph one\n\nparagraph two",
			expected: "paragraph one\n\nparagraph two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"a\t b\r\nc   d",
		"  \t mixed \r whitespace \r\n everywhere \t ",
		"multi\n\nparagraph\r\n\r\ninput",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeRemovesControlWhitespace(t *testing.T) {
	input := "a\tb\rc\r\nd  e   f"
	got := Normalize(input)

	if strings.ContainsAny(got, "\t\r") {
		t.Errorf("output %q still contains tab or carriage return", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("output %q contains a double space", got)
	}
}

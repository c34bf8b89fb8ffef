// Package textutil cleans up pasted or extracted document text before it is
// interpolated into prompts.
package textutil

import "strings"

// Normalize collapses line endings and whitespace in raw text: CRLF becomes
// LF, tabs become single spaces, runs of spaces collapse to one, and
// leading/trailing whitespace is trimmed. Idempotent.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", " ")

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

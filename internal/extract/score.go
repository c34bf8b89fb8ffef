// Package extract post-processes model replies: pulling a percentage score
// out of free text and rendering the restricted Markdown conventions the
// prompts ask for.
package extract

import (
	"regexp"
	"strconv"
)

var (
	labeledScoreRe = regexp.MustCompile(`(?i)(?:ATS Score|Match|Score):?\s*(\d+)%?`)
	bareScoreRe    = regexp.MustCompile(`(\d+)%`)
)

// ExtractScore finds a percentage score in a model reply. It first looks for
// a labeled marker ("ATS Score", "Match", or "Score", case-insensitive,
// optional colon and percent sign), then falls back to the first bare
// "<digits>%" anywhere in the text. The result is nil when neither pattern
// matches; a missing score is not the same thing as zero percent.
func ExtractScore(text string) *int {
	m := labeledScoreRe.FindStringSubmatch(text)
	if m == nil {
		m = bareScoreRe.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	if n < 0 || n > 100 {
		return nil
	}
	return &n
}

package extract

import "testing"

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *int
	}{
		{
			name:     "labeled ats score with percent",
			input:    "ATS Score: 82%",
			expected: intPtr(82),
		},
		{
			name:     "labeled match without percent",
			input:    "Match: 47",
			expected: intPtr(47),
		},
		{
			name:     "labeled score lowercase",
			input:    "overall score: 63% based on keyword coverage",
			expected: intPtr(63),
		},
		{
			name:     "label without colon",
			input:    "ATS Score 90%",
			expected: intPtr(90),
		},
		{
			name:     "label buried in prose",
			input:    "Here is my assessment.\n\nATS Score: 75%\n\nStrengths:\n- clear formatting",
			expected: intPtr(75),
		},
		{
			name:     "bare percent fallback",
			input:    "your resume covers roughly 58% of the listed requirements",
			expected: intPtr(58),
		},
		{
			name:     "labeled match preferred over earlier bare percent",
			input:    "coverage was 30% overall. Match: 65",
			expected: intPtr(65),
		},
		{
			name:     "no numbers here",
			input:    "no numbers here",
			expected: nil,
		},
		{
			name:     "number without label or percent",
			input:    "you listed 12 skills",
			expected: nil,
		},
		{
			name:     "zero percent is a real score",
			input:    "Score: 0%",
			expected: intPtr(0),
		},
		{
			name:     "out of range rejected",
			input:    "Score: 250%",
			expected: nil,
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScore(tt.input)
			if tt.expected == nil {
				if got != nil {
					t.Errorf("ExtractScore(%q) = %d, want absent", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ExtractScore(%q) = absent, want %d", tt.input, *tt.expected)
			}
			if *got != *tt.expected {
				t.Errorf("ExtractScore(%q) = %d, want %d", tt.input, *got, *tt.expected)
			}
		})
	}
}

func intPtr(n int) *int {
	return &n
}

package ai

import (
	"context"

	"careerpilot/internal/types"
)

// CompletionProvider is the single-call surface to a hosted chat-completion
// API. One submit maps to exactly one provider call; providers never retry.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt types.BuiltPrompt, params CallParams) (string, *types.TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// CallParams carries the per-request generation settings resolved from
// operation configuration.
type CallParams struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

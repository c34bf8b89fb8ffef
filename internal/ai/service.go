package ai

import (
	"context"
	"fmt"

	"careerpilot/internal/config"
	"careerpilot/internal/errors"
)

// Service handles completion calls for a single feature operation
type Service struct {
	Provider      CompletionProvider // Exported for access from server package
	config        *config.OperationAIConfig
	operationType string
	logger        *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType, referer, appTitle string, logger *errors.Logger) (*Service, error) {
	var provider CompletionProvider
	var err error

	// Debug logging for service initialization
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
		"temperature", *cfg.Temperature,
		"max_tokens", *cfg.MaxTokens,
		"timeout", *cfg.Timeout,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "openrouter":
		provider, err = NewOpenRouterProvider(cfg, operationType, referer, appTitle, logger)
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:      provider,
		config:        cfg,
		operationType: operationType,
		logger:        logger,
	}, nil
}

// CallParams returns the generation settings resolved for this operation
func (s *Service) CallParams() CallParams {
	return CallParams{
		Model:       s.config.Model,
		MaxTokens:   *s.config.MaxTokens,
		Temperature: *s.config.Temperature,
	}
}

// PromptBuilder returns a builder over the effective prompts for this
// operation, resolving file-loaded content over configured literals over
// built-in defaults.
func (s *Service) PromptBuilder() *PromptBuilder {
	return NewPromptBuilder(ResolvePrompts(s.operationType, s.config))
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}

// ResolvePrompts builds the effective prompt set for an operation. Priority
// per prompt: content loaded from a file, then the configured literal, then
// the built-in default.
func ResolvePrompts(operationType string, cfg *config.OperationAIConfig) PromptConfig {
	loaded := config.GetPromptsForOperation(operationType)
	literals := &cfg.CustomPrompts

	return PromptConfig{
		SystemPrompts: SystemPrompts{
			CVAnalysis:    resolvePrompt(loaded.SystemPrompts.CVAnalysis, literals.SystemPrompts.CVAnalysis, DefaultSystemPrompts.CVAnalysis),
			JobMatch:      resolvePrompt(loaded.SystemPrompts.JobMatch, literals.SystemPrompts.JobMatch, DefaultSystemPrompts.JobMatch),
			SkillsRoadmap: resolvePrompt(loaded.SystemPrompts.Roadmap, literals.SystemPrompts.Roadmap, DefaultSystemPrompts.SkillsRoadmap),
			CareerChat:    resolvePrompt(loaded.SystemPrompts.Chat, literals.SystemPrompts.Chat, DefaultSystemPrompts.CareerChat),
		},
		UserPrompts: UserPrompts{
			CVAnalysis:     resolvePrompt(loaded.UserPrompts.CVAnalysis, literals.UserPrompts.CVAnalysis, DefaultUserPrompts.CVAnalysis),
			JobMatch:       resolvePrompt(loaded.UserPrompts.JobMatch, literals.UserPrompts.JobMatch, DefaultUserPrompts.JobMatch),
			SkillsRoadmap:  resolvePrompt(loaded.UserPrompts.Roadmap, literals.UserPrompts.Roadmap, DefaultUserPrompts.SkillsRoadmap),
			CareerChat:     resolvePrompt(loaded.UserPrompts.Chat, literals.UserPrompts.Chat, DefaultUserPrompts.CareerChat),
			InterviewStart: resolvePrompt(loaded.UserPrompts.InterviewStart, literals.UserPrompts.InterviewStart, DefaultUserPrompts.InterviewStart),
			InterviewTurn:  resolvePrompt(loaded.UserPrompts.InterviewTurn, literals.UserPrompts.InterviewTurn, DefaultUserPrompts.InterviewTurn),
		},
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

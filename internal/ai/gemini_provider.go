package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements CompletionProvider for Google Gemini. It is the
// alternate provider for deployments that prefer Gemini over OpenRouter; the
// single-call contract is the same.
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *apperrors.Logger
}

// Ensure GeminiProvider implements CompletionProvider
var _ CompletionProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *apperrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Complete generates plain text for the built prompt via a single Gemini
// call. No retry on failure.
func (g *GeminiProvider) Complete(ctx context.Context, prompt types.BuiltPrompt, params CallParams) (string, *types.TokenUsage, error) {
	tracer := otel.Tracer("careerpilot.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", params.Model),
		attribute.String("ai.feature", string(prompt.Feature)),
		attribute.Float64("ai.temperature", float64(params.Temperature)),
		attribute.Int("ai.max_tokens", params.MaxTokens),
		attribute.Int("input.history_messages", len(prompt.History)),
	)

	temperature := params.Temperature
	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(params.MaxTokens),
	}
	if temperature > 0 {
		genConfig.Temperature = &temperature
	}
	if *g.config.UseSystemPrompts && prompt.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	contents := buildGeminiContents(prompt)

	var usage *types.TokenUsage
	content, err := g.circuitBreaker.Execute(func() (string, error) {
		result, callErr := g.client.Models.GenerateContent(ctx, params.Model, contents, genConfig)
		if callErr != nil {
			return "", classifyGeminiError(callErr)
		}

		text := result.Text()
		if strings.TrimSpace(text) == "" {
			return "", apperrors.NewAIError(apperrors.ErrCodeEmptyContent,
				"Completion response contains no content", nil)
		}

		usage = extractTokenUsage(result)
		return text, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int("ai.tokens.input", usage.InputTokens),
			attribute.Int("ai.tokens.output", usage.OutputTokens),
			attribute.Int("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.content_length", len(content)),
	)

	return content, usage, nil
}

// buildGeminiContents folds conversation history and the current user
// message into the contents slice, oldest turn first.
func buildGeminiContents(prompt types.BuiltPrompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		var role genai.Role = genai.RoleUser
		if m.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt.User, genai.RoleUser))
	return contents
}

// classifyGeminiError maps transport and API errors onto the completion
// error taxonomy.
func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apperrors.NewHTTPError(apiErr.Code, apiErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.NewNetworkError(apperrors.ErrCodeNetworkFailure,
			"Completion request failed before receiving a response", err)
	}

	return apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
		"Failed to generate content", err)
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := g.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		model, getErr := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
		if getErr != nil {
			return nil, getErr
		}
		return &ModelInfo{
			Name:        g.config.Model,
			DisplayName: model.DisplayName,
			Version:     model.Version,
			Available:   true,
		}, nil
	})
	if err != nil {
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return &ModelInfo{
			Name:  g.config.Model,
			Error: fmt.Sprintf("Failed to get model info: %v", err),
		}
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", info.DisplayName,
		"version", info.Version)

	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements CompletionProvider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *types.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &types.TokenUsage{
		InputTokens:  int(usage.PromptTokenCount),
		OutputTokens: int(usage.CandidatesTokenCount),
		TotalTokens:  int(usage.TotalTokenCount),
	}
}

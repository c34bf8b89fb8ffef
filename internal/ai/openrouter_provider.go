package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// maxErrorBodyBytes caps how much of an error response body is kept for
// diagnostics.
const maxErrorBodyBytes = 4 << 10

// OpenRouterProvider implements CompletionProvider against the OpenRouter
// chat-completion API. Every Complete call maps to exactly one HTTP request.
type OpenRouterProvider struct {
	httpClient     *http.Client
	config         *config.OperationAIConfig
	referer        string
	appTitle       string
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *apperrors.Logger
}

// Ensure OpenRouterProvider implements CompletionProvider
var _ CompletionProvider = (*OpenRouterProvider)(nil)

// NewOpenRouterProvider creates a new OpenRouter provider instance for a specific operation
func NewOpenRouterProvider(cfg *config.OperationAIConfig, operationType, referer, appTitle string, logger *apperrors.Logger) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewAIError(apperrors.ErrCodeMissingAPIKey,
			"OpenRouter API key is not configured", nil)
	}
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"OpenRouter base URL is not configured", nil)
	}

	return &OpenRouterProvider{
		httpClient: &http.Client{
			Timeout:   *cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config:         cfg,
		referer:        referer,
		appTitle:       appTitle,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// chatMessage is the wire format of a single conversation message
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the request body for the chat-completions endpoint
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

// completionResponse covers both response shapes the endpoint may return:
// chat completions carry choices[0].message.content, legacy text
// completions carry choices[0].text. Both fields are pointers so that a
// choice carrying neither shape is detectable; when both are present the
// chat shape wins.
type completionResponse struct {
	Choices []struct {
		Message *struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Text *string `json:"text"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends a single chat-completion request and returns the assistant
// text. There is no retry: a failed submit surfaces its error directly.
func (p *OpenRouterProvider) Complete(ctx context.Context, prompt types.BuiltPrompt, params CallParams) (string, *types.TokenUsage, error) {
	tracer := otel.Tracer("careerpilot.ai.openrouter")
	ctx, span := tracer.Start(ctx, "openrouter.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "openrouter"),
		attribute.String("ai.model", params.Model),
		attribute.String("ai.feature", string(prompt.Feature)),
		attribute.Float64("ai.temperature", float64(params.Temperature)),
		attribute.Int("ai.max_tokens", params.MaxTokens),
		attribute.Int("input.history_messages", len(prompt.History)),
	)

	body, err := json.Marshal(completionRequest{
		Model:       params.Model,
		Messages:    p.buildMessages(prompt),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return "", nil, apperrors.NewInternalError(apperrors.ErrCodeInvalidRequest,
			"Failed to encode completion request", err)
	}

	var usage *types.TokenUsage
	content, err := p.circuitBreaker.Execute(func() (string, error) {
		text, u, callErr := p.doCompletionRequest(ctx, body)
		usage = u
		return text, callErr
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

// buildMessages assembles the messages array: optional system instruction,
// prior conversation turns in order, then the current user message.
func (p *OpenRouterProvider) buildMessages(prompt types.BuiltPrompt) []chatMessage {
	messages := make([]chatMessage, 0, len(prompt.History)+2)

	if *p.config.UseSystemPrompts && prompt.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt.System})
	}
	for _, m := range prompt.History {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt.User})

	return messages
}

// doCompletionRequest performs the single HTTP round trip and classifies
// every failure mode.
func (p *OpenRouterProvider) doCompletionRequest(ctx context.Context, body []byte) (string, *types.TokenUsage, error) {
	url := strings.TrimSuffix(p.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, apperrors.NewInternalError(apperrors.ErrCodeInvalidRequest,
			"Failed to build completion request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}
	if p.appTitle != "" {
		req.Header.Set("X-Title", p.appTitle)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nil, apperrors.NewNetworkError(apperrors.ErrCodeNetworkFailure,
			"Completion request failed before receiving a response", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		p.logger.Warn("Completion endpoint returned error status",
			"status", resp.StatusCode,
			"model", p.config.Model)
		return "", nil, apperrors.NewHTTPError(resp.StatusCode, string(errBody))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, apperrors.NewAIError(apperrors.ErrCodeMalformedResponse,
			"Completion response is not valid JSON", err)
	}

	if len(parsed.Choices) == 0 {
		return "", nil, apperrors.NewAIError(apperrors.ErrCodeMalformedResponse,
			"Completion response contains no choices", nil)
	}

	choice := parsed.Choices[0]
	var content string
	switch {
	case choice.Message != nil:
		content = choice.Message.Content
	case choice.Text != nil:
		content = *choice.Text
	default:
		return "", nil, apperrors.NewAIError(apperrors.ErrCodeMalformedResponse,
			"Completion choice matches neither the chat nor the text shape", nil)
	}

	if strings.TrimSpace(content) == "" {
		return "", nil, apperrors.NewAIError(apperrors.ErrCodeEmptyContent,
			"Completion response contains no content", nil)
	}

	var usage *types.TokenUsage
	if parsed.Usage != nil {
		usage = &types.TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		}
	}

	return content, usage, nil
}

// modelListResponse is the wire format of the model listing endpoint
type modelListResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// GetModelInfo checks the availability of the configured model against the
// provider's model listing
func (p *OpenRouterProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := p.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		return p.lookupModel(checkCtx)
	})
	if err != nil {
		p.logger.Warn("Model availability check failed",
			"model", p.config.Model,
			"provider", p.config.Provider,
			"error", err.Error())
		return &ModelInfo{
			Name:  p.config.Model,
			Error: fmt.Sprintf("Failed to get model info: %v", err),
		}
	}

	p.logger.Debug("Model availability check successful",
		"model", p.config.Model,
		"provider", p.config.Provider,
		"available", info.Available)

	return info
}

// lookupModel fetches the model listing and searches for the configured model
func (p *OpenRouterProvider) lookupModel(ctx context.Context) (*ModelInfo, error) {
	url := strings.TrimSuffix(p.config.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model listing returned status %d", resp.StatusCode)
	}

	var listing modelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode model listing: %w", err)
	}

	info := &ModelInfo{Name: p.config.Model}
	for _, m := range listing.Data {
		if m.ID == p.config.Model {
			info.Available = true
			info.DisplayName = m.Name
			break
		}
	}
	if !info.Available {
		info.Error = "model not present in provider listing"
	}

	return info, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (p *OpenRouterProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    p.circuitBreaker.GetStats(),
		"model_operations": p.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = p.circuitBreaker.IsHealthy() && p.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements CompletionProvider
func (p *OpenRouterProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

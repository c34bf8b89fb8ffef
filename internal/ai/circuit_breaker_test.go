package ai

import (
	"testing"
	"time"

	"careerpilot/internal/config"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Test that each operation gets its own circuit breaker configuration

	cvAnalysisConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "mistralai/mistral-small-3.1-24b-instruct:free",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	jobMatchConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "mistralai/mistral-small-3.1-24b-instruct:free",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,                // Different from cvAnalysis
			Interval:         30 * time.Second, // Different from cvAnalysis
			Timeout:          45 * time.Second, // Different from cvAnalysis
			MinRequests:      2,                // Different from cvAnalysis
			FailureThreshold: 0.7,              // Different from cvAnalysis
		},
	}

	chatConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "mistralai/mistral-small-3.1-24b-instruct:free",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      4,                // Different from others
			Interval:         90 * time.Second, // Different from others
			Timeout:          75 * time.Second, // Different from others
			MinRequests:      5,                // Different from others
			FailureThreshold: 0.5,              // Different from others
		},
	}

	// Create circuit breakers for each operation
	cvAnalysisCB := NewAICircuitBreaker("CVAnalysis", cvAnalysisConfig, nil)
	jobMatchCB := NewAICircuitBreaker("JobMatch", jobMatchConfig, nil)
	chatCB := NewAICircuitBreaker("Chat", chatConfig, nil)

	// Verify that each circuit breaker has independent configuration
	t.Run("CVAnalysisCircuitBreaker", func(t *testing.T) {
		stats := cvAnalysisCB.GetStats()

		// Check that the circuit breaker exists and has correct name
		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-CVAnalysis"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}

		// Verify it's in closed state initially
		state, ok := stats["state"].(string)
		if !ok {
			t.Fatal("Circuit breaker state not found")
		}
		if state != "closed" {
			t.Errorf("Expected initial state 'closed', got '%s'", state)
		}

		// Verify it's enabled
		enabled, ok := stats["enabled"].(bool)
		if !ok {
			t.Fatal("Circuit breaker enabled status not found")
		}
		if !enabled {
			t.Error("Circuit breaker should be enabled")
		}
	})

	t.Run("JobMatchCircuitBreaker", func(t *testing.T) {
		stats := jobMatchCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-JobMatch"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}
	})

	t.Run("ChatCircuitBreaker", func(t *testing.T) {
		stats := chatCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-Chat"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}
	})

	// Verify that circuit breakers are independent (different instances)
	t.Run("IndependentInstances", func(t *testing.T) {
		if cvAnalysisCB == jobMatchCB {
			t.Error("CV analysis and job match circuit breakers should be different instances")
		}
		if cvAnalysisCB == chatCB {
			t.Error("CV analysis and chat circuit breakers should be different instances")
		}
		if jobMatchCB == chatCB {
			t.Error("Job match and chat circuit breakers should be different instances")
		}
	})

	// Verify that health states are independent
	t.Run("IndependentHealthStates", func(t *testing.T) {
		if !cvAnalysisCB.IsHealthy() {
			t.Error("CV analysis circuit breaker should be healthy initially")
		}
		if !jobMatchCB.IsHealthy() {
			t.Error("Job match circuit breaker should be healthy initially")
		}
		if !chatCB.IsHealthy() {
			t.Error("Chat circuit breaker should be healthy initially")
		}
	})
}

func TestCircuitBreakerConfigurationMapping(t *testing.T) {
	// Test that configuration values are properly applied to circuit breakers

	customConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      10,
			Interval:         120 * time.Second,
			Timeout:          90 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.8,
		},
	}

	cb := NewAICircuitBreaker("Test", customConfig, nil)

	// Verify circuit breaker was created with custom configuration
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.GetStats()
	if stats == nil {
		t.Fatal("Circuit breaker stats should not be nil")
	}

	// Check that the circuit breaker has the expected operation type in its name
	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}

	expectedName := "AI-Test"
	if name != expectedName {
		t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	// Test that circuit breaker returns nil when disabled

	disabledConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false, // Disabled
		},
	}

	cb := NewAICircuitBreaker("Disabled", disabledConfig, nil)

	// Should return nil when disabled
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}
}

func TestDisabledBreakerPassesThrough(t *testing.T) {
	var cb *AICircuitBreaker

	calls := 0
	result, err := cb.Execute(func() (string, error) {
		calls++
		return "content", nil
	})
	if err != nil {
		t.Fatalf("Execute on nil breaker returned error: %v", err)
	}
	if result != "content" {
		t.Errorf("Expected result 'content', got '%s'", result)
	}
	if calls != 1 {
		t.Errorf("Expected exactly one call, got %d", calls)
	}
}

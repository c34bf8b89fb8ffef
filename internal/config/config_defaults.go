package config

import (
	"time"

	"github.com/spf13/viper"
)

// Completion endpoint defaults match the hosted OpenRouter-compatible API.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "mistralai/mistral-small-3.1-24b-instruct:free"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "openrouter")
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.baseUrl", DefaultBaseURL)
	v.SetDefault("ai.referer", "")
	v.SetDefault("ai.appTitle", "careerpilot")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxTokens", 800)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Per-feature token ceilings differ: analysis and chat replies run long,
	// match and interview turns stay short, roadmaps are the longest.
	v.SetDefault("ai.cvAnalysis.provider", "")
	v.SetDefault("ai.cvAnalysis.model", "")
	v.SetDefault("ai.cvAnalysis.maxTokens", 800)
	v.SetDefault("ai.cvAnalysis.temperature", 0.7)

	v.SetDefault("ai.jobMatch.provider", "")
	v.SetDefault("ai.jobMatch.model", "")
	v.SetDefault("ai.jobMatch.maxTokens", 600)
	v.SetDefault("ai.jobMatch.temperature", 0.7)

	v.SetDefault("ai.roadmap.provider", "")
	v.SetDefault("ai.roadmap.model", "")
	v.SetDefault("ai.roadmap.maxTokens", 1000)
	v.SetDefault("ai.roadmap.temperature", 0.7)

	v.SetDefault("ai.chat.provider", "")
	v.SetDefault("ai.chat.model", "")
	v.SetDefault("ai.chat.maxTokens", 800)
	v.SetDefault("ai.chat.temperature", 0.7)

	v.SetDefault("ai.interview.provider", "")
	v.SetDefault("ai.interview.model", "")
	v.SetDefault("ai.interview.maxTokens", 600)
	v.SetDefault("ai.interview.temperature", 0.7)

	// Circuit breakers default off: each submit maps to exactly one outbound
	// call unless an operator opts in.
	for _, op := range []string{"cvAnalysis", "jobMatch", "roadmap", "chat", "interview"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", false)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Hosted auth/profile backend
	v.SetDefault("backend.enabled", false)
	v.SetDefault("backend.baseUrl", "")
	v.SetDefault("backend.anonKey", "")
	v.SetDefault("backend.timeout", 10*time.Second)

	// Feature pipeline defaults
	v.SetDefault("feature.minCVLength", 50)
	v.SetDefault("feature.historyMaxTurns", 20)
	v.SetDefault("feature.sessionTTL", 30*time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "html"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.completionKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "careerpilot")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackSessions", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

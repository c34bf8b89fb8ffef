package server

import (
	"fmt"
	"time"

	"careerpilot/internal/ai"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/feature"
	"careerpilot/internal/profile"
	"careerpilot/internal/types"
)

// Request bodies for the feature endpoints.
type AnalyzeRequest struct {
	Role   string `json:"role"`
	CVText string `json:"cvText"`
}

type MatchRequest struct {
	CVText         string `json:"cvText"`
	JobDescription string `json:"jobDescription"`
}

type RoadmapRequest struct {
	TargetRole string         `json:"targetRole"`
	Profile    *types.Profile `json:"profile,omitempty"`
	CVText     string         `json:"cvText,omitempty"`
}

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Question  string `json:"question"`
}

type InterviewStartRequest struct {
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
}

type InterviewTurnRequest struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration and the feature orchestrators for the HTTP API
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Completion services, one per operation, shared by the orchestrators
	// and the health endpoint
	Services map[string]*ai.Service

	// Feature orchestrators
	Analyzer    *feature.CVAnalyzer
	Matcher     *feature.JobMatcher
	Planner     *feature.RoadmapPlanner
	Advisor     *feature.ChatAdvisor
	Interviewer *feature.Interviewer

	// Chat/interview session store
	Sessions *feature.SessionStore

	// Hosted auth/profile backend, nil when the backend is disabled
	Profiles *profile.Client

	// Logger
	Logger *apperrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *apperrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	services, err := buildServices(appCfg, logger)
	if err != nil {
		return nil, err
	}

	sessions := feature.NewSessionStore(appCfg.Feature.SessionTTL, logger)

	profiles, err := profile.NewClient(&appCfg.Backend, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Services:       services,
		Analyzer:       feature.NewCVAnalyzer(services["cvAnalysis"], appCfg.Feature.MinCVLength, logger),
		Matcher:        feature.NewJobMatcher(services["jobMatch"], appCfg.Feature.MinCVLength, logger),
		Planner:        feature.NewRoadmapPlanner(services["roadmap"], logger),
		Advisor:        feature.NewChatAdvisor(services["chat"], sessions, appCfg.Feature.HistoryMaxTurns, logger),
		Interviewer:    feature.NewInterviewer(services["interview"], sessions, appCfg.Feature.HistoryMaxTurns, logger),
		Sessions:       sessions,
		Profiles:       profiles,
		Logger:         logger,
	}, nil
}

// buildServices creates one completion service per feature operation.
func buildServices(appCfg *config.Config, logger *apperrors.Logger) (map[string]*ai.Service, error) {
	operations := map[string]config.OperationAIConfig{
		"cvAnalysis": appCfg.GetCVAnalysisConfig(),
		"jobMatch":   appCfg.GetJobMatchConfig(),
		"roadmap":    appCfg.GetRoadmapConfig(),
		"chat":       appCfg.GetChatConfig(),
		"interview":  appCfg.GetInterviewConfig(),
	}

	services := make(map[string]*ai.Service, len(operations))
	for operation, opCfg := range operations {
		svc, err := ai.NewService(&opCfg, operation, appCfg.AI.Referer, appCfg.AI.AppTitle, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s service: %w", operation, err)
		}
		services[operation] = svc
	}

	return services, nil
}

package server

import (
	"net/http"
	"strings"

	"careerpilot/internal/observability"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	// Add middleware layers with observability
	rateLimitHandler := s.createRateLimitMiddleware(om)
	requestLimitHandler := s.requestSizeLimitMiddleware()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(s.authMiddleware(requestLimitHandler(h)))
	}

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/analyze", protect(s.createAnalyzeHandler(om)))
	mux.HandleFunc("/match", protect(s.createMatchHandler(om)))
	mux.HandleFunc("/roadmap", protect(s.createRoadmapHandler(om)))
	mux.HandleFunc("/chat", protect(s.createChatHandler(om)))
	mux.HandleFunc("/interview/start", protect(s.createInterviewStartHandler(om)))
	mux.HandleFunc("/interview/turn", protect(s.createInterviewTurnHandler(om)))

	// Profile proxy is only reachable when the hosted backend is configured
	if s.Profiles != nil {
		mux.HandleFunc("/profile", rateLimitHandler(requestLimitHandler(s.profileHandler)))
	}

	return mux
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return after
	}
	return ""
}

// authMiddleware authenticates requests. With API keys configured it checks
// them; otherwise, when the hosted backend is enabled, a valid hosted-session
// bearer token is required instead.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			if s.Profiles != nil {
				s.backendSessionAuth(next, w, r)
				return
			}
			// No authentication configured at all
			next(w, r)
			return
		}

		// Check for API key in X-API-Key header
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			// Check for Bearer token in Authorization header as fallback
			apiKey = bearerToken(r)
		}

		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		// Validate API key
		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		// Log successful authentication
		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// backendSessionAuth validates the caller's hosted-session bearer token.
func (s *Server) backendSessionAuth(next http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		s.Logger.Info("Authentication failed: missing session token",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr)
		writeErrorResponse(w, "Missing session token", "Authorization Bearer token required", http.StatusUnauthorized)
		return
	}

	if _, err := s.Profiles.VerifySession(r.Context(), token); err != nil {
		s.Logger.Info("Authentication failed: invalid session token",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr)
		writeAppError(w, "Invalid session token", err)
		return
	}

	next(w, r)
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				// Limit the request body size
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}

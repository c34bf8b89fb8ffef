package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"careerpilot/internal/ai"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/feature"
	"careerpilot/internal/observability"
	"careerpilot/internal/types"
)

var testLogger = apperrors.NewLogger(slog.LevelError)

type stubProvider struct {
	content string
	err     error
	calls   int
}

func (s *stubProvider) Complete(ctx context.Context, prompt types.BuiltPrompt, params ai.CallParams) (string, *types.TokenUsage, error) {
	s.calls++
	if s.err != nil {
		return "", nil, s.err
	}
	return s.content, &types.TokenUsage{InputTokens: 12, OutputTokens: 34, TotalTokens: 46}, nil
}

func (s *stubProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "stub-model", Available: true}
}

func (s *stubProvider) Close() error { return nil }

func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

func newStubService(t *testing.T, operationType string, stub *stubProvider) *ai.Service {
	t.Helper()

	cfg := &config.OperationAIConfig{
		Provider:         "openrouter",
		Model:            "test/model",
		BaseURL:          "http://localhost:0",
		APIKey:           "test-key",
		Timeout:          timePtr(5 * time.Second),
		MaxTokens:        intPtr(256),
		Temperature:      float32Ptr(0.2),
		UseSystemPrompts: boolPtr(true),
	}

	svc, err := ai.NewService(cfg, operationType, "", "", testLogger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.Provider = stub
	return svc
}

// newTestServer assembles a Server whose orchestrators all answer through
// the given stub provider.
func newTestServer(t *testing.T, stub *stubProvider) *Server {
	t.Helper()

	services := map[string]*ai.Service{
		"cvAnalysis": newStubService(t, "cvAnalysis", stub),
		"jobMatch":   newStubService(t, "jobMatch", stub),
		"roadmap":    newStubService(t, "roadmap", stub),
		"chat":       newStubService(t, "chat", stub),
		"interview":  newStubService(t, "interview", stub),
	}

	sessions := feature.NewSessionStore(time.Minute, testLogger)
	t.Cleanup(sessions.Close)

	appCfg := &config.Config{}
	appCfg.Feature.MinCVLength = 50
	appCfg.Feature.HistoryMaxTurns = 20
	appCfg.Feature.SessionTTL = time.Minute
	appCfg.Observability.HealthCheck.Timeout = time.Second

	return &Server{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		AppConfig:      appCfg,
		MaxRequestSize: 1 << 20,
		APIKeys:        map[string]bool{},
		Services:       services,
		Analyzer:       feature.NewCVAnalyzer(services["cvAnalysis"], 50, testLogger),
		Matcher:        feature.NewJobMatcher(services["jobMatch"], 50, testLogger),
		Planner:        feature.NewRoadmapPlanner(services["roadmap"], testLogger),
		Advisor:        feature.NewChatAdvisor(services["chat"], sessions, 20, testLogger),
		Interviewer:    feature.NewInterviewer(services["interview"], sessions, 20, testLogger),
		Sessions:       sessions,
		Logger:         testLogger,
	}
}

func newTestObservability(t *testing.T) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(
		observability.ObservabilityConfig{Enabled: false}, &config.Config{})
	if err != nil {
		t.Fatalf("NewObservabilityManager: %v", err)
	}
	return om
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validCV = "Senior backend engineer with eight years of experience building " +
	"distributed systems in Go, operating PostgreSQL and Redis at scale, and " +
	"leading a platform team of five."

func TestAnalyzeEndpoint(t *testing.T) {
	stub := &stubProvider{content: "ATS Score: 88%\n\nStrong CV overall."}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/analyze", AnalyzeRequest{Role: "Backend Engineer", CVText: validCV})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out types.CVAnalysisOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Score == nil || *out.Score != 88 {
		t.Errorf("score = %v, want 88", out.Score)
	}
	if out.RenderedHTML == "" {
		t.Error("expected rendered HTML")
	}
	if stub.calls != 1 {
		t.Errorf("provider calls = %d, want 1", stub.calls)
	}
}

func TestAnalyzeEndpointShortCV(t *testing.T) {
	stub := &stubProvider{content: "unused"}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/analyze", AnalyzeRequest{CVText: "too short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != apperrors.ErrCodeContentTooShort {
		t.Errorf("code = %q, want %q", errResp.Code, apperrors.ErrCodeContentTooShort)
	}
	if stub.calls != 0 {
		t.Errorf("provider calls = %d, want 0", stub.calls)
	}
}

func TestAnalyzeEndpointWrongContentType(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "unused"})
	mux := srv.setupRoutes(newTestObservability(t))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMatchEndpoint(t *testing.T) {
	stub := &stubProvider{content: "Match Score: 72\n\nGood overlap on Go and SQL."}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/match", MatchRequest{CVText: validCV, JobDescription: "Go developer"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out types.JobMatchOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Score == nil || *out.Score != 72 {
		t.Errorf("score = %v, want 72", out.Score)
	}
}

func TestRoadmapEndpoint(t *testing.T) {
	stub := &stubProvider{content: "## Month 1\n\nLearn Kubernetes."}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/roadmap", RoadmapRequest{
		TargetRole: "Platform Engineer",
		Profile:    &types.Profile{Name: "Sam", Skills: []string{"Go"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out types.SkillsRoadmapOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Roadmap == "" {
		t.Error("expected roadmap content")
	}
}

func TestRoadmapEndpointMissingInputs(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "unused"})
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/roadmap", RoadmapRequest{TargetRole: "Platform Engineer"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatEndpointSessionContinuity(t *testing.T) {
	stub := &stubProvider{content: "Consider contributing to open source."}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/chat", ChatRequest{Question: "How do I grow as an engineer?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var first types.CareerChatOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode first response: %v", err)
	}
	if first.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if len(first.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(first.History))
	}

	rec = postJSON(t, mux, "/chat", ChatRequest{SessionID: first.SessionID, Question: "Which project?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("second status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var second types.CareerChatOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode second response: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q != %q", second.SessionID, first.SessionID)
	}
	if len(second.History) != 4 {
		t.Errorf("history length = %d, want 4", len(second.History))
	}
}

func TestChatEndpointUnknownSession(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "unused"})
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/chat", ChatRequest{SessionID: "nope", Question: "Hello?"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestInterviewEndpoints(t *testing.T) {
	stub := &stubProvider{content: "Tell me about a hard bug you fixed."}
	srv := newTestServer(t, stub)
	mux := srv.setupRoutes(newTestObservability(t))

	rec := postJSON(t, mux, "/interview/start", InterviewStartRequest{
		JobTitle:       "SRE",
		JobDescription: "Keep the lights on.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var start types.InterviewOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &start); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if start.SessionID == "" {
		t.Fatal("expected a session id")
	}

	stub.content = "Good answer. What about alerting?"
	rec = postJSON(t, mux, "/interview/turn", InterviewTurnRequest{
		SessionID: start.SessionID,
		Response:  "I bisected the deploy history.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("turn status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var turn types.InterviewOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn response: %v", err)
	}
	if len(turn.History) != 3 {
		t.Errorf("history length = %d, want 3", len(turn.History))
	}
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	stub := &stubProvider{content: "ATS Score: 90%"}
	srv := newTestServer(t, stub)
	srv.APIKeys = map[string]bool{"secret-key-123456": true}
	mux := srv.setupRoutes(newTestObservability(t))

	payload, _ := json.Marshal(AnalyzeRequest{CVText: validCV})

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("provider calls = %d, want 0", stub.calls)
	}

	req = httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret-key-123456")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "unused"})
	mux := srv.setupRoutes(newTestObservability(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", health["status"])
	}
	models, ok := health["ai_models"].(map[string]any)
	if !ok || len(models) != 5 {
		t.Errorf("ai_models = %v, want 5 entries", health["ai_models"])
	}

	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProvider{content: "hello"})
	mux := srv.setupRoutes(newTestObservability(t))

	// Open a session so the count is non-zero
	rec := postJSON(t, mux, "/chat", ChatRequest{Question: "Hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}

	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats response: %v", err)
	}
	sessions, ok := stats["sessions"].(map[string]any)
	if !ok {
		t.Fatalf("missing sessions section: %v", stats)
	}
	if active, _ := sessions["active"].(float64); active != 1 {
		t.Errorf("active sessions = %v, want 1", sessions["active"])
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "missing field",
			err:  apperrors.NewValidationError(apperrors.ErrCodeMissingField, "missing", nil),
			want: http.StatusBadRequest,
		},
		{
			name: "session not found",
			err:  apperrors.NewValidationError(apperrors.ErrCodeSessionNotFound, "gone", nil),
			want: http.StatusNotFound,
		},
		{
			name: "request in flight",
			err:  apperrors.NewValidationError(apperrors.ErrCodeRequestInFlight, "busy", nil),
			want: http.StatusConflict,
		},
		{
			name: "provider http error",
			err:  apperrors.NewHTTPError(500, "boom"),
			want: http.StatusBadGateway,
		},
		{
			name: "network failure",
			err:  apperrors.NewNetworkError(apperrors.ErrCodeNetworkFailure, "down", nil),
			want: http.StatusBadGateway,
		},
		{
			name: "plain error",
			err:  context.DeadlineExceeded,
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError = %d, want %d", got, tt.want)
			}
		})
	}
}

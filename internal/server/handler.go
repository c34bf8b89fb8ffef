package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/observability"
	"careerpilot/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// statusForError maps an application error to an HTTP status code. Local
// validation problems are the client's fault; provider failures surface as
// bad gateway so callers can tell them apart from bugs in this service.
func statusForError(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRequestInFlight:
		return http.StatusConflict
	case apperrors.ErrCodeSessionInvalid:
		return http.StatusUnauthorized
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeAI, apperrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes an application error as a JSON error response.
func writeAppError(w http.ResponseWriter, label string, err error) {
	code := ""
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForError(err))
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   label,
		Code:    code,
		Message: err.Error(),
	}); encErr != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeJSON writes a successful response body.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.LogError(err, "Failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// observedUsage converts provider token accounting for metric recording.
func observedUsage(u *types.TokenUsage) *observability.TokenUsage {
	if u == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  int64(u.InputTokens),
		OutputTokens: int64(u.OutputTokens),
		TotalTokens:  int64(u.TotalTokens),
	}
}

// createAnalyzeHandler wraps the CV analysis orchestrator with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.cv_length", len(req.CVText)),
			attribute.String("operation", "cvAnalysis"),
		)

		metrics := om.GetMetrics()
		var result *types.CVAnalysisOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "cvAnalysis", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Analyzer.Analyze(ctx, types.CVAnalysisInput{
				Role:   req.Role,
				CVText: req.CVText,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Analyzer.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "cv_analyzed", false, om)
			writeAppError(w, "Failed to analyze CV", err)
			return
		}

		attrs := []attribute.KeyValue{
			attribute.Int("output.feedback_length", len(result.Feedback)),
		}
		if result.Score != nil {
			attrs = append(attrs, attribute.Int("ats.score", *result.Score))
		}
		metrics.RecordBusinessMetric(ctx, "cv_analyzed", true, om, attrs...)
		span.SetAttributes(attribute.Bool("success", true))

		s.writeJSON(w, result)
	}
}

// createMatchHandler wraps the job match orchestrator with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.cv_length", len(req.CVText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "jobMatch"),
		)

		metrics := om.GetMetrics()
		var result *types.JobMatchOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "jobMatch", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Matcher.Match(ctx, types.JobMatchInput{
				CVText:         req.CVText,
				JobDescription: req.JobDescription,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Matcher.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "job_matched", false, om)
			writeAppError(w, "Failed to match CV against job", err)
			return
		}

		attrs := []attribute.KeyValue{
			attribute.Int("output.analysis_length", len(result.Analysis)),
		}
		if result.Score != nil {
			attrs = append(attrs, attribute.Int("match.score", *result.Score))
		}
		metrics.RecordBusinessMetric(ctx, "job_matched", true, om, attrs...)
		span.SetAttributes(attribute.Bool("success", true))

		s.writeJSON(w, result)
	}
}

// createRoadmapHandler wraps the skills roadmap orchestrator with
// observability. When the request omits both profile and CV text, and the
// hosted backend is enabled, the caller's profile is fetched with their
// bearer token.
func (s *Server) createRoadmapHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.roadmap")
		defer span.End()

		var req RoadmapRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.Profile == nil && req.CVText == "" && s.Profiles != nil {
			if prof, err := s.fetchCallerProfile(ctx, r); err == nil {
				req.Profile = prof
			} else {
				s.Logger.Debug("Caller profile unavailable for roadmap",
					"error", err.Error())
			}
		}

		span.SetAttributes(
			attribute.String("request.target_role", req.TargetRole),
			attribute.Bool("request.has_profile", req.Profile != nil),
			attribute.String("operation", "roadmap"),
		)

		metrics := om.GetMetrics()
		var result *types.SkillsRoadmapOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "roadmap", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Planner.Plan(ctx, types.SkillsRoadmapInput{
				TargetRole: req.TargetRole,
				Profile:    req.Profile,
				CVText:     req.CVText,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Planner.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "roadmap_generated", false, om)
			writeAppError(w, "Failed to generate roadmap", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "roadmap_generated", true, om,
			attribute.Int("output.roadmap_length", len(result.Roadmap)))
		span.SetAttributes(attribute.Bool("success", true))

		s.writeJSON(w, result)
	}
}

// fetchCallerProfile resolves the caller's stored profile from the hosted
// backend using the bearer token on the request.
func (s *Server) fetchCallerProfile(ctx context.Context, r *http.Request) (*types.Profile, error) {
	token := bearerToken(r)
	session, err := s.Profiles.VerifySession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Profiles.FetchProfile(ctx, token, session.UserID)
}

// createChatHandler wraps the career chat orchestrator with observability
func (s *Server) createChatHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.chat")
		defer span.End()

		var req ChatRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Bool("request.new_session", req.SessionID == ""),
			attribute.String("operation", "chat"),
		)

		metrics := om.GetMetrics()
		var result *types.CareerChatOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "chat", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Advisor.Chat(ctx, types.CareerChatInput{
				SessionID: req.SessionID,
				Question:  req.Question,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Advisor.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "chat_message", false, om)
			writeAppError(w, "Failed to answer question", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "chat_message", true, om,
			attribute.Int("session.history_length", len(result.History)))
		metrics.RecordActiveSessions(ctx, int64(s.Sessions.Count()), om)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", result.SessionID),
		)

		s.writeJSON(w, result)
	}
}

// createInterviewStartHandler wraps Interviewer.Start with observability
func (s *Server) createInterviewStartHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.interview_start")
		defer span.End()

		var req InterviewStartRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.job_title", req.JobTitle),
			attribute.String("operation", "interview"),
		)

		metrics := om.GetMetrics()
		var result *types.InterviewOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "interview", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Interviewer.Start(ctx, types.InterviewStartInput{
				JobTitle:       req.JobTitle,
				JobDescription: req.JobDescription,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Interviewer.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "interview_turn", false, om)
			writeAppError(w, "Failed to start interview", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "interview_turn", true, om,
			attribute.Bool("interview.opening", true))
		metrics.RecordActiveSessions(ctx, int64(s.Sessions.Count()), om)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", result.SessionID),
		)

		s.writeJSON(w, result)
	}
}

// createInterviewTurnHandler wraps Interviewer.Turn with observability
func (s *Server) createInterviewTurnHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careerpilot.api")
		ctx, span := tracer.Start(ctx, "api.interview_turn")
		defer span.End()

		var req InterviewTurnRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.String("operation", "interview"),
		)

		metrics := om.GetMetrics()
		var result *types.InterviewOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "interview", func(ctx context.Context) *observability.AIOperationResult {
			output, aiErr := s.Interviewer.Turn(ctx, types.InterviewTurnInput{
				SessionID: req.SessionID,
				Response:  req.Response,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: observedUsage(s.Interviewer.Usage()),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "interview_turn", false, om)
			writeAppError(w, "Failed to process interview turn", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "interview_turn", true, om,
			attribute.Int("session.history_length", len(result.History)))
		span.SetAttributes(attribute.Bool("success", true))

		s.writeJSON(w, result)
	}
}

// createRateLimitMiddleware attaches the rate-limit-hit counter to the
// limiter's rejection path.
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	return s.rateLimitMiddleware(func(r *http.Request) {
		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
			attribute.String("endpoint", r.URL.Path),
			attribute.String("method", r.Method))
	})
}

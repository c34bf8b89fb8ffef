package feature

import (
	"context"
	"fmt"
	"sync"

	"careerpilot/internal/ai"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/extract"
	"careerpilot/internal/textutil"
	"careerpilot/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is the lifecycle position of a feature orchestrator.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRequesting State = "requesting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// cvTooShortMessage is the user-facing rejection for undersized CV text.
const cvTooShortMessage = "CV is too short. Please provide more detailed content."

// runner drives the submit lifecycle shared by every feature orchestrator:
// validate locally, send exactly one completion request, land in Success or
// Failed. A second submit while one is outstanding is rejected; after any
// terminal state the next submit starts over.
type runner struct {
	feature types.Feature
	service *ai.Service
	logger  *apperrors.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	usage    *types.TokenUsage
}

func newRunner(feature types.Feature, service *ai.Service, logger *apperrors.Logger) runner {
	return runner{
		feature: feature,
		service: service,
		logger:  logger,
		state:   StateIdle,
	}
}

// State reports the current lifecycle state.
func (r *runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Usage reports the token accounting from the most recently completed
// request, or nil when the provider did not include usage.
func (r *runner) Usage() *types.TokenUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

// begin moves Idle/Success/Failed into Validating and sets the busy flag.
func (r *runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		return apperrors.NewValidationError(apperrors.ErrCodeRequestInFlight,
			"A request for this feature is already in progress", nil)
	}
	r.inFlight = true
	r.state = StateValidating
	return nil
}

// setState records a transition without touching the busy flag. Used by the
// conversational orchestrators, whose busy flag lives on the session.
func (r *runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// recordUsage stores token accounting for orchestrators that call the
// provider outside of request.
func (r *runner) recordUsage(u *types.TokenUsage) {
	r.mu.Lock()
	r.usage = u
	r.mu.Unlock()
}

// reject finishes a submit that failed local validation. No network call is
// made on this path.
func (r *runner) reject(err error) error {
	r.mu.Lock()
	r.state = StateFailed
	r.inFlight = false
	r.mu.Unlock()

	r.logger.Debug("Feature submit rejected by validation",
		"feature", string(r.feature),
		"error", err.Error())
	return err
}

// request sends the assembled prompt through the completion provider and
// settles the state machine. One submit maps to exactly one provider call.
func (r *runner) request(ctx context.Context, prompt types.BuiltPrompt) (string, *types.TokenUsage, error) {
	r.mu.Lock()
	r.state = StateRequesting
	r.mu.Unlock()

	content, usage, err := r.service.Provider.Complete(ctx, prompt, r.service.CallParams())

	r.mu.Lock()
	if err != nil {
		r.state = StateFailed
	} else {
		r.state = StateSuccess
	}
	r.inFlight = false
	r.usage = usage
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Completion request failed",
			"feature", string(r.feature),
			"error", err.Error())
		return "", nil, err
	}

	logArgs := []any{"feature", string(r.feature), "content_length", len(content)}
	if usage != nil {
		logArgs = append(logArgs, "total_tokens", usage.TotalTokens)
	}
	r.logger.Info("Completion request succeeded", logArgs...)

	return content, usage, nil
}

func (r *runner) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("careerpilot.feature")
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("feature", string(r.feature)))
	return ctx, span
}

// requireField validates that a named input survived normalization non-empty.
func requireField(name, value string) error {
	if value == "" {
		return apperrors.NewValidationError(apperrors.ErrCodeMissingField,
			fmt.Sprintf("Required field '%s' is empty", name), nil)
	}
	return nil
}

// CVAnalyzer scores a CV against applicant-tracking heuristics.
type CVAnalyzer struct {
	runner
	minCVLength int
}

// NewCVAnalyzer creates the CV analysis orchestrator.
func NewCVAnalyzer(service *ai.Service, minCVLength int, logger *apperrors.Logger) *CVAnalyzer {
	return &CVAnalyzer{
		runner:      newRunner(types.FeatureCVAnalysis, service, logger),
		minCVLength: minCVLength,
	}
}

// Analyze runs one CV review. The returned score is nil when the model's
// reply carried no recognizable score marker.
func (a *CVAnalyzer) Analyze(ctx context.Context, input types.CVAnalysisInput) (*types.CVAnalysisOutput, error) {
	ctx, span := a.startSpan(ctx, "feature.cv_analysis")
	defer span.End()

	if err := a.begin(); err != nil {
		return nil, err
	}

	cvText := textutil.Normalize(input.CVText)
	role := textutil.Normalize(input.Role)
	if err := requireField("cvText", cvText); err != nil {
		return nil, a.reject(err)
	}
	if len(cvText) < a.minCVLength {
		return nil, a.reject(apperrors.NewValidationError(apperrors.ErrCodeContentTooShort,
			cvTooShortMessage, nil))
	}

	prompt := a.service.PromptBuilder().CVAnalysis(role, cvText)
	content, _, err := a.request(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	output := &types.CVAnalysisOutput{
		Score:        extract.ExtractScore(content),
		Feedback:     content,
		RenderedHTML: extract.RenderMarkdown(content),
	}
	if output.Score != nil {
		span.SetAttributes(attribute.Int("score", *output.Score))
	}
	return output, nil
}

// JobMatcher compares a CV against a specific job posting.
type JobMatcher struct {
	runner
	minCVLength int
}

// NewJobMatcher creates the job match orchestrator.
func NewJobMatcher(service *ai.Service, minCVLength int, logger *apperrors.Logger) *JobMatcher {
	return &JobMatcher{
		runner:      newRunner(types.FeatureJobMatch, service, logger),
		minCVLength: minCVLength,
	}
}

// Match runs one CV-to-posting comparison.
func (m *JobMatcher) Match(ctx context.Context, input types.JobMatchInput) (*types.JobMatchOutput, error) {
	ctx, span := m.startSpan(ctx, "feature.job_match")
	defer span.End()

	if err := m.begin(); err != nil {
		return nil, err
	}

	cvText := textutil.Normalize(input.CVText)
	jobDescription := textutil.Normalize(input.JobDescription)
	if err := requireField("cvText", cvText); err != nil {
		return nil, m.reject(err)
	}
	if len(cvText) < m.minCVLength {
		return nil, m.reject(apperrors.NewValidationError(apperrors.ErrCodeContentTooShort,
			cvTooShortMessage, nil))
	}
	if err := requireField("jobDescription", jobDescription); err != nil {
		return nil, m.reject(err)
	}

	prompt := m.service.PromptBuilder().JobMatch(cvText, jobDescription)
	content, _, err := m.request(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	output := &types.JobMatchOutput{
		Score:        extract.ExtractScore(content),
		Analysis:     content,
		RenderedHTML: extract.RenderMarkdown(content),
	}
	if output.Score != nil {
		span.SetAttributes(attribute.Int("score", *output.Score))
	}
	return output, nil
}

// RoadmapPlanner generates a learning roadmap toward a target role.
type RoadmapPlanner struct {
	runner
}

// NewRoadmapPlanner creates the skills roadmap orchestrator.
func NewRoadmapPlanner(service *ai.Service, logger *apperrors.Logger) *RoadmapPlanner {
	return &RoadmapPlanner{
		runner: newRunner(types.FeatureSkillsRoadmap, service, logger),
	}
}

// Plan builds a roadmap from the stored profile, the supplied CV text, or
// both. TargetRole is required; at least one source of background is too.
func (p *RoadmapPlanner) Plan(ctx context.Context, input types.SkillsRoadmapInput) (*types.SkillsRoadmapOutput, error) {
	ctx, span := p.startSpan(ctx, "feature.skills_roadmap")
	defer span.End()

	if err := p.begin(); err != nil {
		return nil, err
	}

	targetRole := textutil.Normalize(input.TargetRole)
	cvText := textutil.Normalize(input.CVText)
	if err := requireField("targetRole", targetRole); err != nil {
		return nil, p.reject(err)
	}
	if input.Profile == nil && cvText == "" {
		return nil, p.reject(apperrors.NewValidationError(apperrors.ErrCodeMissingField,
			"Either a profile or CV text is required to build a roadmap", nil))
	}

	profileText := ai.BuildProfileText(input.Profile, targetRole, cvText)
	prompt := p.service.PromptBuilder().SkillsRoadmap(profileText)
	content, _, err := p.request(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &types.SkillsRoadmapOutput{
		Roadmap:      content,
		RenderedHTML: extract.RenderMarkdown(content),
	}, nil
}

package feature

import (
	"context"

	"careerpilot/internal/ai"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/extract"
	"careerpilot/internal/textutil"
	"careerpilot/internal/types"
)

// ChatAdvisor answers free-form career questions across a running
// conversation. Each session keeps its own transcript; the busy flag that
// blocks duplicate submits is per session, so independent conversations
// never wait on each other.
type ChatAdvisor struct {
	runner
	sessions        *SessionStore
	historyMaxTurns int
}

// NewChatAdvisor creates the career chat orchestrator.
func NewChatAdvisor(service *ai.Service, sessions *SessionStore, historyMaxTurns int, logger *apperrors.Logger) *ChatAdvisor {
	return &ChatAdvisor{
		runner:          newRunner(types.FeatureCareerChat, service, logger),
		sessions:        sessions,
		historyMaxTurns: historyMaxTurns,
	}
}

// Chat answers one question. An empty SessionID starts a new conversation;
// otherwise the question continues the identified session. Both the question
// and the answer are appended to the transcript only after the completion
// succeeds, so a failed submit leaves the history untouched.
func (c *ChatAdvisor) Chat(ctx context.Context, input types.CareerChatInput) (*types.CareerChatOutput, error) {
	ctx, span := c.startSpan(ctx, "feature.career_chat")
	defer span.End()

	c.setState(StateValidating)

	question := textutil.Normalize(input.Question)
	if err := requireField("question", question); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	var session *Session
	if input.SessionID == "" {
		session = c.sessions.Create(SessionChat)
	} else {
		var err error
		session, err = c.sessions.Get(input.SessionID, SessionChat)
		if err != nil {
			c.setState(StateFailed)
			return nil, err
		}
	}

	if !session.beginRequest() {
		c.setState(StateFailed)
		return nil, apperrors.NewValidationError(apperrors.ErrCodeRequestInFlight,
			"A message for this conversation is already in progress", nil)
	}
	defer session.endRequest()

	prompt := c.service.PromptBuilder().CareerChat(question, session.Recent(c.historyMaxTurns))
	c.setState(StateRequesting)
	content, usage, err := c.service.Provider.Complete(ctx, prompt, c.service.CallParams())
	if err != nil {
		c.setState(StateFailed)
		span.RecordError(err)
		c.logger.Warn("Completion request failed",
			"feature", string(c.feature),
			"session_id", session.ID,
			"error", err.Error())
		return nil, err
	}
	c.setState(StateSuccess)
	c.recordUsage(usage)

	session.Append(types.RoleUser, question)
	session.Append(types.RoleAssistant, content)

	return &types.CareerChatOutput{
		SessionID:    session.ID,
		Answer:       content,
		RenderedHTML: extract.RenderMarkdown(content),
		History:      session.History(),
	}, nil
}

// Interviewer runs a mock interview for a specific opening: Start poses the
// first question, Turn scores the candidate's answer and asks the next one.
type Interviewer struct {
	runner
	sessions        *SessionStore
	historyMaxTurns int
}

// NewInterviewer creates the mock interview orchestrator.
func NewInterviewer(service *ai.Service, sessions *SessionStore, historyMaxTurns int, logger *apperrors.Logger) *Interviewer {
	return &Interviewer{
		runner:          newRunner(types.FeatureMockInterview, service, logger),
		sessions:        sessions,
		historyMaxTurns: historyMaxTurns,
	}
}

// Start opens a new interview session and returns the opening question.
func (i *Interviewer) Start(ctx context.Context, input types.InterviewStartInput) (*types.InterviewOutput, error) {
	ctx, span := i.startSpan(ctx, "feature.interview_start")
	defer span.End()

	i.setState(StateValidating)

	jobTitle := textutil.Normalize(input.JobTitle)
	jobDescription := textutil.Normalize(input.JobDescription)
	if err := requireField("jobTitle", jobTitle); err != nil {
		i.setState(StateFailed)
		return nil, err
	}
	if err := requireField("jobDescription", jobDescription); err != nil {
		i.setState(StateFailed)
		return nil, err
	}

	prompt := i.service.PromptBuilder().InterviewStart(jobTitle, jobDescription)
	i.setState(StateRequesting)
	content, usage, err := i.service.Provider.Complete(ctx, prompt, i.service.CallParams())
	if err != nil {
		i.setState(StateFailed)
		span.RecordError(err)
		i.logger.Warn("Completion request failed",
			"feature", string(i.feature),
			"error", err.Error())
		return nil, err
	}
	i.setState(StateSuccess)
	i.recordUsage(usage)

	// The session is created only once the opening question exists, so a
	// failed start leaves nothing behind.
	session := i.sessions.Create(SessionInterview)
	session.JobTitle = jobTitle
	session.JobDescription = jobDescription
	session.Append(types.RoleAssistant, content)

	return &types.InterviewOutput{
		SessionID:    session.ID,
		Message:      content,
		RenderedHTML: extract.RenderMarkdown(content),
		History:      session.History(),
	}, nil
}

// Turn submits the candidate's answer to the current question and returns
// feedback plus the follow-up question.
func (i *Interviewer) Turn(ctx context.Context, input types.InterviewTurnInput) (*types.InterviewOutput, error) {
	ctx, span := i.startSpan(ctx, "feature.interview_turn")
	defer span.End()

	i.setState(StateValidating)

	response := textutil.Normalize(input.Response)
	if err := requireField("sessionId", input.SessionID); err != nil {
		i.setState(StateFailed)
		return nil, err
	}
	if err := requireField("response", response); err != nil {
		i.setState(StateFailed)
		return nil, err
	}

	session, err := i.sessions.Get(input.SessionID, SessionInterview)
	if err != nil {
		i.setState(StateFailed)
		return nil, err
	}

	if !session.beginRequest() {
		i.setState(StateFailed)
		return nil, apperrors.NewValidationError(apperrors.ErrCodeRequestInFlight,
			"A turn for this interview is already in progress", nil)
	}
	defer session.endRequest()

	prompt := i.service.PromptBuilder().InterviewTurn(session.JobTitle, session.JobDescription, response)
	i.setState(StateRequesting)
	content, usage, err := i.service.Provider.Complete(ctx, prompt, i.service.CallParams())
	if err != nil {
		i.setState(StateFailed)
		span.RecordError(err)
		i.logger.Warn("Completion request failed",
			"feature", string(i.feature),
			"session_id", session.ID,
			"error", err.Error())
		return nil, err
	}
	i.setState(StateSuccess)
	i.recordUsage(usage)

	session.Append(types.RoleUser, response)
	session.Append(types.RoleAssistant, content)

	return &types.InterviewOutput{
		SessionID:    session.ID,
		Message:      content,
		RenderedHTML: extract.RenderMarkdown(content),
		History:      session.History(),
	}, nil
}

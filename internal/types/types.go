package types

import "time"

// Feature identifies one of the assistance operations.
type Feature string

const (
	FeatureCVAnalysis    Feature = "cv_analysis"
	FeatureJobMatch      Feature = "job_match"
	FeatureSkillsRoadmap Feature = "skills_roadmap"
	FeatureCareerChat    Feature = "career_chat"
	FeatureMockInterview Feature = "mock_interview"
)

// AllFeatures lists every feature in presentation order.
var AllFeatures = []Feature{
	FeatureCVAnalysis,
	FeatureJobMatch,
	FeatureSkillsRoadmap,
	FeatureCareerChat,
	FeatureMockInterview,
}

// CVAnalysisInput represents the input for a CV review.
type CVAnalysisInput struct {
	Role   string `json:"role,omitempty"`
	CVText string `json:"cvText"`
}

// CVAnalysisOutput represents the result of a CV review.
// Score is nil when the model's reply contained no recognizable score.
type CVAnalysisOutput struct {
	Score        *int   `json:"score"`
	Feedback     string `json:"feedback"`
	RenderedHTML string `json:"renderedHtml"`
}

// JobMatchInput represents the input for comparing a CV to a job posting.
type JobMatchInput struct {
	CVText         string `json:"cvText"`
	JobDescription string `json:"jobDescription"`
}

// JobMatchOutput represents the result of a CV/job comparison.
type JobMatchOutput struct {
	Score        *int   `json:"score"`
	Analysis     string `json:"analysis"`
	RenderedHTML string `json:"renderedHtml"`
}

// Profile holds the career profile fields kept by the hosted backend.
type Profile struct {
	Name       string   `json:"name"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Goals      string   `json:"goals"`
	Skills     []string `json:"skills"`
}

// SkillsRoadmapInput represents the input for generating a learning roadmap.
// Profile is optional; when absent the roadmap is built from CVText alone.
type SkillsRoadmapInput struct {
	TargetRole string   `json:"targetRole"`
	Profile    *Profile `json:"profile,omitempty"`
	CVText     string   `json:"cvText,omitempty"`
}

// SkillsRoadmapOutput represents a generated learning roadmap.
type SkillsRoadmapOutput struct {
	Roadmap      string `json:"roadmap"`
	RenderedHTML string `json:"renderedHtml"`
}

// ChatRole is the author of a conversation turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage is a single turn in a chat or interview session.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// CareerChatInput represents one question in an advisory conversation.
type CareerChatInput struct {
	SessionID string `json:"sessionId,omitempty"`
	Question  string `json:"question"`
}

// CareerChatOutput represents the advisor's reply plus the session transcript.
type CareerChatOutput struct {
	SessionID    string        `json:"sessionId"`
	Answer       string        `json:"answer"`
	RenderedHTML string        `json:"renderedHtml"`
	History      []ChatMessage `json:"history"`
}

// InterviewStartInput begins a mock interview for a specific opening.
type InterviewStartInput struct {
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
}

// InterviewTurnInput answers the current interview question.
type InterviewTurnInput struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

// InterviewOutput represents the interviewer's message: the opening question
// on start, or feedback plus the next question on a turn.
type InterviewOutput struct {
	SessionID    string        `json:"sessionId"`
	Message      string        `json:"message"`
	RenderedHTML string        `json:"renderedHtml"`
	History      []ChatMessage `json:"history"`
}

// BuiltPrompt is the fully assembled prompt for one completion call.
type BuiltPrompt struct {
	System  string        `json:"system,omitempty"`
	User    string        `json:"user"`
	History []ChatMessage `json:"history,omitempty"`
	Feature Feature       `json:"feature"`
}

// TokenUsage captures token accounting reported by a provider.
type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

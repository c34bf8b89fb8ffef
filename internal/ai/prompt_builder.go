package ai

import (
	"fmt"
	"strings"

	"careerpilot/internal/types"
)

// PromptBuilder assembles per-feature prompts from the configured templates.
// Field values are interpolated verbatim; validation of required fields
// happens at the orchestrator boundary before a prompt is built.
type PromptBuilder struct {
	prompts PromptConfig
}

// NewPromptBuilder creates a builder over the given prompt configuration.
func NewPromptBuilder(prompts PromptConfig) *PromptBuilder {
	return &PromptBuilder{prompts: prompts}
}

// CVAnalysis builds the CV review prompt. The role line is included only
// when a target role was supplied.
func (b *PromptBuilder) CVAnalysis(role, cvText string) types.BuiltPrompt {
	roleLine := ""
	if role != "" {
		roleLine = "\nTarget role: " + role + "\n"
	}
	return types.BuiltPrompt{
		Feature: types.FeatureCVAnalysis,
		System:  b.prompts.SystemPrompts.CVAnalysis,
		User:    fmt.Sprintf(b.prompts.UserPrompts.CVAnalysis, roleLine, cvText),
	}
}

// JobMatch builds the CV-to-posting comparison prompt.
func (b *PromptBuilder) JobMatch(cvText, jobDescription string) types.BuiltPrompt {
	return types.BuiltPrompt{
		Feature: types.FeatureJobMatch,
		System:  b.prompts.SystemPrompts.JobMatch,
		User:    fmt.Sprintf(b.prompts.UserPrompts.JobMatch, cvText, jobDescription),
	}
}

// SkillsRoadmap builds the roadmap prompt from an assembled profile text.
func (b *PromptBuilder) SkillsRoadmap(profileText string) types.BuiltPrompt {
	return types.BuiltPrompt{
		Feature: types.FeatureSkillsRoadmap,
		System:  b.prompts.SystemPrompts.SkillsRoadmap,
		User:    fmt.Sprintf(b.prompts.UserPrompts.SkillsRoadmap, profileText),
	}
}

// CareerChat builds an advisory prompt carrying the recent conversation
// turns so the model can follow up on earlier answers.
func (b *PromptBuilder) CareerChat(question string, history []types.ChatMessage) types.BuiltPrompt {
	return types.BuiltPrompt{
		Feature: types.FeatureCareerChat,
		System:  b.prompts.SystemPrompts.CareerChat,
		User:    fmt.Sprintf(b.prompts.UserPrompts.CareerChat, question),
		History: history,
	}
}

// InterviewStart builds the opening-question prompt for a mock interview.
func (b *PromptBuilder) InterviewStart(jobTitle, jobDescription string) types.BuiltPrompt {
	return types.BuiltPrompt{
		Feature: types.FeatureMockInterview,
		User:    fmt.Sprintf(b.prompts.UserPrompts.InterviewStart, jobTitle, jobDescription, jobTitle),
	}
}

// InterviewTurn builds the evaluate-and-continue prompt for a candidate
// response. The template is self-contained: it restates the opening and the
// prior answer, so no message history is attached.
func (b *PromptBuilder) InterviewTurn(jobTitle, jobDescription, response string) types.BuiltPrompt {
	return types.BuiltPrompt{
		Feature: types.FeatureMockInterview,
		User: fmt.Sprintf(b.prompts.UserPrompts.InterviewTurn,
			jobTitle, jobDescription, response, jobTitle, jobTitle),
	}
}

// BuildProfileText flattens a career profile into the labeled block the
// roadmap prompt expects. Missing fields read "Not specified"; when no
// profile is available the CV text stands in for experience.
func BuildProfileText(profile *types.Profile, targetRole, cvText string) string {
	orNotSpecified := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Not specified"
		}
		return s
	}

	var name, education, experience, goals, skills string
	if profile != nil {
		name = profile.Name
		education = profile.Education
		experience = profile.Experience
		goals = profile.Goals
		skills = strings.Join(profile.Skills, ", ")
	} else {
		experience = cvText
	}

	lines := []string{
		"Name: " + orNotSpecified(name),
		"Education: " + orNotSpecified(education),
		"Experience: " + orNotSpecified(experience),
		"Skills: " + orNotSpecified(skills),
		"Career Goals: " + orNotSpecified(goals),
		"Target Role: " + orNotSpecified(targetRole),
	}
	return strings.Join(lines, "\n")
}

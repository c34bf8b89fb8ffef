package config

import (
	"sync"
)

var (
	loadedPrompts   AllLoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	CVAnalysis string
	JobMatch   string
	Roadmap    string
	Chat       string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	CVAnalysis     string
	JobMatch       string
	Roadmap        string
	Chat           string
	InterviewStart string
	InterviewTurn  string
}

// OperationLoadedPrompts holds loaded prompts for a specific operation
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global     LoadedPrompts
	CVAnalysis OperationLoadedPrompts
	JobMatch   OperationLoadedPrompts
	Roadmap    OperationLoadedPrompts
	Chat       OperationLoadedPrompts
	Interview  OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an
// operation type. Per-field, operation-specific file content takes
// precedence over globally loaded content.
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()

	global := OperationLoadedPrompts{
		SystemPrompts: loadedPrompts.Global.SystemPrompts,
		UserPrompts:   loadedPrompts.Global.UserPrompts,
	}

	switch operationType {
	case "cvAnalysis":
		return mergeLoadedPrompts(loadedPrompts.CVAnalysis, global)
	case "jobMatch":
		return mergeLoadedPrompts(loadedPrompts.JobMatch, global)
	case "roadmap":
		return mergeLoadedPrompts(loadedPrompts.Roadmap, global)
	case "chat":
		return mergeLoadedPrompts(loadedPrompts.Chat, global)
	case "interview":
		return mergeLoadedPrompts(loadedPrompts.Interview, global)
	default:
		return global
	}
}

// mergeLoadedPrompts fills empty fields of op from fallback
func mergeLoadedPrompts(op, fallback OperationLoadedPrompts) OperationLoadedPrompts {
	fill := func(target *string, alt string) {
		if *target == "" {
			*target = alt
		}
	}

	fill(&op.SystemPrompts.CVAnalysis, fallback.SystemPrompts.CVAnalysis)
	fill(&op.SystemPrompts.JobMatch, fallback.SystemPrompts.JobMatch)
	fill(&op.SystemPrompts.Roadmap, fallback.SystemPrompts.Roadmap)
	fill(&op.SystemPrompts.Chat, fallback.SystemPrompts.Chat)
	fill(&op.UserPrompts.CVAnalysis, fallback.UserPrompts.CVAnalysis)
	fill(&op.UserPrompts.JobMatch, fallback.UserPrompts.JobMatch)
	fill(&op.UserPrompts.Roadmap, fallback.UserPrompts.Roadmap)
	fill(&op.UserPrompts.Chat, fallback.UserPrompts.Chat)
	fill(&op.UserPrompts.InterviewStart, fallback.UserPrompts.InterviewStart)
	fill(&op.UserPrompts.InterviewTurn, fallback.UserPrompts.InterviewTurn)

	return op
}

// setLoadedPrompts replaces the loaded prompt set. Used on initial load and
// by the prompt file watcher on reload.
func setLoadedPrompts(all AllLoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = all
}

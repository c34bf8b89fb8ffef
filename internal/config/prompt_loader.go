package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file paths
// are specified, replacing the process-wide loaded prompt set.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var all AllLoadedPrompts

	// Global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &all.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &all.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Operation-specific prompts
	type opPrompts struct {
		name   string
		source *PromptConfig
		target *OperationLoadedPrompts
	}
	ops := []opPrompts{
		{"cvAnalysis", &c.AI.CVAnalysis.CustomPrompts, &all.CVAnalysis},
		{"jobMatch", &c.AI.JobMatch.CustomPrompts, &all.JobMatch},
		{"roadmap", &c.AI.Roadmap.CustomPrompts, &all.Roadmap},
		{"chat", &c.AI.Chat.CustomPrompts, &all.Chat},
		{"interview", &c.AI.Interview.CustomPrompts, &all.Interview},
	}
	for _, op := range ops {
		if err := c.loadSystemPromptsFromFiles(&op.source.SystemPrompts, &op.target.SystemPrompts); err != nil {
			return fmt.Errorf("failed to load %s system prompts: %w", op.name, err)
		}
		if err := c.loadUserPromptsFromFiles(&op.source.UserPrompts, &op.target.UserPrompts); err != nil {
			return fmt.Errorf("failed to load %s user prompts: %w", op.name, err)
		}
	}

	setLoadedPrompts(all)
	c.logPromptLoadingSummary(&all)

	return nil
}

// ReloadPrompts re-reads all configured prompt files. Called by the prompt
// file watcher when a file changes on disk.
func (c *Config) ReloadPrompts() error {
	return c.loadPromptsFromFiles()
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	entries := []struct {
		file      string
		operation string
		target    *string
	}{
		{prompts.CVAnalysisFile, "cvAnalysis", &target.CVAnalysis},
		{prompts.JobMatchFile, "jobMatch", &target.JobMatch},
		{prompts.RoadmapFile, "roadmap", &target.Roadmap},
		{prompts.ChatFile, "chat", &target.Chat},
	}

	for _, e := range entries {
		if e.file == "" {
			continue
		}
		content, err := c.loadPromptFromFile(e.file, "system", e.operation)
		if err != nil {
			return err
		}
		*e.target = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	entries := []struct {
		file      string
		operation string
		target    *string
	}{
		{prompts.CVAnalysisFile, "cvAnalysis", &target.CVAnalysis},
		{prompts.JobMatchFile, "jobMatch", &target.JobMatch},
		{prompts.RoadmapFile, "roadmap", &target.Roadmap},
		{prompts.ChatFile, "chat", &target.Chat},
		{prompts.InterviewStartFile, "interviewStart", &target.InterviewStart},
		{prompts.InterviewTurnFile, "interviewTurn", &target.InterviewTurn},
	}

	for _, e := range entries {
		if e.file == "" {
			continue
		}
		content, err := c.loadPromptFromFile(e.file, "user", e.operation)
		if err != nil {
			return err
		}
		*e.target = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// PromptFilePaths returns every configured prompt file path. The prompt file
// watcher registers each with fsnotify.
func (c *Config) PromptFilePaths() []string {
	var paths []string
	add := func(p string) {
		if p != "" {
			paths = append(paths, p)
		}
	}

	collect := func(pc *PromptConfig) {
		add(pc.SystemPrompts.CVAnalysisFile)
		add(pc.SystemPrompts.JobMatchFile)
		add(pc.SystemPrompts.RoadmapFile)
		add(pc.SystemPrompts.ChatFile)
		add(pc.UserPrompts.CVAnalysisFile)
		add(pc.UserPrompts.JobMatchFile)
		add(pc.UserPrompts.RoadmapFile)
		add(pc.UserPrompts.ChatFile)
		add(pc.UserPrompts.InterviewStartFile)
		add(pc.UserPrompts.InterviewTurnFile)
	}

	collect(&c.AI.CustomPrompts)
	collect(&c.AI.CVAnalysis.CustomPrompts)
	collect(&c.AI.JobMatch.CustomPrompts)
	collect(&c.AI.Roadmap.CustomPrompts)
	collect(&c.AI.Chat.CustomPrompts)
	collect(&c.AI.Interview.CustomPrompts)

	return paths
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, filePath := range c.PromptFilePaths() {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid prompt file path: %s", filePath))
			continue
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("prompt file not found: %s", absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary(all *AllLoadedPrompts) {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0
	checks := []struct {
		content string
		message string
	}{
		{all.Global.SystemPrompts.CVAnalysis, "[CONFIG] Global system cvAnalysis prompt: loaded from file"},
		{all.Global.SystemPrompts.JobMatch, "[CONFIG] Global system jobMatch prompt: loaded from file"},
		{all.Global.SystemPrompts.Roadmap, "[CONFIG] Global system roadmap prompt: loaded from file"},
		{all.Global.SystemPrompts.Chat, "[CONFIG] Global system chat prompt: loaded from file"},
		{all.Global.UserPrompts.CVAnalysis, "[CONFIG] Global user cvAnalysis prompt: loaded from file"},
		{all.Global.UserPrompts.JobMatch, "[CONFIG] Global user jobMatch prompt: loaded from file"},
		{all.Global.UserPrompts.Roadmap, "[CONFIG] Global user roadmap prompt: loaded from file"},
		{all.Global.UserPrompts.Chat, "[CONFIG] Global user chat prompt: loaded from file"},
		{all.Global.UserPrompts.InterviewStart, "[CONFIG] Global user interviewStart prompt: loaded from file"},
		{all.Global.UserPrompts.InterviewTurn, "[CONFIG] Global user interviewTurn prompt: loaded from file"},
		{all.CVAnalysis.SystemPrompts.CVAnalysis, "[CONFIG] cvAnalysis-specific system prompt: loaded from file"},
		{all.CVAnalysis.UserPrompts.CVAnalysis, "[CONFIG] cvAnalysis-specific user prompt: loaded from file"},
		{all.JobMatch.SystemPrompts.JobMatch, "[CONFIG] jobMatch-specific system prompt: loaded from file"},
		{all.JobMatch.UserPrompts.JobMatch, "[CONFIG] jobMatch-specific user prompt: loaded from file"},
		{all.Roadmap.SystemPrompts.Roadmap, "[CONFIG] roadmap-specific system prompt: loaded from file"},
		{all.Roadmap.UserPrompts.Roadmap, "[CONFIG] roadmap-specific user prompt: loaded from file"},
		{all.Chat.SystemPrompts.Chat, "[CONFIG] chat-specific system prompt: loaded from file"},
		{all.Chat.UserPrompts.Chat, "[CONFIG] chat-specific user prompt: loaded from file"},
		{all.Interview.UserPrompts.InterviewStart, "[CONFIG] interview-specific start prompt: loaded from file"},
		{all.Interview.UserPrompts.InterviewTurn, "[CONFIG] interview-specific turn prompt: loaded from file"},
	}

	for _, check := range checks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}

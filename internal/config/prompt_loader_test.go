package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Create test prompt files
	systemPromptContent := "Test system prompt for CV analysis"
	userPromptContent := "Test user prompt template: %s and %s"

	systemPromptFile := filepath.Join(tempDir, "system.cvanalysis.md")
	userPromptFile := filepath.Join(tempDir, "user.cvanalysis.md")

	if err := os.WriteFile(systemPromptFile, []byte(systemPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test system prompt file: %v", err)
	}

	if err := os.WriteFile(userPromptFile, []byte(userPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test user prompt file: %v", err)
	}

	// Create test config
	config := &Config{
		AI: AIConfig{
			CVAnalysis: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						CVAnalysisFile: systemPromptFile,
					},
					UserPrompts: UserPrompts{
						CVAnalysisFile: userPromptFile,
					},
				},
			},
		},
	}

	// Test file loading
	err := config.loadPromptsFromFiles()
	if err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	// Verify content was loaded into global loadedPrompts
	loadedOps := GetPromptsForOperation("cvAnalysis")

	if loadedOps.SystemPrompts.CVAnalysis != systemPromptContent {
		t.Errorf("Expected loaded system prompt content '%s', got '%s'",
			systemPromptContent, loadedOps.SystemPrompts.CVAnalysis)
	}

	if loadedOps.UserPrompts.CVAnalysis != userPromptContent {
		t.Errorf("Expected loaded user prompt content '%s', got '%s'",
			userPromptContent, loadedOps.UserPrompts.CVAnalysis)
	}

	// Verify file paths are preserved (immutable design)
	if config.AI.CVAnalysis.CustomPrompts.SystemPrompts.CVAnalysisFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}

	if config.AI.CVAnalysis.CustomPrompts.UserPrompts.CVAnalysisFile != userPromptFile {
		t.Error("Expected user prompt file path to be preserved")
	}
}

func TestLoadInterviewPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	startContent := "Start interview for %s with description %s as %s"
	turnContent := "Continue %s interview: %s %s %s %s"

	startFile := filepath.Join(tempDir, "user.interview.start.md")
	turnFile := filepath.Join(tempDir, "user.interview.turn.md")

	if err := os.WriteFile(startFile, []byte(startContent), 0600); err != nil {
		t.Fatalf("Failed to create start prompt file: %v", err)
	}
	if err := os.WriteFile(turnFile, []byte(turnContent), 0600); err != nil {
		t.Fatalf("Failed to create turn prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Interview: OperationAIConfig{
				CustomPrompts: PromptConfig{
					UserPrompts: UserPrompts{
						InterviewStartFile: startFile,
						InterviewTurnFile:  turnFile,
					},
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loadedOps := GetPromptsForOperation("interview")

	if loadedOps.UserPrompts.InterviewStart != startContent {
		t.Errorf("Expected loaded start prompt '%s', got '%s'",
			startContent, loadedOps.UserPrompts.InterviewStart)
	}
	if loadedOps.UserPrompts.InterviewTurn != turnContent {
		t.Errorf("Expected loaded turn prompt '%s', got '%s'",
			turnContent, loadedOps.UserPrompts.InterviewTurn)
	}
}

func TestValidatePromptFiles(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Create a valid test file
	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	// Test with valid file
	config := &Config{
		AI: AIConfig{
			CVAnalysis: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						CVAnalysisFile: validFile,
					},
				},
			},
		},
	}

	err := config.validatePromptFiles()
	if err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	// Test with non-existent file
	config.AI.CVAnalysis.CustomPrompts.SystemPrompts.CVAnalysisFile = filepath.Join(tempDir, "nonexistent.md")

	err = config.validatePromptFiles()
	if err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Test with valid file
	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	config := &Config{}
	loadedContent, err := config.loadPromptFromFile(testFile, "system", "cvAnalysis")
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}

	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	// Test with empty file
	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte(""), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	_, err = config.loadPromptFromFile(emptyFile, "system", "cvAnalysis")
	if err == nil {
		t.Error("Expected error for empty file")
	}

	// Test with non-existent file
	_, err = config.loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", "cvAnalysis")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestPromptFileIntegration(t *testing.T) {
	// Create temporary directory and config file
	tempDir := t.TempDir()

	// Create test prompt files
	systemPrompt := "Custom system prompt for testing"
	userPrompt := "Custom user prompt: %s %s"

	systemFile := filepath.Join(tempDir, "system.md")
	userFile := filepath.Join(tempDir, "user.md")

	if err := os.WriteFile(systemFile, []byte(systemPrompt), 0600); err != nil {
		t.Fatalf("Failed to create system prompt file: %v", err)
	}

	if err := os.WriteFile(userFile, []byte(userPrompt), 0600); err != nil {
		t.Fatalf("Failed to create user prompt file: %v", err)
	}

	// Create a minimal config that would load these files
	config := &Config{
		AI: AIConfig{
			Provider:    "openrouter",
			Model:       "test-model",
			BaseURL:     "https://example.test/api/v1",
			Timeout:     60 * time.Second,
			APIKey:      "test-key",
			Temperature: 0.7,
			JobMatch: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						JobMatchFile: systemFile,
					},
					UserPrompts: UserPrompts{
						JobMatchFile: userFile,
					},
				},
			},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "html"},
			MaxFileSize:      1024 * 1024,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}

	// Apply fallbacks (simulating the full config loading process)
	config.applyFallbacks()

	// Validate and load prompt files
	if err := config.validatePromptFiles(); err != nil {
		t.Fatalf("Prompt file validation failed: %v", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	// Verify the prompts were loaded correctly into the global store
	loadedOps := GetPromptsForOperation("jobMatch")

	if loadedOps.SystemPrompts.JobMatch != systemPrompt {
		t.Errorf("Expected system prompt '%s', got '%s'",
			systemPrompt, loadedOps.SystemPrompts.JobMatch)
	}

	if loadedOps.UserPrompts.JobMatch != userPrompt {
		t.Errorf("Expected user prompt '%s', got '%s'",
			userPrompt, loadedOps.UserPrompts.JobMatch)
	}

	// Verify the original config paths are preserved
	if config.AI.JobMatch.CustomPrompts.SystemPrompts.JobMatchFile != systemFile {
		t.Error("Expected system prompt file path to be preserved")
	}

	if config.AI.JobMatch.CustomPrompts.UserPrompts.JobMatchFile != userFile {
		t.Error("Expected user prompt file path to be preserved")
	}
}

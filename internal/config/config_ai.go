package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.BaseURL == "" {
		opCfg.BaseURL = c.AI.BaseURL
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxTokens == nil {
		opCfg.MaxTokens = &c.AI.MaxTokens
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetCVAnalysisConfig returns the AI configuration for CV analysis with fallback to global config
func (c *Config) GetCVAnalysisConfig() OperationAIConfig {
	config := c.AI.CVAnalysis
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.CVAnalysis == "" {
		config.CustomPrompts.SystemPrompts.CVAnalysis = c.AI.CustomPrompts.SystemPrompts.CVAnalysis
	}
	if config.CustomPrompts.UserPrompts.CVAnalysis == "" {
		config.CustomPrompts.UserPrompts.CVAnalysis = c.AI.CustomPrompts.UserPrompts.CVAnalysis
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.CVAnalysisFile == "" {
		config.CustomPrompts.SystemPrompts.CVAnalysisFile = c.AI.CustomPrompts.SystemPrompts.CVAnalysisFile
	}
	if config.CustomPrompts.UserPrompts.CVAnalysisFile == "" {
		config.CustomPrompts.UserPrompts.CVAnalysisFile = c.AI.CustomPrompts.UserPrompts.CVAnalysisFile
	}

	return config
}

// GetJobMatchConfig returns the AI configuration for job matching with fallback to global config
func (c *Config) GetJobMatchConfig() OperationAIConfig {
	config := c.AI.JobMatch
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.JobMatch == "" {
		config.CustomPrompts.SystemPrompts.JobMatch = c.AI.CustomPrompts.SystemPrompts.JobMatch
	}
	if config.CustomPrompts.UserPrompts.JobMatch == "" {
		config.CustomPrompts.UserPrompts.JobMatch = c.AI.CustomPrompts.UserPrompts.JobMatch
	}
	if config.CustomPrompts.SystemPrompts.JobMatchFile == "" {
		config.CustomPrompts.SystemPrompts.JobMatchFile = c.AI.CustomPrompts.SystemPrompts.JobMatchFile
	}
	if config.CustomPrompts.UserPrompts.JobMatchFile == "" {
		config.CustomPrompts.UserPrompts.JobMatchFile = c.AI.CustomPrompts.UserPrompts.JobMatchFile
	}

	return config
}

// GetRoadmapConfig returns the AI configuration for roadmap generation with fallback to global config
func (c *Config) GetRoadmapConfig() OperationAIConfig {
	config := c.AI.Roadmap
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Roadmap == "" {
		config.CustomPrompts.SystemPrompts.Roadmap = c.AI.CustomPrompts.SystemPrompts.Roadmap
	}
	if config.CustomPrompts.UserPrompts.Roadmap == "" {
		config.CustomPrompts.UserPrompts.Roadmap = c.AI.CustomPrompts.UserPrompts.Roadmap
	}
	if config.CustomPrompts.SystemPrompts.RoadmapFile == "" {
		config.CustomPrompts.SystemPrompts.RoadmapFile = c.AI.CustomPrompts.SystemPrompts.RoadmapFile
	}
	if config.CustomPrompts.UserPrompts.RoadmapFile == "" {
		config.CustomPrompts.UserPrompts.RoadmapFile = c.AI.CustomPrompts.UserPrompts.RoadmapFile
	}

	return config
}

// GetChatConfig returns the AI configuration for career chat with fallback to global config
func (c *Config) GetChatConfig() OperationAIConfig {
	config := c.AI.Chat
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.Chat == "" {
		config.CustomPrompts.SystemPrompts.Chat = c.AI.CustomPrompts.SystemPrompts.Chat
	}
	if config.CustomPrompts.UserPrompts.Chat == "" {
		config.CustomPrompts.UserPrompts.Chat = c.AI.CustomPrompts.UserPrompts.Chat
	}
	if config.CustomPrompts.SystemPrompts.ChatFile == "" {
		config.CustomPrompts.SystemPrompts.ChatFile = c.AI.CustomPrompts.SystemPrompts.ChatFile
	}
	if config.CustomPrompts.UserPrompts.ChatFile == "" {
		config.CustomPrompts.UserPrompts.ChatFile = c.AI.CustomPrompts.UserPrompts.ChatFile
	}

	return config
}

// GetInterviewConfig returns the AI configuration for mock interviews with fallback to global config
func (c *Config) GetInterviewConfig() OperationAIConfig {
	config := c.AI.Interview
	c.applyOperationDefaults(&config)

	if config.CustomPrompts.UserPrompts.InterviewStart == "" {
		config.CustomPrompts.UserPrompts.InterviewStart = c.AI.CustomPrompts.UserPrompts.InterviewStart
	}
	if config.CustomPrompts.UserPrompts.InterviewTurn == "" {
		config.CustomPrompts.UserPrompts.InterviewTurn = c.AI.CustomPrompts.UserPrompts.InterviewTurn
	}
	if config.CustomPrompts.UserPrompts.InterviewStartFile == "" {
		config.CustomPrompts.UserPrompts.InterviewStartFile = c.AI.CustomPrompts.UserPrompts.InterviewStartFile
	}
	if config.CustomPrompts.UserPrompts.InterviewTurnFile == "" {
		config.CustomPrompts.UserPrompts.InterviewTurnFile = c.AI.CustomPrompts.UserPrompts.InterviewTurnFile
	}

	return config
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}

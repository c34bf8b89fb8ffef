package cli

import (
	"fmt"

	"careerpilot/internal/ai"
	"careerpilot/internal/common"
	"careerpilot/internal/feature"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [cv-file]",
	Short: "Analyze a CV for ATS compatibility",
	Long: `Analyze a CV the way an applicant tracking system would. The command
takes the path to a CV file (plain text, PDF, or DOCX) and returns an ATS
score with detailed feedback on structure, keywords, and formatting.

Use --role to score the CV against a specific target role.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeRole   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or html")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Target role to score the CV against")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create the completion service for the CV analysis operation
	analyzeAIConfig := cfg.GetCVAnalysisConfig()
	aiService, err := ai.NewService(&analyzeAIConfig, "cvAnalysis", cfg.AI.Referer, cfg.AI.AppTitle, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	analyzer := feature.NewCVAnalyzer(aiService, cfg.Feature.MinCVLength, logger)

	createInput := func(contents []string) (types.CVAnalysisInput, error) {
		if len(contents) != 1 {
			return types.CVAnalysisInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.CVAnalysisInput{
			Role:   analyzeRole,
			CVText: contents[0],
		}, nil
	}

	logDetails := func(input types.CVAnalysisInput, cfg common.CommandConfig) {
		logger.Info("Starting CV analysis",
			"cv_chars", len(input.CVText),
			"role", input.Role,
			"output_format", cfg.OutputFormat)
	}

	err = common.RunFeatureCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzer.Analyze,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze CV: %w", err)
	}
	logger.Info("CV analysis completed successfully")
	return nil
}

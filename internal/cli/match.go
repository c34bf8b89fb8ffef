package cli

import (
	"fmt"

	"careerpilot/internal/ai"
	"careerpilot/internal/common"
	"careerpilot/internal/feature"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [cv-file] [job-description-file]",
	Short: "Match a CV against a job description",
	Long: `Compare a CV against a job posting and report how well they fit.
The command takes two arguments: the path to the CV file and the path to
the job description file (plain text, PDF, or DOCX). The result is a match
score plus an analysis of overlapping and missing qualifications.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or html")

	// Add completion for format flag
	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create the completion service for the job match operation
	matchAIConfig := cfg.GetJobMatchConfig()
	aiService, err := ai.NewService(&matchAIConfig, "jobMatch", cfg.AI.Referer, cfg.AI.AppTitle, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	matcher := feature.NewJobMatcher(aiService, cfg.Feature.MinCVLength, logger)

	createInput := func(contents []string) (types.JobMatchInput, error) {
		if len(contents) != 2 {
			return types.JobMatchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.JobMatchInput{
			CVText:         contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.JobMatchInput, cfg common.CommandConfig) {
		logger.Info("Starting job match",
			"cv_chars", len(input.CVText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunFeatureCommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		createInput,
		matcher.Match,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match CV against job: %w", err)
	}
	logger.Info("Job match completed successfully")
	return nil
}

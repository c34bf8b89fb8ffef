package cli

import (
	"fmt"

	"careerpilot/internal/ai"
	"careerpilot/internal/common"
	"careerpilot/internal/feature"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap [cv-file]",
	Short: "Generate a skills roadmap toward a target role",
	Long: `Generate a personalized learning roadmap from your current experience
to a target role. The command takes the path to a CV file (plain text, PDF,
or DOCX) and requires --target-role. The roadmap lists the skills to build
and a suggested order to build them in.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if roadmapConfig.OutputFormat == "" {
			roadmapConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(roadmapConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRoadmap,
}

var (
	roadmapConfig     common.CommandConfig
	roadmapTargetRole string
)

func init() {
	roadmapCmd.Flags().StringVarP(&roadmapConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	roadmapCmd.Flags().StringVar(&roadmapConfig.OutputFormat, "format", "", "Output format: json, text, or html")
	roadmapCmd.Flags().StringVar(&roadmapTargetRole, "target-role", "", "Role the roadmap should lead to (required)")
	_ = roadmapCmd.MarkFlagRequired("target-role")

	// Add completion for format flag
	_ = roadmapCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRoadmap(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create the completion service for the roadmap operation
	roadmapAIConfig := cfg.GetRoadmapConfig()
	aiService, err := ai.NewService(&roadmapAIConfig, "roadmap", cfg.AI.Referer, cfg.AI.AppTitle, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	planner := feature.NewRoadmapPlanner(aiService, logger)

	createInput := func(contents []string) (types.SkillsRoadmapInput, error) {
		if len(contents) != 1 {
			return types.SkillsRoadmapInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.SkillsRoadmapInput{
			TargetRole: roadmapTargetRole,
			CVText:     contents[0],
		}, nil
	}

	logDetails := func(input types.SkillsRoadmapInput, cfg common.CommandConfig) {
		logger.Info("Starting roadmap generation",
			"target_role", input.TargetRole,
			"cv_chars", len(input.CVText),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunFeatureCommand(
		cmd.Context(),
		logger,
		roadmapConfig,
		args,
		createInput,
		planner.Plan,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate roadmap: %w", err)
	}
	logger.Info("Roadmap generation completed successfully")
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"careerpilot/internal/ai"
	"careerpilot/internal/common"
	"careerpilot/internal/feature"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var interviewCmd = &cobra.Command{
	Use:   "interview [job-description-file]",
	Short: "Run an interactive mock interview",
	Long: `Run a mock interview for a specific opening. The command takes the
path to a job description file (plain text, PDF, or DOCX) and requires
--job-title. The interviewer opens with a question; each answer you type
is scored and followed by the next question. Type 'exit' or press Ctrl-D
to end the interview.`,
	Args: cobra.ExactArgs(1),
	RunE: runInterview,
}

var interviewJobTitle string

func init() {
	interviewCmd.Flags().StringVar(&interviewJobTitle, "job-title", "", "Title of the role being interviewed for (required)")
	_ = interviewCmd.MarkFlagRequired("job-title")
}

func runInterview(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	interviewAIConfig := cfg.GetInterviewConfig()
	aiService, err := ai.NewService(&interviewAIConfig, "interview", cfg.AI.Referer, cfg.AI.AppTitle, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	sessions := feature.NewSessionStore(cfg.Feature.SessionTTL, logger)
	defer sessions.Close()

	interviewer := feature.NewInterviewer(aiService, sessions, cfg.Feature.HistoryMaxTurns, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting mock interview for %q. Type 'exit' to quit.\n\n", interviewJobTitle)

	opening, err := interviewer.Start(cmd.Context(), types.InterviewStartInput{
		JobTitle:       interviewJobTitle,
		JobDescription: contents[0],
	})
	if err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}
	fmt.Fprintf(out, "%s\n\n", opening.Message)

	sessionID := opening.SessionID
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if answer == "exit" || answer == "quit" {
			break
		}

		turn, err := interviewer.Turn(cmd.Context(), types.InterviewTurnInput{
			SessionID: sessionID,
			Response:  answer,
		})
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s\n\n", turn.Message)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(out, "Interview ended.")
	return nil
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"careerpilot/internal/ai"
	"careerpilot/internal/feature"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive career chat session",
	Long: `Start an interactive career advisor session. Each line you type is
sent as a question; the conversation history carries across turns within
the session. Type 'exit' or press Ctrl-D to end the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	chatAIConfig := cfg.GetChatConfig()
	aiService, err := ai.NewService(&chatAIConfig, "chat", cfg.AI.Referer, cfg.AI.AppTitle, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = aiService.Close() }()

	sessions := feature.NewSessionStore(cfg.Feature.SessionTTL, logger)
	defer sessions.Close()

	advisor := feature.NewChatAdvisor(aiService, sessions, cfg.Feature.HistoryMaxTurns, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Career chat session started. Type 'exit' to quit.")

	var sessionID string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		reply, err := advisor.Chat(cmd.Context(), types.CareerChatInput{
			SessionID: sessionID,
			Question:  question,
		})
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		sessionID = reply.SessionID

		fmt.Fprintf(out, "\n%s\n\n", reply.Answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(out, "Session ended.")
	return nil
}

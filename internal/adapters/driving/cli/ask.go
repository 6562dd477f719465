package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question",
	Long: `Runs one conversational turn in the active chat and prints the answer.

The question is classified first: small talk gets a direct reply,
document questions trigger retrieval across the chat's enabled channels,
and code-change requests go through the suggestion workflow. The answer
streams to stdout as it is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil || chatService == nil {
		return errors.New("assistant not configured")
	}

	ctx := cmd.Context()
	chat, err := chatService.Active(ctx)
	if err != nil {
		return fmt.Errorf("resolve active chat: %w", err)
	}

	msg, err := assistantService.Send(ctx, chat.ID, args[0], func(delta string) {
		cmd.Print(delta)
	})
	if err != nil {
		return fmt.Errorf("turn failed: %w", err)
	}
	cmd.Println()

	printReplyDetails(cmd, msg)
	return nil
}

// printReplyDetails prints sources, citations and any attached
// suggestion after the streamed answer text.
func printReplyDetails(cmd *cobra.Command, msg *domain.Message) {
	if msg == nil {
		return
	}

	if len(msg.Context) > 0 {
		cmd.Println("\nSources:")
		for i := range msg.Context {
			hit := &msg.Context[i]
			cmd.Printf("  [%d] %s (%s, %.4f)\n", i+1, displayPath(&hit.SearchHit), hit.Channel, hit.FusedScore)
		}
	}

	if len(msg.Citations) > 0 {
		cmd.Println("\nCitations:")
		for i, c := range msg.Citations {
			if c.Title != "" {
				cmd.Printf("  [%d] %s — %s\n", i+1, c.Title, c.URI)
			} else {
				cmd.Printf("  [%d] %s\n", i+1, c.URI)
			}
		}
	}

	if msg.Suggestion != nil {
		printSuggestion(cmd, msg.Suggestion)
		if msg.Suggestion.Status == domain.SuggestionPending {
			cmd.Println("\nRun 'docent suggest accept' to apply or 'docent suggest reject' to discard.")
		}
	}

	if msg.Err != "" {
		cmd.Printf("\nWarning: generation ended early: %s\n", msg.Err)
	}
}

// displayPath prefers the path, falling back to file name then ID.
func displayPath(hit *domain.SearchHit) string {
	if hit.Path != "" {
		return hit.Path
	}
	if hit.FileName != "" {
		return hit.FileName
	}
	return hit.FileID
}

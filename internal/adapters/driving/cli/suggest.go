package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// suggestPreviewLines bounds the proposed-content preview in the terminal.
const suggestPreviewLines = 20

var suggestCmd = &cobra.Command{
	Use:   "suggest [request]",
	Short: "Request a code suggestion",
	Long: `Runs the code-suggestion workflow against the cloud channel: retrieve
relevant editable files, ask the model for a structured single-file edit
and attach it to the active chat as a pending suggestion.

Nothing is written until the suggestion is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

var suggestAcceptCmd = &cobra.Command{
	Use:   "accept [message-id]",
	Short: "Apply a pending suggestion",
	Long: `Applies a pending suggestion: writes the proposed content to the file
store and records the edit. Without a message ID the most recent pending
suggestion in the active chat is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuggestAccept,
}

var suggestRejectCmd = &cobra.Command{
	Use:   "reject [message-id]",
	Short: "Discard a pending suggestion",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSuggestReject,
}

func init() {
	suggestCmd.AddCommand(suggestAcceptCmd)
	suggestCmd.AddCommand(suggestRejectCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestionService == nil || chatService == nil {
		return errors.New("suggestion service not configured")
	}

	ctx := cmd.Context()
	chat, err := chatService.Active(ctx)
	if err != nil {
		return fmt.Errorf("resolve active chat: %w", err)
	}

	msg, err := suggestionService.Suggest(ctx, chat.ID, args[0])
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	if msg.Suggestion == nil {
		// Terminal conversational outcome: explanation, no proposal.
		cmd.Println(msg.Content)
		return nil
	}

	printSuggestion(cmd, msg.Suggestion)
	cmd.Println("\nRun 'docent suggest accept' to apply or 'docent suggest reject' to discard.")
	return nil
}

func runSuggestAccept(cmd *cobra.Command, args []string) error {
	return decideSuggestion(cmd, args, true)
}

func runSuggestReject(cmd *cobra.Command, args []string) error {
	return decideSuggestion(cmd, args, false)
}

func decideSuggestion(cmd *cobra.Command, args []string, accept bool) error {
	if suggestionService == nil || chatService == nil {
		return errors.New("suggestion service not configured")
	}

	ctx := cmd.Context()
	chat, err := chatService.Active(ctx)
	if err != nil {
		return fmt.Errorf("resolve active chat: %w", err)
	}

	messageID := ""
	if len(args) > 0 {
		messageID = args[0]
	} else {
		messageID, err = latestPendingSuggestion(chat)
		if err != nil {
			return err
		}
	}

	if accept {
		suggestion, err := suggestionService.Accept(ctx, chat.ID, messageID)
		if err != nil {
			return fmt.Errorf("accept suggestion: %w", err)
		}
		if suggestion.Persisted {
			cmd.Printf("Applied suggestion to %s\n", suggestion.File.Path)
		} else {
			cmd.Printf("Accepted suggestion for %s; the source is read-only so the change is recorded locally only\n",
				suggestion.File.Path)
		}
		return nil
	}

	suggestion, err := suggestionService.Reject(ctx, chat.ID, messageID)
	if err != nil {
		return fmt.Errorf("reject suggestion: %w", err)
	}
	cmd.Printf("Rejected suggestion for %s\n", suggestion.File.Path)
	return nil
}

// latestPendingSuggestion scans the chat backwards for the most recent
// message carrying an undecided suggestion.
func latestPendingSuggestion(chat *domain.Chat) (string, error) {
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		s := chat.Messages[i].Suggestion
		if s != nil && s.Status == domain.SuggestionPending {
			return chat.Messages[i].ID, nil
		}
	}
	return "", errors.New("no pending suggestion in the active chat")
}

// printSuggestion renders a suggestion with a bounded content preview.
func printSuggestion(cmd *cobra.Command, s *domain.CodeSuggestion) {
	cmd.Printf("\nSuggested edit to %s [%s]\n", s.File.Path, s.Status)
	if s.Rationale != "" {
		cmd.Printf("Rationale: %s\n", s.Rationale)
	}

	lines := strings.Split(s.ProposedContent, "\n")
	preview := lines
	truncated := false
	if len(preview) > suggestPreviewLines {
		preview = preview[:suggestPreviewLines]
		truncated = true
	}

	cmd.Println("--- proposed content ---")
	for _, line := range preview {
		cmd.Println(line)
	}
	if truncated {
		cmd.Printf("... (%d more lines)\n", len(lines)-suggestPreviewLines)
	}
	cmd.Println("------------------------")
}

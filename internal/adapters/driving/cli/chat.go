package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat session",
	Long: `Launch the interactive terminal chat.

Answers stream in as they are generated; retrieval sources and citations
are shown with each reply, and code suggestions can be accepted or
rejected inline.

Controls:
  enter    - Send message
  a / r    - Accept / reject a pending suggestion
  ctrl+n   - New chat
  ctrl+l   - Switch chat
  pgup/pgdn- Scroll history
  esc      - Back / Cancel
  ctrl+c   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Recover with a stack trace so TUI panics are diagnosable.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat session: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Assistant:  assistantService,
		Chat:       chatService,
		Suggestion: suggestionService,
		File:       fileService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session error: %w", err)
	}
	return nil
}

// Package cli provides the cobra command tree for the docent CLI.
// Commands are thin: they parse flags, call driving ports and format
// output. All orchestration lives in the core services.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
	"github.com/docent-labs/docent-cli/internal/logger"
)

// version is the CLI version, overridden at build time via ldflags.
var version = "dev"

// Driving ports injected by the composition root before Execute.
var (
	assistantService  driving.AssistantService
	chatService       driving.ChatService
	searchService     driving.SearchService
	suggestionService driving.SuggestionService
	fileService       driving.FileService
	configStore       driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Conversational assistant for your documents",
	Long: `Docent is a conversational assistant over your document sources.

Ask questions in plain language and docent classifies the intent, searches
the enabled channels (cloud index, local files, Google Drive, GitHub),
fuses the results and streams a grounded answer. Code-change requests go
through a reviewed suggestion workflow with accept/reject.

Run 'docent chat' for the interactive session, or 'docent ask' for a
one-shot question.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}

// Services aggregates the driving ports the command tree depends on.
type Services struct {
	Assistant  driving.AssistantService
	Chat       driving.ChatService
	Search     driving.SearchService
	Suggestion driving.SuggestionService
	File       driving.FileService
	Config     driven.ConfigStore
}

// SetServices injects the driving ports. Called once by the composition
// root before Execute.
func SetServices(s Services) {
	assistantService = s.Assistant
	chatService = s.Chat
	searchService = s.Search
	suggestionService = s.Suggestion
	fileService = s.File
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context. Commands
// observe cancellation through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

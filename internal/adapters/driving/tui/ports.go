// Package tui provides the interactive chat session for docent.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant runs conversational turns.
	Assistant driving.AssistantService

	// Chat manages chat lifecycle and the active-chat pointer.
	Chat driving.ChatService

	// Suggestion decides pending code suggestions.
	Suggestion driving.SuggestionService

	// File provides file browsing for suggestion context.
	File driving.FileService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Suggestion and File are optional; the accept/reject keys simply
	// report unavailability without them.
	return nil
}

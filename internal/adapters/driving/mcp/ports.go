package mcp

import (
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant runs conversational turns for the ask tool.
	Assistant driving.AssistantService

	// Chat resolves the active chat and serves the chats resources.
	Chat driving.ChatService

	// Search provides fused retrieval for the search tool.
	Search driving.SearchService

	// Suggestion runs the code-suggestion workflow for the suggest tool.
	Suggestion driving.SuggestionService

	// File serves the per-channel file resources.
	File driving.FileService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Assistant, Chat, Suggestion and File are optional; the matching
	// tools and resources degrade to errors or empty listings.
	return nil
}

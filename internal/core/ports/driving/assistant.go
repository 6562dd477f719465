package driving

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// AssistantService runs conversational turns: classify intent, retrieve,
// and generate the answer for the chat.
type AssistantService interface {
	// Send runs one full turn for the chat and blocks until the model
	// message is complete (or terminally failed). onDelta, when non-nil,
	// receives text deltas in generation order as the answer streams.
	// The returned message is the model's reply, already appended to the
	// chat and persisted.
	Send(ctx context.Context, chatID, text string, onDelta func(delta string)) (*domain.Message, error)
}

// SearchService exposes direct retrieval across all configured channels,
// outside any chat. Used by the MCP search tool and the files commands.
type SearchService interface {
	// Search fans out to every configured channel, fuses the results and
	// returns at most limit hits.
	Search(ctx context.Context, query string, limit int) ([]domain.FusedHit, error)
}

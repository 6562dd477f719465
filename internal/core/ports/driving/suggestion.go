package driving

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// SuggestionService runs the code-suggestion workflow and its
// accept/reject lifecycle.
type SuggestionService interface {
	// Suggest runs cloud-only retrieval for the query, requests a
	// structured edit proposal and attaches the pending suggestion to a
	// new model message in the chat. Terminal conversational outcomes
	// (no editable files, unresolvable path, malformed proposal) are
	// reported as errors wrapping the matching domain sentinel.
	Suggest(ctx context.Context, chatID, query string) (*domain.Message, error)

	// Accept applies the pending suggestion on the message: updates the
	// file store, upserts the edited-file record and marks the
	// suggestion accepted. The returned suggestion's Persisted field
	// reports whether the backing store acknowledged the write.
	Accept(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error)

	// Reject marks the pending suggestion rejected. Nothing is mutated.
	Reject(ctx context.Context, chatID, messageID string) (*domain.CodeSuggestion, error)
}

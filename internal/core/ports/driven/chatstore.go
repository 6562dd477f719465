package driven

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// ChatStore persists chats and their messages. Implementations save the
// full chat record atomically on every mutation; the core treats the
// stored form as opaque.
type ChatStore interface {
	// SaveChat stores or replaces a chat with all its messages.
	SaveChat(ctx context.Context, chat *domain.Chat) error

	// GetChat retrieves a chat by ID, with messages in order.
	// Returns domain.ErrNotFound if it does not exist.
	GetChat(ctx context.Context, id string) (*domain.Chat, error)

	// ListChats returns all chats, most recently updated first, without
	// their message bodies.
	ListChats(ctx context.Context) ([]domain.Chat, error)

	// DeleteChat removes a chat and its messages.
	DeleteChat(ctx context.Context, id string) error

	// ActiveChatID returns the persisted active chat pointer, or empty.
	ActiveChatID(ctx context.Context) (string, error)

	// SetActiveChatID persists the active chat pointer.
	SetActiveChatID(ctx context.Context, id string) error

	// ModelSelection returns the persisted model selection, or empty.
	ModelSelection(ctx context.Context) (string, error)

	// SetModelSelection persists the model selection.
	SetModelSelection(ctx context.Context, model string) error

	// Close releases resources.
	Close() error
}

// EditStore persists edited-file records keyed by file ID.
type EditStore interface {
	// Get retrieves the record for a file.
	// Returns domain.ErrNotFound if no accepted edit exists.
	Get(ctx context.Context, fileID string) (*domain.EditedFile, error)

	// Upsert creates or updates a record. Implementations must preserve
	// an existing record's OriginalContent; only CurrentContent, Durable
	// and UpdatedAt are replaced on update.
	Upsert(ctx context.Context, record *domain.EditedFile) error

	// List returns all records, most recently updated first.
	List(ctx context.Context) ([]domain.EditedFile, error)
}

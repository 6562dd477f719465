package driving

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// ChatService manages chat lifecycle and the active-chat pointer.
type ChatService interface {
	// Create creates and persists a new chat with the given channel
	// configuration, and makes it the active chat.
	Create(ctx context.Context, channels []domain.Channel, grounding domain.GroundingOptions) (*domain.Chat, error)

	// Get retrieves a chat with its messages.
	Get(ctx context.Context, id string) (*domain.Chat, error)

	// List returns all chats, most recently updated first.
	List(ctx context.Context) ([]domain.Chat, error)

	// Delete removes a chat. Deleting the active chat clears the pointer.
	Delete(ctx context.Context, id string) error

	// Active returns the active chat, creating one with the default
	// channel configuration if none exists.
	Active(ctx context.Context) (*domain.Chat, error)

	// SetActive makes the given chat the active one.
	SetActive(ctx context.Context, id string) error
}

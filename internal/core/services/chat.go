package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// maxTitleLength bounds titles derived from the first user message.
const maxTitleLength = 60

// ChatService manages chat lifecycle and the active-chat pointer.
type ChatService struct {
	store            driven.ChatStore
	defaultChannels  []domain.Channel
	defaultGrounding domain.GroundingOptions
}

// NewChatService creates a new chat service. New chats created through
// Active use the given default channel configuration.
func NewChatService(
	store driven.ChatStore,
	defaultChannels []domain.Channel,
	defaultGrounding domain.GroundingOptions,
) *ChatService {
	return &ChatService{
		store:            store,
		defaultChannels:  defaultChannels,
		defaultGrounding: defaultGrounding,
	}
}

// Create creates and persists a new chat and makes it active.
func (s *ChatService) Create(
	ctx context.Context, channels []domain.Channel, grounding domain.GroundingOptions,
) (*domain.Chat, error) {
	for _, ch := range channels {
		if !ch.IsValid() {
			return nil, fmt.Errorf("%w: channel %q", domain.ErrInvalidInput, ch)
		}
	}

	now := time.Now()
	chat := &domain.Chat{
		ID:        uuid.NewString(),
		Channels:  channels,
		Grounding: grounding,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	if err := s.store.SetActiveChatID(ctx, chat.ID); err != nil {
		return nil, fmt.Errorf("set active chat: %w", err)
	}
	return chat, nil
}

// Get retrieves a chat with its messages.
func (s *ChatService) Get(ctx context.Context, id string) (*domain.Chat, error) {
	return s.store.GetChat(ctx, id)
}

// List returns all chats, most recently updated first.
func (s *ChatService) List(ctx context.Context) ([]domain.Chat, error) {
	return s.store.ListChats(ctx)
}

// Delete removes a chat. Deleting the active chat clears the pointer.
func (s *ChatService) Delete(ctx context.Context, id string) error {
	active, err := s.store.ActiveChatID(ctx)
	if err != nil {
		return fmt.Errorf("read active chat: %w", err)
	}
	if err := s.store.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if active == id {
		if err := s.store.SetActiveChatID(ctx, ""); err != nil {
			return fmt.Errorf("clear active chat: %w", err)
		}
	}
	return nil
}

// Active returns the active chat, creating one with the default channel
// configuration if none exists.
func (s *ChatService) Active(ctx context.Context) (*domain.Chat, error) {
	id, err := s.store.ActiveChatID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read active chat: %w", err)
	}
	if id != "" {
		chat, err := s.store.GetChat(ctx, id)
		if err == nil {
			return chat, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// Stale pointer: fall through and create a fresh chat.
	}
	return s.Create(ctx, s.defaultChannels, s.defaultGrounding)
}

// SetActive makes the given chat the active one.
func (s *ChatService) SetActive(ctx context.Context, id string) error {
	if _, err := s.store.GetChat(ctx, id); err != nil {
		return err
	}
	return s.store.SetActiveChatID(ctx, id)
}

// deriveTitle builds a chat title from the first user message.
func deriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength] + "..."
	}
	return title
}

// Package memory provides in-memory implementations of the storage
// ports. Used in tests and as the fallback when no database is wanted.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu       sync.RWMutex
	chats    map[string]domain.Chat
	activeID string
	model    string
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{chats: make(map[string]domain.Chat)}
}

// SaveChat stores or replaces a chat with all its messages.
func (s *ChatStore) SaveChat(_ context.Context, chat *domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *chat
	stored.Messages = append([]domain.Message(nil), chat.Messages...)
	s.chats[chat.ID] = stored
	return nil
}

// GetChat retrieves a chat by ID, with messages in order.
func (s *ChatStore) GetChat(_ context.Context, id string) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := chat
	out.Messages = append([]domain.Message(nil), chat.Messages...)
	return &out, nil
}

// ListChats returns all chats, most recently updated first, without
// message bodies.
func (s *ChatStore) ListChats(_ context.Context) ([]domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]domain.Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		chat.Messages = nil
		chats = append(chats, chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

// DeleteChat removes a chat and its messages.
func (s *ChatStore) DeleteChat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}

// ActiveChatID returns the active chat pointer, or empty.
func (s *ChatStore) ActiveChatID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, nil
}

// SetActiveChatID sets the active chat pointer.
func (s *ChatStore) SetActiveChatID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	return nil
}

// ModelSelection returns the persisted model selection, or empty.
func (s *ChatStore) ModelSelection(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, nil
}

// SetModelSelection persists the model selection.
func (s *ChatStore) SetModelSelection(_ context.Context, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	return nil
}

// Close releases resources.
func (s *ChatStore) Close() error {
	return nil
}

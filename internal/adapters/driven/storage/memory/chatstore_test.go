package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

func TestChatStore_SaveAndGet(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	chat := &domain.Chat{
		ID:    "chat-1",
		Title: "refunds",
		Messages: []domain.Message{
			{ID: "m1", Role: domain.RoleUser, Content: "hi"},
		},
	}
	require.NoError(t, store.SaveChat(ctx, chat))

	got, err := store.GetChat(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "refunds", got.Title)
	require.Len(t, got.Messages, 1)

	// The stored copy must not alias the caller's slice.
	got.Messages[0].Content = "mutated"
	again, err := store.GetChat(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Messages[0].Content)
}

func TestChatStore_GetMissing(t *testing.T) {
	store := NewChatStore()
	_, err := store.GetChat(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatStore_ListOrdersByUpdatedAt(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	older := &domain.Chat{ID: "a", UpdatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.Chat{ID: "b", UpdatedAt: time.Now()}
	require.NoError(t, store.SaveChat(ctx, older))
	require.NoError(t, store.SaveChat(ctx, newer))

	chats, err := store.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "b", chats[0].ID)
	assert.Nil(t, chats[0].Messages)
}

func TestChatStore_DeleteAndPointers(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChat(ctx, &domain.Chat{ID: "a"}))
	require.NoError(t, store.SetActiveChatID(ctx, "a"))
	require.NoError(t, store.SetModelSelection(ctx, "gemini-2.0-flash"))

	active, err := store.ActiveChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", active)

	model, err := store.ModelSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)

	require.NoError(t, store.DeleteChat(ctx, "a"))
	assert.ErrorIs(t, store.DeleteChat(ctx, "a"), domain.ErrNotFound)
}

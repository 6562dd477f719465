package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/adapters/driven/storage/memory"
	"github.com/docent-labs/docent-cli/internal/core/domain"
)

func TestChatService_CreateSetsActive(t *testing.T) {
	store := memory.NewChatStore()
	svc := NewChatService(store, []domain.Channel{domain.ChannelCloud}, domain.GroundingOptions{})
	ctx := context.Background()

	chat, err := svc.Create(ctx, []domain.Channel{domain.ChannelCloud, domain.ChannelLocal}, domain.GroundingOptions{WebSearch: true})
	require.NoError(t, err)
	assert.NotEmpty(t, chat.ID)

	active, err := store.ActiveChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, active)
}

func TestChatService_CreateRejectsUnknownChannel(t *testing.T) {
	svc := NewChatService(memory.NewChatStore(), nil, domain.GroundingOptions{})

	_, err := svc.Create(context.Background(), []domain.Channel{"dropbox"}, domain.GroundingOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_ActiveCreatesOnDemand(t *testing.T) {
	store := memory.NewChatStore()
	svc := NewChatService(store, []domain.Channel{domain.ChannelLocal}, domain.GroundingOptions{})
	ctx := context.Background()

	chat, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Channel{domain.ChannelLocal}, chat.Channels)

	// A second call returns the same chat, not a new one.
	again, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)
}

func TestChatService_DeleteClearsActivePointer(t *testing.T) {
	store := memory.NewChatStore()
	svc := NewChatService(store, nil, domain.GroundingOptions{})
	ctx := context.Background()

	chat, err := svc.Create(ctx, []domain.Channel{domain.ChannelCloud}, domain.GroundingOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, chat.ID))

	active, err := store.ActiveChatID(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestChatService_SetActiveValidates(t *testing.T) {
	svc := NewChatService(memory.NewChatStore(), nil, domain.GroundingOptions{})

	err := svc.SetActive(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "what is the refund policy", deriveTitle("what is  the\nrefund policy"))

	long := deriveTitle("this question goes on and on and on and keeps going well past the limit")
	assert.LessOrEqual(t, len(long), maxTitleLength+3)
	assert.Contains(t, long, "...")
}

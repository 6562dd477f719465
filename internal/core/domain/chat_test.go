package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChat_ChannelEnabled(t *testing.T) {
	chat := &Chat{Channels: []Channel{ChannelCloud, ChannelLocal}}

	assert.True(t, chat.ChannelEnabled(ChannelCloud))
	assert.True(t, chat.ChannelEnabled(ChannelLocal))
	assert.False(t, chat.ChannelEnabled(ChannelDrive))
}

func TestChat_LastMessage(t *testing.T) {
	chat := &Chat{}
	assert.Nil(t, chat.LastMessage())

	chat.Messages = []Message{
		{ID: "m1", Role: RoleUser},
		{ID: "m2", Role: RoleModel},
	}
	last := chat.LastMessage()
	assert.NotNil(t, last)
	assert.Equal(t, "m2", last.ID)

	// The returned pointer aliases the slice element so streaming
	// appends land in the chat itself.
	last.Content = "partial"
	assert.Equal(t, "partial", chat.Messages[1].Content)
}

func TestChat_RetrievalActive(t *testing.T) {
	assert.False(t, (&Chat{}).RetrievalActive())
	assert.True(t, (&Chat{Channels: []Channel{ChannelCloud}}).RetrievalActive())
	assert.True(t, (&Chat{Grounding: GroundingOptions{WebSearch: true}}).RetrievalActive())
}

func TestIntent_IsValid(t *testing.T) {
	assert.True(t, IntentChitChat.IsValid())
	assert.True(t, IntentQueryDocuments.IsValid())
	assert.True(t, IntentGenerateCode.IsValid())
	assert.False(t, Intent("SUMMARISE").IsValid())
	assert.False(t, Intent("").IsValid())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannel_IsValid(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		valid   bool
	}{
		{"cloud", ChannelCloud, true},
		{"local", ChannelLocal, true},
		{"drive", ChannelDrive, true},
		{"github", ChannelGitHub, true},
		{"empty", Channel(""), false},
		{"unknown", Channel("dropbox"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.channel.IsValid())
		})
	}
}

func TestChannel_SupportsUpdate(t *testing.T) {
	assert.True(t, ChannelCloud.SupportsUpdate())
	assert.True(t, ChannelLocal.SupportsUpdate())
	assert.False(t, ChannelDrive.SupportsUpdate())
	assert.False(t, ChannelGitHub.SupportsUpdate())
}

func TestChannel_Description(t *testing.T) {
	for _, ch := range []Channel{ChannelCloud, ChannelLocal, ChannelDrive, ChannelGitHub} {
		assert.NotEqual(t, unknownDescription, ch.Description())
	}
	assert.Equal(t, unknownDescription, Channel("bogus").Description())
}

func TestGroundingOptions_Any(t *testing.T) {
	assert.False(t, GroundingOptions{}.Any())
	assert.True(t, GroundingOptions{WebSearch: true}.Any())
	assert.True(t, GroundingOptions{Maps: true}.Any())
	assert.True(t, GroundingOptions{WebSearch: true, Maps: true}.Any())
}

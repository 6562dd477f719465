package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

func TestNewChannel_RequiresAccessToken(t *testing.T) {
	_, err := NewChannel(context.Background(), Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
}

func TestChannel_ImplementsInterfaces(t *testing.T) {
	var _ driven.SearchChannel = (*Channel)(nil)
	var _ driven.FileStore = (*Channel)(nil)
}

func TestChannel_Identity(t *testing.T) {
	ch := &Channel{}

	assert.Equal(t, domain.ChannelDrive, ch.Name())
	assert.Equal(t, domain.ChannelDrive, ch.Channel())
	assert.True(t, ch.ReadOnly())
}

func TestUpdateContent_ReadOnly(t *testing.T) {
	ch := &Channel{}

	err := ch.UpdateContent(context.Background(), domain.FileRef{ID: "f1"}, "content")

	require.ErrorIs(t, err, domain.ErrReadOnlyChannel)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, "plain", escapeQuery("plain"))
	assert.Equal(t, `what\'s new`, escapeQuery("what's new"))
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, "/report.txt", filePath(&drive.File{Name: "report.txt"}))
	assert.Equal(t, "/folder-1/report.txt", filePath(&drive.File{
		Name:    "report.txt",
		Parents: []string{"folder-1", "folder-2"},
	}))
}

func TestIsTextMime(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain", true},
		{"text/markdown", true},
		{"application/json", true},
		{"application/x-yaml", true},
		{"image/png", false},
		{"application/pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, isTextMime(tt.mimeType))
		})
	}
}

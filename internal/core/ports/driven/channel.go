package driven

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// SearchChannel is one independent search backend. Channels never panic
// out of Search; failures are returned and converted at the call site
// into sticky channel-disabled state for the conversation.
type SearchChannel interface {
	// Name identifies the channel.
	Name() domain.Channel

	// Search returns the channel's results for the query, ordered by
	// descending relevance, at most limit hits.
	Search(ctx context.Context, query string, limit int) (domain.RankedList, error)

	// Close releases resources.
	Close() error
}

// FileStore provides file listing and content access for one channel.
type FileStore interface {
	// Channel identifies the channel this store belongs to.
	Channel() domain.Channel

	// ListFiles returns all files known to the channel.
	ListFiles(ctx context.Context) ([]domain.FileRef, error)

	// GetContent returns the current content of a file.
	GetContent(ctx context.Context, ref domain.FileRef) (string, error)

	// UpdateContent replaces a file's content. Read-only stores return
	// domain.ErrReadOnlyChannel.
	UpdateContent(ctx context.Context, ref domain.FileRef, content string) error

	// ReadOnly reports whether UpdateContent is supported.
	ReadOnly() bool
}

package driving

import (
	"context"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

// FileService provides file browsing across configured channels.
type FileService interface {
	// List returns the files known to a channel.
	List(ctx context.Context, ch domain.Channel) ([]domain.FileRef, error)

	// Content returns a file's current content, reflecting any accepted
	// edits. The file is looked up by ID, exact path, then basename.
	Content(ctx context.Context, ch domain.Channel, idOrPath string) (string, error)

	// Edits returns all edited-file records, most recent first.
	Edits(ctx context.Context) ([]domain.EditedFile, error)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/ports/driving"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// FileService provides file browsing across the configured channels,
// layering accepted edits over store content.
type FileService struct {
	stores map[domain.Channel]driven.FileStore
	edits  driven.EditStore
}

// NewFileService creates a new file service.
func NewFileService(stores map[domain.Channel]driven.FileStore, edits driven.EditStore) *FileService {
	return &FileService{stores: stores, edits: edits}
}

// List returns the files known to a channel.
func (s *FileService) List(ctx context.Context, ch domain.Channel) ([]domain.FileRef, error) {
	store, ok := s.stores[ch]
	if !ok {
		return nil, fmt.Errorf("%w: no file store for channel %q", domain.ErrNotFound, ch)
	}
	return store.ListFiles(ctx)
}

// Content returns a file's current content. An accepted edit's content
// wins over the store's copy, so the view reflects the edit history.
func (s *FileService) Content(ctx context.Context, ch domain.Channel, idOrPath string) (string, error) {
	store, ok := s.stores[ch]
	if !ok {
		return "", fmt.Errorf("%w: no file store for channel %q", domain.ErrNotFound, ch)
	}

	files, err := store.ListFiles(ctx)
	if err != nil {
		return "", fmt.Errorf("list files: %w", err)
	}
	ref, ok := findFile(files, idOrPath)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNotFound, idOrPath)
	}

	if s.edits != nil {
		record, err := s.edits.Get(ctx, ref.ID)
		if err == nil {
			return record.CurrentContent, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}
	return store.GetContent(ctx, ref)
}

// Edits returns all edited-file records, most recent first.
func (s *FileService) Edits(ctx context.Context) ([]domain.EditedFile, error) {
	if s.edits == nil {
		return nil, nil
	}
	return s.edits.List(ctx)
}

// findFile looks a file up by ID, exact path, then basename.
func findFile(files []domain.FileRef, idOrPath string) (domain.FileRef, bool) {
	for _, f := range files {
		if f.ID == idOrPath || f.Path == idOrPath {
			return f, true
		}
	}
	base := path.Base(idOrPath)
	for _, f := range files {
		if f.Name == base || path.Base(f.Path) == base {
			return f, true
		}
	}
	return domain.FileRef{}, false
}

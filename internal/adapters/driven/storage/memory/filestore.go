package memory

import (
	"context"
	"sync"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore,
// used in tests and as the content side of the local channel.
type FileStore struct {
	mu       sync.RWMutex
	channel  domain.Channel
	readOnly bool
	files    map[string]domain.FileRef
	contents map[string]string
}

// NewFileStore creates a new in-memory file store for the channel.
func NewFileStore(channel domain.Channel) *FileStore {
	return &FileStore{
		channel:  channel,
		readOnly: !channel.SupportsUpdate(),
		files:    make(map[string]domain.FileRef),
		contents: make(map[string]string),
	}
}

// Put seeds a file and its content.
func (s *FileStore) Put(ref domain.FileRef, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref.Channel = s.channel
	s.files[ref.ID] = ref
	s.contents[ref.ID] = content
}

// Channel identifies the channel this store belongs to.
func (s *FileStore) Channel() domain.Channel {
	return s.channel
}

// ListFiles returns all files known to the channel.
func (s *FileStore) ListFiles(_ context.Context) ([]domain.FileRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]domain.FileRef, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	return files, nil
}

// GetContent returns the current content of a file.
func (s *FileStore) GetContent(_ context.Context, ref domain.FileRef) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.contents[ref.ID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

// UpdateContent replaces a file's content.
func (s *FileStore) UpdateContent(_ context.Context, ref domain.FileRef, content string) error {
	if s.readOnly {
		return domain.ErrReadOnlyChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[ref.ID]; !ok {
		return domain.ErrNotFound
	}
	s.contents[ref.ID] = content
	return nil
}

// ReadOnly reports whether UpdateContent is supported.
func (s *FileStore) ReadOnly() bool {
	return s.readOnly
}

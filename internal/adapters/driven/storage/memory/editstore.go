package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Ensure EditStore implements the interface.
var _ driven.EditStore = (*EditStore)(nil)

// EditStore is an in-memory implementation of driven.EditStore.
type EditStore struct {
	mu      sync.RWMutex
	records map[string]domain.EditedFile
}

// NewEditStore creates a new in-memory edit store.
func NewEditStore() *EditStore {
	return &EditStore{records: make(map[string]domain.EditedFile)}
}

// Get retrieves the record for a file.
func (s *EditStore) Get(_ context.Context, fileID string) (*domain.EditedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// Upsert creates or updates a record. An existing record's
// OriginalContent is never overwritten.
func (s *EditStore) Upsert(_ context.Context, record *domain.EditedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if existing, ok := s.records[record.FileID]; ok {
		stored.OriginalContent = existing.OriginalContent
	}
	s.records[record.FileID] = stored
	return nil
}

// List returns all records, most recently updated first.
func (s *EditStore) List(_ context.Context) ([]domain.EditedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.EditedFile, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

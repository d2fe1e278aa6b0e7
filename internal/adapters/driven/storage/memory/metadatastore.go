package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
// Records are deep-copied in and out so callers never share state.
type MetadataStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Metadata
	saves   int
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		records: make(map[string]*domain.Metadata),
	}
}

// GetMetadata retrieves the record for a document.
func (s *MetadataStore) GetMetadata(_ context.Context, documentID string) (*domain.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.Clone(), nil
}

// SaveMetadata replaces the record for a document.
func (s *MetadataStore) SaveMetadata(_ context.Context, metadata *domain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[metadata.DocumentID] = metadata.Clone()
	s.saves++
	return nil
}

// DeleteMetadata removes the record for a document.
func (s *MetadataStore) DeleteMetadata(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, documentID)
	return nil
}

// Saves returns how many times SaveMetadata was called.
func (s *MetadataStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interfaces.
var (
	_ driven.ArtifactStore        = (*ArtifactStore)(nil)
	_ driven.ArtifactBatch        = (*artifactBatch)(nil)
	_ driven.ArtifactStoreFactory = (*ArtifactStoreFactory)(nil)
)

// artifactSet maps kind to artifact name to bytes.
type artifactSet map[domain.ArtifactKind]map[string][]byte

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
// A committed set is replaced wholesale by a batch, never patched.
type ArtifactStore struct {
	location domain.ArtifactLocation

	mu       sync.RWMutex
	sets     map[string]artifactSet
	writeErr error
	commits  int
}

// NewArtifactStore creates an in-memory artifact store for a location.
func NewArtifactStore(location domain.ArtifactLocation) *ArtifactStore {
	return &ArtifactStore{
		location: location,
		sets:     make(map[string]artifactSet),
	}
}

// FailWrites makes every subsequent batch write return err.
// Pass nil to restore normal behaviour.
func (s *ArtifactStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Commits returns how many batches were committed.
func (s *ArtifactStore) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Location identifies the backend and root of this store.
func (s *ArtifactStore) Location() domain.ArtifactLocation {
	return s.location
}

// ResourceDirectory returns the handle of a document's committed set.
func (s *ArtifactStore) ResourceDirectory(_ context.Context, documentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[documentID]; !ok {
		s.sets[documentID] = newArtifactSet()
	}
	return "memory://" + documentID, nil
}

// Begin starts a new batch for a document.
func (s *ArtifactStore) Begin(_ context.Context, documentID string, format domain.ImageFormat) (driven.ArtifactBatch, error) {
	if documentID == "" {
		return nil, fmt.Errorf("begin batch: %w: empty document id", domain.ErrInvalidInput)
	}
	return &artifactBatch{
		store:      s,
		documentID: documentID,
		format:     format,
		set:        newArtifactSet(),
	}, nil
}

// List returns the committed artifact names of one kind in page order.
func (s *ArtifactStore) List(_ context.Context, documentID string, kind domain.ArtifactKind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[documentID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(set[kind]))
	for name := range set[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns one committed artifact.
func (s *ArtifactStore) Read(_ context.Context, documentID string, kind domain.ArtifactKind, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.sets[documentID][kind][name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(data), nil
}

// Delete removes all artifacts of a document.
func (s *ArtifactStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, documentID)
	return nil
}

func newArtifactSet() artifactSet {
	set := make(artifactSet, 4)
	for _, kind := range domain.AllArtifactKinds() {
		set[kind] = make(map[string][]byte)
	}
	return set
}

// artifactBatch accumulates writes privately until Commit.
type artifactBatch struct {
	store      *ArtifactStore
	documentID string
	format     domain.ImageFormat

	mu   sync.Mutex
	set  artifactSet
	done bool
}

func (b *artifactBatch) Write(_ context.Context, kind domain.ArtifactKind, page int, data []byte) error {
	if !kind.IsValid() || page < 1 {
		return fmt.Errorf("write %s page %d: %w", kind, page, domain.ErrInvalidInput)
	}
	b.store.mu.RLock()
	writeErr := b.store.writeErr
	b.store.mu.RUnlock()
	if writeErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, writeErr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("write %s page %d: %w: batch closed", kind, page, domain.ErrStorage)
	}
	b.set[kind][domain.ArtifactName(kind, page, b.format)] = slices.Clone(data)
	return nil
}

func (b *artifactBatch) Commit(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("commit: %w: batch closed", domain.ErrStorage)
	}
	counts := make(map[domain.ArtifactKind]int, len(b.set))
	for kind, names := range b.set {
		counts[kind] = len(names)
	}
	if _, err := domain.PageCount(counts); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	b.store.mu.Lock()
	b.store.sets[b.documentID] = b.set
	b.store.commits++
	b.store.mu.Unlock()
	b.done = true
	return nil
}

func (b *artifactBatch) Abort(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done = true
	b.set = nil
	return nil
}

// ArtifactStoreFactory hands out one in-memory store per location.
type ArtifactStoreFactory struct {
	mu     sync.Mutex
	stores map[domain.ArtifactLocation]*ArtifactStore
}

// NewArtifactStoreFactory creates an empty factory.
func NewArtifactStoreFactory() *ArtifactStoreFactory {
	return &ArtifactStoreFactory{
		stores: make(map[domain.ArtifactLocation]*ArtifactStore),
	}
}

// Open returns the store for a location, creating it on first use.
func (f *ArtifactStoreFactory) Open(location domain.ArtifactLocation) (driven.ArtifactStore, error) {
	return f.Store(location)
}

// Store is Open with the concrete type, for tests that inspect stores.
func (f *ArtifactStoreFactory) Store(location domain.ArtifactLocation) (*ArtifactStore, error) {
	if !location.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown storage type %q", domain.ErrConfiguration, location.Type)
	}
	if location.Type == domain.StorageFile && location.Path == "" {
		return nil, fmt.Errorf("%w: storage type File requires a storage location", domain.ErrConfiguration)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	store, ok := f.stores[location]
	if !ok {
		store = NewArtifactStore(location)
		f.stores[location] = store
	}
	return store, nil
}

package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/adapters/driven/index"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// --- Mock implementations for conversion testing ---

// mockConverter implements driven.FormatConverter. Each page of the
// content is a line of text.
type mockConverter struct {
	name      string
	fileTypes []domain.FileType
	pages     []string
	err       error
	panicWith any
	delay     time.Duration
	ignoreCtx bool

	calls atomic.Int32

	mu       sync.Mutex
	lastOpts driven.ConvertOptions
}

func (m *mockConverter) options() driven.ConvertOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}

func newMockConverter(fileTypes ...domain.FileType) *mockConverter {
	return &mockConverter{
		name:      "mock",
		fileTypes: fileTypes,
		pages:     []string{"Open source software"},
	}
}

func (m *mockConverter) Name() string { return m.name }

func (m *mockConverter) FileTypes() []domain.FileType { return m.fileTypes }

func (m *mockConverter) Convert(ctx context.Context, _ []byte, opts driven.ConvertOptions) ([]domain.Page, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastOpts = opts
	m.mu.Unlock()
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	if m.delay > 0 {
		if m.ignoreCtx {
			time.Sleep(m.delay)
		} else {
			select {
			case <-time.After(m.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	pages := make([]domain.Page, len(m.pages))
	for i, text := range m.pages {
		img := []byte(fmt.Sprintf("%s-%d", opts.ImageFormat, i+1))
		pages[i] = domain.Page{Number: i + 1, Large: img, Normal: img, Small: img, Text: text}
	}
	return pages, nil
}

// mockHasher implements driven.Hasher with a reversible encoding.
type mockHasher struct{}

func (mockHasher) Hash(content []byte) string { return hex.EncodeToString(content) }

// failingIndexer implements driven.Indexer and always fails to build.
type failingIndexer struct{}

func (failingIndexer) Build([]string) (*domain.Catalog, error) {
	return nil, errors.New("index unavailable")
}

func (failingIndexer) Search(*domain.Catalog, string, int) []domain.PageHit { return nil }

// failingMetadataStore wraps a MetadataStore and fails saves on demand.
type failingMetadataStore struct {
	*memory.MetadataStore
	mu      sync.Mutex
	saveErr error
}

func (f *failingMetadataStore) SaveMetadata(ctx context.Context, m *domain.Metadata) error {
	f.mu.Lock()
	err := f.saveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MetadataStore.SaveMetadata(ctx, m)
}

// harness wires a converter service to memory adapters.
type harness struct {
	documents *memory.DocumentStore
	metadata  *failingMetadataStore
	artifacts *memory.ArtifactStoreFactory
	config    *memory.ConfigStore
	queue     *memory.JobQueue
	registry  *FormatRegistry
	pdf       *mockConverter
	word      *mockConverter
	locks     *KeyLock
	settings  *SettingsService
	converter *ConverterService
	indexer   *index.Indexer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		documents: memory.NewDocumentStore(),
		metadata:  &failingMetadataStore{MetadataStore: memory.NewMetadataStore()},
		artifacts: memory.NewArtifactStoreFactory(),
		config:    memory.NewConfigStore(),
		queue:     memory.NewJobQueue(16),
		pdf:       newMockConverter(domain.FileTypePDF),
		word:      newMockConverter(domain.FileTypeWord, domain.FileTypePPT),
		locks:     NewKeyLock(),
		indexer:   index.New(),
	}
	h.word.name = "mock-office"
	h.registry = NewFormatRegistry(h.pdf, h.word)
	h.settings = NewSettingsService(h.config, h.documents, h.metadata, h.locks)
	h.converter = NewConverterService(h.documents, h.metadata, h.artifacts, h.registry, mockHasher{}, h.indexer, h.locks)
	return h
}

// addDocument stores a document and returns it.
func (h *harness) addDocument(t *testing.T, id, filename, content string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:        id,
		Filename:  filename,
		Content:   []byte(content),
		Layout:    domain.LayoutDefault,
		CreatedAt: time.Now(),
	}
	require.NoError(t, h.documents.SaveDocument(context.Background(), doc))
	return doc
}

// blobStore returns the memory Blob store.
func (h *harness) blobStore(t *testing.T) *memory.ArtifactStore {
	t.Helper()
	store, err := h.artifacts.Store(domain.ArtifactLocation{Type: domain.StorageBlob})
	require.NoError(t, err)
	return store
}

// metadataOf returns the stored record or fails the test.
func (h *harness) metadataOf(t *testing.T, id string) *domain.Metadata {
	t.Helper()
	m, err := h.metadata.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	return m
}

// hookedDocumentStore wraps a DocumentStore and runs callbacks around
// deletes and after the first read, to interleave other work.
type hookedDocumentStore struct {
	*memory.DocumentStore
	beforeDelete func()
	afterDelete  func()
	afterGet     func()

	once sync.Once
}

func (s *hookedDocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.DocumentStore.GetDocument(ctx, id)
	if err == nil && s.afterGet != nil {
		s.once.Do(s.afterGet)
	}
	return doc, err
}

func (s *hookedDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	if s.beforeDelete != nil {
		s.beforeDelete()
	}
	if err := s.DocumentStore.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if s.afterDelete != nil {
		s.afterDelete()
	}
	return nil
}

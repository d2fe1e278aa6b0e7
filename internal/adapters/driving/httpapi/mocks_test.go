package httpapi

import (
	"context"
	"fmt"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

// mockDocumentService keeps documents in a map and serves fixed artifacts.
type mockDocumentService struct {
	docs     map[string]*domain.Document
	statuses map[string]*driving.DocumentStatus
	pages    map[domain.ArtifactKind][][]byte
	hits     []domain.PageHit
	err      error

	uploaded    []string
	searchQuery string
	searchLimit int
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		docs:     make(map[string]*domain.Document),
		statuses: make(map[string]*driving.DocumentStatus),
		pages:    make(map[domain.ArtifactKind][][]byte),
	}
}

func (m *mockDocumentService) Upload(_ context.Context, filename, mimeType string, content []byte) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	id := fmt.Sprintf("doc-%d", len(m.docs)+1)
	doc := &domain.Document{
		ID:       id,
		Filename: filename,
		MIMEType: mimeType,
		Content:  content,
		Layout:   domain.LayoutDefault,
	}
	m.docs[id] = doc
	m.uploaded = append(m.uploaded, filename)
	return doc, nil
}

func (m *mockDocumentService) Update(_ context.Context, id string, content []byte) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, domain.ErrNotFound)
	}
	doc.Content = content
	return doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	docs := make([]domain.Document, 0, len(m.docs))
	for i := 1; i <= len(m.docs); i++ {
		if doc, ok := m.docs[fmt.Sprintf("doc-%d", i)]; ok {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, domain.ErrNotFound)
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentService) Status(_ context.Context, id string) (*driving.DocumentStatus, error) {
	st, ok := m.statuses[id]
	if !ok {
		return nil, fmt.Errorf("status %s: %w", id, domain.ErrNotFound)
	}
	return st, nil
}

func (m *mockDocumentService) Pages(_ context.Context, id string, kind domain.ArtifactKind) ([]string, error) {
	if _, ok := m.docs[id]; !ok {
		return nil, fmt.Errorf("pages %s: %w", id, domain.ErrNotFound)
	}
	names := make([]string, 0, len(m.pages[kind]))
	for i := range m.pages[kind] {
		names = append(names, domain.ArtifactName(kind, i+1, domain.ImageFormatPNG))
	}
	return names, nil
}

func (m *mockDocumentService) Page(_ context.Context, id string, kind domain.ArtifactKind, page int) ([]byte, error) {
	if _, ok := m.docs[id]; !ok {
		return nil, fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	if page < 1 || page > len(m.pages[kind]) {
		return nil, fmt.Errorf("page %d: %w", page, domain.ErrNotFound)
	}
	return m.pages[kind][page-1], nil
}

func (m *mockDocumentService) Text(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockDocumentService) Search(_ context.Context, id, query string, limit int) ([]domain.PageHit, error) {
	if _, ok := m.docs[id]; !ok {
		return nil, fmt.Errorf("search %s: %w", id, domain.ErrNotFound)
	}
	m.searchQuery = query
	m.searchLimit = limit
	return m.hits, nil
}

// mockDispatcher records conversion requests.
type mockDispatcher struct {
	requested []string
	force     bool
	err       error
}

func (m *mockDispatcher) OnDocumentChanged(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockDispatcher) OnDocumentDeleted(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDispatcher) EnqueueStale(_ context.Context) (int, error) {
	return 0, m.err
}

func (m *mockDispatcher) RequestConversion(_ context.Context, id string, force bool) error {
	if m.err != nil {
		return m.err
	}
	m.requested = append(m.requested, id)
	m.force = force
	return nil
}

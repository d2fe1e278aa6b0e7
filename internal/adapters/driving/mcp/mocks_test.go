package mcp

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	status    *driving.DocumentStatus
	statusErr error
	text      []string
	hits      []domain.PageHit
	err       error

	searchLimit int
}

func (m *mockDocumentService) Upload(_ context.Context, _, _ string, _ []byte) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Update(_ context.Context, _ string, _ []byte) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Status(_ context.Context, _ string) (*driving.DocumentStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.status, m.err
}

func (m *mockDocumentService) Pages(_ context.Context, _ string, _ domain.ArtifactKind) ([]string, error) {
	return nil, m.err
}

func (m *mockDocumentService) Page(_ context.Context, _ string, _ domain.ArtifactKind, _ int) ([]byte, error) {
	return nil, m.err
}

func (m *mockDocumentService) Text(_ context.Context, _ string) ([]string, error) {
	return m.text, m.err
}

func (m *mockDocumentService) Search(_ context.Context, _, _ string, limit int) ([]domain.PageHit, error) {
	m.searchLimit = limit
	return m.hits, m.err
}

// mockDispatcher is a mock implementation of driving.Dispatcher.
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

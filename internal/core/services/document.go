package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService stands in for the hosting system: it stores documents,
// raises change events through the Dispatcher and serves artifacts.
type DocumentService struct {
	documents  driven.DocumentStore
	artifacts  driven.ArtifactStoreFactory
	hasher     driven.Hasher
	indexer    driven.Indexer
	converter  driving.ConverterService
	dispatcher driving.Dispatcher
	settings   driving.SettingsService
	now        func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	documents driven.DocumentStore,
	artifacts driven.ArtifactStoreFactory,
	hasher driven.Hasher,
	indexer driven.Indexer,
	converter driving.ConverterService,
	dispatcher driving.Dispatcher,
	settings driving.SettingsService,
) *DocumentService {
	return &DocumentService{
		documents:  documents,
		artifacts:  artifacts,
		hasher:     hasher,
		indexer:    indexer,
		converter:  converter,
		dispatcher: dispatcher,
		settings:   settings,
		now:        time.Now,
	}
}

// Upload stores a new document and raises a create event.
func (s *DocumentService) Upload(ctx context.Context, filename, mimeType string, content []byte) (*domain.Document, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("upload: %w: filename required", domain.ErrInvalidInput)
	}

	now := s.now()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		MIMEType:   mimeType,
		Content:    content,
		Layout:     domain.LayoutDefault,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	s.notify(ctx, doc)
	return doc, nil
}

// Update replaces a document's content and raises a modify event.
// Only the content is written, so a layout switched by a concurrent
// conversion is kept.
func (s *DocumentService) Update(ctx context.Context, id string, content []byte) (*domain.Document, error) {
	if err := s.documents.UpdateContent(ctx, id, content, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, doc)
	return doc, nil
}

// notify raises the change event. The document is already stored, so a
// dispatch failure is reported to the operator instead of the uploader.
func (s *DocumentService) notify(ctx context.Context, doc *domain.Document) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.OnDocumentChanged(ctx, doc.ID, s.hasher.Hash(doc.Content)); err != nil {
		logger.Error("%v", err)
	}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documents.GetDocument(ctx, id)
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.documents.ListDocuments(ctx)
}

// Delete removes a document with its artifacts and metadata. The row
// goes first so a job dequeued afterwards fails with ErrNotFound; a job
// already converting holds the key lock and finishes before the cleanup.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if _, err := s.documents.GetDocument(ctx, id); err != nil {
		return err
	}
	if err := s.documents.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.OnDocumentDeleted(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Status returns the conversion view of a document.
func (s *DocumentService) Status(ctx context.Context, id string) (*driving.DocumentStatus, error) {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Content = nil

	state, err := s.converter.State(ctx, id)
	if err != nil {
		return nil, err
	}
	meta, err := s.converter.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}

	status := &driving.DocumentStatus{
		Document:      *doc,
		State:         state,
		LocalOverride: meta.LocalOverride(),
	}
	if meta != nil {
		status.Status = meta.Status
		status.Indexed = meta.Catalog != nil
		status.Storage = meta.Storage
	}
	settings, err := s.settings.Resolve(ctx, id)
	if err != nil {
		status.SettingsError = err.Error()
	} else {
		status.Settings = settings
	}
	return status, nil
}

// Pages lists the artifact names of one kind in page order.
func (s *DocumentService) Pages(ctx context.Context, id string, kind domain.ArtifactKind) ([]string, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown artifact kind %q", domain.ErrInvalidInput, kind)
	}
	store, err := s.store(ctx, id)
	if err != nil || store == nil {
		return []string{}, err
	}
	return store.List(ctx, id, kind)
}

// Page returns the artifact of one kind for a 1-indexed page.
func (s *DocumentService) Page(ctx context.Context, id string, kind domain.ArtifactKind, page int) ([]byte, error) {
	names, err := s.Pages(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > len(names) {
		return nil, fmt.Errorf("page %d of %s: %w", page, id, domain.ErrNotFound)
	}
	store, err := s.store(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Read(ctx, id, kind, names[page-1])
}

// Text returns the extracted text of every page in order.
func (s *DocumentService) Text(ctx context.Context, id string) ([]string, error) {
	names, err := s.Pages(ctx, id, domain.ArtifactText)
	if err != nil || len(names) == 0 {
		return []string{}, err
	}
	store, err := s.store(ctx, id)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := store.Read(ctx, id, domain.ArtifactText, name)
		if err != nil {
			return nil, fmt.Errorf("read %s of %s: %w", name, id, err)
		}
		texts = append(texts, string(data))
	}
	return texts, nil
}

// Search ranks the document's pages against a query using its catalog.
func (s *DocumentService) Search(ctx context.Context, id, query string, limit int) ([]domain.PageHit, error) {
	if _, err := s.documents.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	meta, err := s.converter.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.Catalog == nil || s.indexer == nil {
		return []domain.PageHit{}, nil
	}
	hits := s.indexer.Search(meta.Catalog, query, limit)
	if hits == nil {
		hits = []domain.PageHit{}
	}
	return hits, nil
}

// store opens the artifact store that holds the document's current
// artifacts. Returns nil if the document was never converted.
func (s *DocumentService) store(ctx context.Context, id string) (driven.ArtifactStore, error) {
	if _, err := s.documents.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	meta, err := s.converter.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil || meta.Storage.IsZero() {
		return nil, nil
	}
	return s.artifacts.Open(meta.Storage)
}

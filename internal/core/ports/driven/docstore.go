package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// DocumentStore persists the hosting system's documents.
// Backed by SQLite for the CLI and server, memory for tests.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by creation time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SetLayout changes the presentation layout of a document.
	SetLayout(ctx context.Context, id, layout string) error

	// UpdateContent replaces the content and modification time only,
	// leaving the layout and other fields as stored.
	// Returns domain.ErrNotFound if the document does not exist.
	UpdateContent(ctx context.Context, id string, content []byte, modifiedAt time.Time) error
}

// MetadataStore persists the per-document annotation record that holds
// the conversion status, the catalog and the local settings override.
type MetadataStore interface {
	// GetMetadata retrieves the record for a document.
	// Returns domain.ErrNotFound if none has been written yet.
	GetMetadata(ctx context.Context, documentID string) (*domain.Metadata, error)

	// SaveMetadata replaces the record as a single atomic update.
	SaveMetadata(ctx context.Context, metadata *domain.Metadata) error

	// DeleteMetadata removes the record. Deleting a missing record is not an error.
	DeleteMetadata(ctx context.Context, documentID string) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// DocumentStatus is the administrator view of a document's conversion.
type DocumentStatus struct {
	// Document is the document without its content.
	Document domain.Document

	// State is the state machine position.
	State domain.ConversionState

	// Status is the latest conversion outcome; nil if never attempted.
	Status *domain.ConversionStatus

	// Settings are the effective settings the next conversion would use.
	Settings domain.EffectiveSettings

	// SettingsError is set instead of Settings when the global
	// configuration is unusable.
	SettingsError string

	// LocalOverride is the document's own settings subset.
	LocalOverride domain.LocalOverride

	// Indexed is true if a catalog is attached.
	Indexed bool

	// Storage is where the current artifacts live.
	Storage domain.ArtifactLocation
}

// DocumentService is the hosting-system facade: it stores documents,
// raises change events and serves converted pages.
type DocumentService interface {
	// Upload stores a new document and raises a create event.
	Upload(ctx context.Context, filename, mimeType string, content []byte) (*domain.Document, error)

	// Update replaces a document's content and raises a modify event.
	Update(ctx context.Context, id string, content []byte) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document with its artifacts and metadata.
	Delete(ctx context.Context, id string) error

	// Status returns the conversion view of a document.
	Status(ctx context.Context, id string) (*DocumentStatus, error)

	// Pages lists the artifact names of one kind in page order.
	Pages(ctx context.Context, id string, kind domain.ArtifactKind) ([]string, error)

	// Page returns the artifact of one kind for a 1-indexed page.
	Page(ctx context.Context, id string, kind domain.ArtifactKind, page int) ([]byte, error)

	// Text returns the extracted text of every page in order.
	Text(ctx context.Context, id string) ([]string, error)

	// Search ranks the document's pages against a query using its catalog.
	// Returns no hits when the document is not indexed.
	Search(ctx context.Context, id, query string, limit int) ([]domain.PageHit, error)
}

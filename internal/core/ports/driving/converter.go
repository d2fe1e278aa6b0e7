package driving

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// ConvertOptions configures a single Convert call.
type ConvertOptions struct {
	// Force bypasses the staleness check.
	Force bool
}

// ConverterService runs the conversion state machine for documents.
type ConverterService interface {
	// CanConvert reports whether the document is of a supported type and
	// its stored status is missing, failed or refers to other content.
	CanConvert(ctx context.Context, doc *domain.Document) (bool, error)

	// Convert converts a document if it is stale and returns the resulting
	// status. Conversion and storage failures are recorded in the status,
	// not returned. The global snapshot is merged with the document's local
	// override at the moment of conversion.
	Convert(ctx context.Context, documentID string, global domain.GlobalSettings, opts ConvertOptions) (*domain.ConversionStatus, error)

	// State returns the state machine position of a document.
	State(ctx context.Context, documentID string) (domain.ConversionState, error)

	// Metadata returns the stored annotation record of a document,
	// or nil if nothing has been recorded yet.
	Metadata(ctx context.Context, documentID string) (*domain.Metadata, error)

	// Delete removes a document's artifacts and metadata.
	Delete(ctx context.Context, documentID string) error
}

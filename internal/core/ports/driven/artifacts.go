package driven

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// ArtifactStore holds the per-page conversion output of documents for a
// single storage backend and location.
//
// Readers only ever observe committed batches: a batch in progress or an
// aborted batch is never listable.
type ArtifactStore interface {
	// Location identifies the backend and root of this store.
	Location() domain.ArtifactLocation

	// ResourceDirectory returns the storage handle of a document's
	// committed artifacts, creating an empty set if none exists.
	ResourceDirectory(ctx context.Context, documentID string) (string, error)

	// Begin starts a new batch that replaces the document's artifacts on commit.
	Begin(ctx context.Context, documentID string, format domain.ImageFormat) (ArtifactBatch, error)

	// List returns the committed artifact names of one kind in page order.
	List(ctx context.Context, documentID string, kind domain.ArtifactKind) ([]string, error)

	// Read returns one committed artifact.
	// Returns domain.ErrNotFound if it does not exist.
	Read(ctx context.Context, documentID string, kind domain.ArtifactKind, name string) ([]byte, error)

	// Delete removes all artifacts of a document, including stale batches.
	Delete(ctx context.Context, documentID string) error
}

// ArtifactBatch collects the artifacts of one conversion run.
type ArtifactBatch interface {
	// Write stores one page's artifact of one kind. Pages are 1-indexed.
	Write(ctx context.Context, kind domain.ArtifactKind, page int, data []byte) error

	// Commit atomically replaces the document's artifacts with the batch.
	// Fails with domain.ErrStorage if the kinds hold different page counts.
	Commit(ctx context.Context) error

	// Abort discards the batch. Calling Abort after Commit is a no-op.
	Abort(ctx context.Context) error
}

// ArtifactStoreFactory opens artifact stores by location so documents
// converted under an earlier backend remain reachable.
type ArtifactStoreFactory interface {
	// Open returns the store for a location.
	// Returns domain.ErrConfiguration for an unusable location.
	Open(location domain.ArtifactLocation) (ArtifactStore, error)
}

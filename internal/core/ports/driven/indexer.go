package driven

import "github.com/custodia-labs/documentviewer/internal/core/domain"

// Indexer builds and queries page text catalogs.
type Indexer interface {
	// Build creates a catalog from per-page text in page order.
	// The result is deterministic for identical input.
	Build(pages []string) (*domain.Catalog, error)

	// Search ranks catalog pages against a query.
	// A nil catalog or empty query yields no hits.
	Search(catalog *domain.Catalog, query string, limit int) []domain.PageHit
}

// Package domain defines the core business entities for the document viewer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file owned by the hosting system
//   - Metadata: The per-document annotation record (status, catalog, overrides)
//   - GlobalSettings / LocalOverride / EffectiveSettings: Conversion configuration
//   - Page / ArtifactKind: Per-page conversion output
//   - Catalog: Search-ready text index built from page text
//   - ConversionJob: A queued unit of conversion work
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

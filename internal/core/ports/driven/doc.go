// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Hosting-system document persistence
//   - MetadataStore: Per-document annotation record (status, catalog, overrides)
//   - ArtifactStore: Per-page conversion output for one storage backend
//   - ArtifactStoreFactory: Opens the ArtifactStore for a storage location
//   - FormatConverter: Converts one family of file types into pages
//   - Hasher: Content fingerprinting for staleness detection
//   - Indexer: Builds and searches page text catalogs
//   - JobQueue: Conversion job transport between dispatcher and workers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CommandRunner: External process execution. Office formats are not
//     registered when no runner is available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

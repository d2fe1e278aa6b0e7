package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// metadataStore implements driven.MetadataStore. The whole record is one
// row, so every save is a single atomic statement.
type metadataStore struct {
	store *Store
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// GetMetadata retrieves the record for a document.
func (s *metadataStore) GetMetadata(ctx context.Context, documentID string) (*domain.Metadata, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT fingerprint, converted, num_pages, converted_at, last_error,
			catalog, enable_indexation, storage_type, storage_path
		FROM metadata WHERE document_id = ?
	`, documentID)

	var (
		fingerprint sql.NullString
		converted   bool
		numPages    int
		convertedAt sql.NullTime
		lastError   string
		catalogBlob []byte
		indexation  sql.NullBool
		storageType string
		storagePath string
	)
	if err := row.Scan(&fingerprint, &converted, &numPages, &convertedAt, &lastError,
		&catalogBlob, &indexation, &storageType, &storagePath); err != nil {
		return nil, notFound(err, "metadata of "+documentID)
	}

	meta := &domain.Metadata{
		DocumentID: documentID,
		Storage: domain.ArtifactLocation{
			Type: domain.StorageType(storageType),
			Path: storagePath,
		},
	}
	if fingerprint.Valid {
		meta.Status = &domain.ConversionStatus{
			Fingerprint:           fingerprint.String,
			SuccessfullyConverted: converted,
			NumPages:              numPages,
			ConvertedAt:           convertedAt.Time,
			LastError:             lastError,
		}
	}
	if indexation.Valid {
		meta.EnableIndexation = domain.BoolPtr(indexation.Bool)
	}

	catalog, err := DecodeCatalog(catalogBlob)
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", documentID, err)
	}
	meta.Catalog = catalog
	return meta, nil
}

// SaveMetadata replaces the record of a document.
func (s *metadataStore) SaveMetadata(ctx context.Context, meta *domain.Metadata) error {
	if meta == nil || meta.DocumentID == "" {
		return fmt.Errorf("saving metadata: %w", domain.ErrInvalidInput)
	}

	catalogBlob, err := EncodeCatalog(meta.Catalog)
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}

	var (
		fingerprint sql.NullString
		converted   bool
		numPages    int
		convertedAt sql.NullTime
		lastError   string
		indexation  sql.NullBool
	)
	if meta.Status != nil {
		fingerprint = sql.NullString{String: meta.Status.Fingerprint, Valid: true}
		converted = meta.Status.SuccessfullyConverted
		numPages = meta.Status.NumPages
		if !meta.Status.ConvertedAt.IsZero() {
			convertedAt = sql.NullTime{Time: meta.Status.ConvertedAt.UTC(), Valid: true}
		}
		lastError = meta.Status.LastError
	}
	if meta.EnableIndexation != nil {
		indexation = sql.NullBool{Bool: *meta.EnableIndexation, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO metadata (document_id, fingerprint, converted, num_pages, converted_at,
			last_error, catalog, enable_indexation, storage_type, storage_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			converted = excluded.converted,
			num_pages = excluded.num_pages,
			converted_at = excluded.converted_at,
			last_error = excluded.last_error,
			catalog = excluded.catalog,
			enable_indexation = excluded.enable_indexation,
			storage_type = excluded.storage_type,
			storage_path = excluded.storage_path
	`, meta.DocumentID, fingerprint, converted, numPages, convertedAt, lastError,
		catalogBlob, indexation, string(meta.Storage.Type), meta.Storage.Path)
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// DeleteMetadata removes the record of a document.
func (s *metadataStore) DeleteMetadata(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM metadata WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("saving document: %w", domain.ErrInvalidInput)
	}
	layout := doc.Layout
	if layout == "" {
		layout = domain.LayoutDefault
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, mime_type, content, layout, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			mime_type = excluded.mime_type,
			content = excluded.content,
			layout = excluded.layout,
			modified_at = excluded.modified_at
	`, doc.ID, doc.Filename, doc.MIMEType, doc.Content, layout, doc.CreatedAt.UTC(), doc.ModifiedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, mime_type, content, layout, created_at, modified_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.MIMEType, &doc.Content,
		&doc.Layout, &doc.CreatedAt, &doc.ModifiedAt); err != nil {
		return nil, notFound(err, "document "+id)
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents without their content, oldest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, mime_type, layout, created_at, modified_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.MIMEType,
			&doc.Layout, &doc.CreatedAt, &doc.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// SetLayout changes the presentation layout of a document.
func (s *documentStore) SetLayout(ctx context.Context, id, layout string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE documents SET layout = ? WHERE id = ?", layout, id)
	if err != nil {
		return fmt.Errorf("setting layout: %w", err)
	}
	return requireRow(res, "document "+id)
}

// UpdateContent replaces the content and modification time of a document.
func (s *documentStore) UpdateContent(ctx context.Context, id string, content []byte, modifiedAt time.Time) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET content = ?, modified_at = ? WHERE id = ?", content, modifiedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	return requireRow(res, "document "+id)
}

// requireRow returns domain.ErrNotFound if a statement touched no rows.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// artifactStore implements the Blob backend. Batches stage their rows in
// artifact_batches and move them to artifacts in one transaction.
type artifactStore struct {
	store *Store
}

var (
	_ driven.ArtifactStore = (*artifactStore)(nil)
	_ driven.ArtifactBatch = (*artifactBatch)(nil)
)

// Location identifies the Blob backend.
func (s *artifactStore) Location() domain.ArtifactLocation {
	return domain.ArtifactLocation{Type: domain.StorageBlob}
}

// ResourceDirectory returns the handle of a document's artifacts. Rows
// are created on commit, so there is nothing to prepare.
func (s *artifactStore) ResourceDirectory(_ context.Context, documentID string) (string, error) {
	return fmt.Sprintf("sqlite://%s#%s", s.store.path, documentID), nil
}

// Begin starts a new batch for a document.
func (s *artifactStore) Begin(_ context.Context, documentID string, format domain.ImageFormat) (driven.ArtifactBatch, error) {
	if documentID == "" {
		return nil, fmt.Errorf("begin batch: %w: empty document id", domain.ErrInvalidInput)
	}
	return &artifactBatch{
		store:      s.store,
		id:         uuid.NewString(),
		documentID: documentID,
		format:     format,
	}, nil
}

// List returns the committed artifact names of one kind in page order.
func (s *artifactStore) List(ctx context.Context, documentID string, kind domain.ArtifactKind) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name FROM artifacts WHERE document_id = ? AND kind = ? ORDER BY name
	`, documentID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return names, nil
}

// Read returns one committed artifact.
func (s *artifactStore) Read(ctx context.Context, documentID string, kind domain.ArtifactKind, name string) ([]byte, error) {
	var data []byte
	err := s.store.db.QueryRowContext(ctx, `
		SELECT data FROM artifacts WHERE document_id = ? AND kind = ? AND name = ?
	`, documentID, string(kind), name).Scan(&data)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("artifact %s/%s of %s", kind, name, documentID))
	}
	return data, nil
}

// Delete removes committed and staged artifacts of a document.
func (s *artifactStore) Delete(ctx context.Context, documentID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting artifacts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifact_batches WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting staged artifacts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// artifactBatch stages one conversion run.
type artifactBatch struct {
	store      *Store
	id         string
	documentID string
	format     domain.ImageFormat

	mu   sync.Mutex
	done bool
}

func (b *artifactBatch) Write(ctx context.Context, kind domain.ArtifactKind, page int, data []byte) error {
	if !kind.IsValid() || page < 1 {
		return fmt.Errorf("write %s page %d: %w", kind, page, domain.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("write %s page %d: %w: batch closed", kind, page, domain.ErrStorage)
	}

	_, err := b.store.db.ExecContext(ctx, `
		INSERT INTO artifact_batches (batch_id, document_id, kind, name, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id, kind, name) DO UPDATE SET data = excluded.data
	`, b.id, b.documentID, string(kind), domain.ArtifactName(kind, page, b.format), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: staging %s page %d: %w", domain.ErrStorage, kind, page, err)
	}
	return nil
}

func (b *artifactBatch) Commit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("commit: %w: batch closed", domain.ErrStorage)
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	counts, err := stagedCounts(ctx, tx, b.id)
	if err != nil {
		return err
	}
	if _, err := domain.PageCount(counts); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	statements := []string{
		"DELETE FROM artifacts WHERE document_id = ?",
		`INSERT INTO artifacts (document_id, kind, name, data)
			SELECT document_id, kind, name, data FROM artifact_batches WHERE batch_id = ?`,
		"DELETE FROM artifact_batches WHERE batch_id = ?",
	}
	args := []string{b.documentID, b.id, b.id}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, args[i]); err != nil {
			return fmt.Errorf("%w: commit: %w", domain.ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrStorage, err)
	}
	b.done = true
	return nil
}

func (b *artifactBatch) Abort(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}
	b.done = true
	// The run may have been cancelled; staged rows are removed regardless.
	ctx = context.WithoutCancel(ctx)
	if _, err := b.store.db.ExecContext(ctx, "DELETE FROM artifact_batches WHERE batch_id = ?", b.id); err != nil {
		return fmt.Errorf("aborting batch: %w", err)
	}
	return nil
}

// stagedCounts returns the number of staged artifacts per kind.
func stagedCounts(ctx context.Context, tx *sql.Tx, batchID string) (map[domain.ArtifactKind]int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM artifact_batches WHERE batch_id = ? GROUP BY kind
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: counting staged artifacts: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	counts := make(map[domain.ArtifactKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("%w: counting staged artifacts: %w", domain.ErrStorage, err)
		}
		counts[domain.ArtifactKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: counting staged artifacts: %w", domain.ErrStorage, err)
	}
	return counts, nil
}

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// versionsDir holds every version directory under the root.
const versionsDir = ".versions"

var (
	_ driven.ArtifactStore = (*ArtifactStore)(nil)
	_ driven.ArtifactBatch = (*artifactBatch)(nil)
)

// ArtifactStore keeps artifacts in a directory tree.
type ArtifactStore struct {
	root string

	// locks serialise pointer swaps and deletes of one document.
	locks docLocks
}

// NewArtifactStore creates a store rooted at an absolute directory,
// creating it if needed.
func NewArtifactStore(root string) (*ArtifactStore, error) {
	if root == "" || !filepath.IsAbs(root) {
		return nil, fmt.Errorf("%w: storage location %q must be an absolute path", domain.ErrConfiguration, root)
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, versionsDir), 0755); err != nil {
		return nil, fmt.Errorf("%w: create storage location: %w", domain.ErrConfiguration, err)
	}
	return &ArtifactStore{root: root}, nil
}

// Location identifies the File backend and its root.
func (s *ArtifactStore) Location() domain.ArtifactLocation {
	return domain.ArtifactLocation{Type: domain.StorageFile, Path: s.root}
}

// ResourceDirectory returns the document's artifact directory, pointing
// it at an empty set if the document has none yet.
func (s *ArtifactStore) ResourceDirectory(_ context.Context, documentID string) (string, error) {
	if err := validateID(documentID); err != nil {
		return "", err
	}
	defer s.locks.lock(documentID)()

	pointer := s.pointer(documentID)
	if _, err := os.Lstat(pointer); err == nil {
		return pointer, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	version := uuid.NewString()
	if err := s.createVersion(documentID, version); err != nil {
		return "", err
	}
	if err := s.swap(documentID, version); err != nil {
		_ = os.RemoveAll(s.versionPath(documentID, version))
		return "", err
	}
	return pointer, nil
}

// Begin starts a new batch in a fresh version directory.
func (s *ArtifactStore) Begin(_ context.Context, documentID string, format domain.ImageFormat) (driven.ArtifactBatch, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	version := uuid.NewString()
	if err := s.createVersion(documentID, version); err != nil {
		return nil, err
	}
	return &artifactBatch{
		store:      s,
		documentID: documentID,
		version:    version,
		format:     format,
	}, nil
}

// List returns the committed artifact names of one kind in page order.
func (s *ArtifactStore) List(_ context.Context, documentID string, kind domain.ArtifactKind) ([]string, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown artifact kind %q", domain.ErrInvalidInput, kind)
	}
	return listNames(filepath.Join(s.pointer(documentID), string(kind)))
}

// Read returns one committed artifact.
func (s *ArtifactStore) Read(_ context.Context, documentID string, kind domain.ArtifactKind, name string) ([]byte, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	if !kind.IsValid() || name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("read %s/%s: %w", kind, name, domain.ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(s.pointer(documentID), string(kind), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s/%s of %s: %w", kind, name, documentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return data, nil
}

// Delete removes the pointer and every version of a document.
func (s *ArtifactStore) Delete(_ context.Context, documentID string) error {
	if err := validateID(documentID); err != nil {
		return err
	}
	defer s.locks.lock(documentID)()

	if err := os.Remove(s.pointer(documentID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove pointer: %w", domain.ErrStorage, err)
	}
	if err := os.RemoveAll(filepath.Join(s.root, versionsDir, documentID)); err != nil {
		return fmt.Errorf("%w: remove versions: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *ArtifactStore) pointer(documentID string) string {
	return filepath.Join(s.root, documentID)
}

func (s *ArtifactStore) versionPath(documentID, version string) string {
	return filepath.Join(s.root, versionsDir, documentID, version)
}

// createVersion makes an empty version directory with one folder per kind.
func (s *ArtifactStore) createVersion(documentID, version string) error {
	dir := s.versionPath(documentID, version)
	for _, kind := range domain.AllArtifactKinds() {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0755); err != nil {
			return fmt.Errorf("%w: create version: %w", domain.ErrStorage, err)
		}
	}
	return nil
}

// swap points the document at a version and removes the version it
// pointed to before. Caller must hold the document's lock.
func (s *ArtifactStore) swap(documentID, version string) error {
	pointer := s.pointer(documentID)
	previous, _ := os.Readlink(pointer)

	target := filepath.Join(versionsDir, documentID, version)
	tmp := filepath.Join(s.root, "."+documentID+"."+version+".link")
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("%w: link version: %w", domain.ErrStorage, err)
	}
	if err := os.Rename(tmp, pointer); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: swap version: %w", domain.ErrStorage, err)
	}

	if previous != "" && previous != target {
		_ = os.RemoveAll(filepath.Join(s.root, previous))
	}
	return nil
}

// listNames returns the sorted file names in dir, or an empty slice if
// dir does not exist.
func listNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// validateID rejects IDs that would escape the root or hide in it.
func validateID(documentID string) error {
	if documentID == "" || strings.HasPrefix(documentID, ".") ||
		strings.ContainsAny(documentID, `/\`) {
		return fmt.Errorf("%w: invalid document id %q", domain.ErrInvalidInput, documentID)
	}
	return nil
}

// artifactBatch writes into a private version directory.
type artifactBatch struct {
	store      *ArtifactStore
	documentID string
	version    string
	format     domain.ImageFormat

	mu   sync.Mutex
	done bool
}

func (b *artifactBatch) Write(_ context.Context, kind domain.ArtifactKind, page int, data []byte) error {
	if !kind.IsValid() || page < 1 {
		return fmt.Errorf("write %s page %d: %w", kind, page, domain.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("write %s page %d: %w: batch closed", kind, page, domain.ErrStorage)
	}

	name := domain.ArtifactName(kind, page, b.format)
	path := filepath.Join(b.store.versionPath(b.documentID, b.version), string(kind), name)
	if err := writeFileSync(path, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// writeFileSync writes and fsyncs a file so a committed pointer never
// references data still in the page cache.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (b *artifactBatch) Commit(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("commit: %w: batch closed", domain.ErrStorage)
	}

	dir := b.store.versionPath(b.documentID, b.version)
	counts := make(map[domain.ArtifactKind]int)
	for _, kind := range domain.AllArtifactKinds() {
		names, err := listNames(filepath.Join(dir, string(kind)))
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		counts[kind] = len(names)
	}
	if _, err := domain.PageCount(counts); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	defer b.store.locks.lock(b.documentID)()
	if err := b.store.swap(b.documentID, b.version); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	b.done = true
	return nil
}

func (b *artifactBatch) Abort(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}
	b.done = true
	if err := os.RemoveAll(b.store.versionPath(b.documentID, b.version)); err != nil {
		return fmt.Errorf("abort batch: %w", err)
	}
	return nil
}

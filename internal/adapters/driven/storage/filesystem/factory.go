package filesystem

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

var _ driven.ArtifactStoreFactory = (*ArtifactStoreFactory)(nil)

// ArtifactStoreFactory opens the Blob store or a File store by location.
// File stores are cached per root.
type ArtifactStoreFactory struct {
	blob driven.ArtifactStore

	mu    sync.Mutex
	roots map[string]*ArtifactStore
}

// NewArtifactStoreFactory creates a factory around the Blob backend.
func NewArtifactStoreFactory(blob driven.ArtifactStore) *ArtifactStoreFactory {
	return &ArtifactStoreFactory{
		blob:  blob,
		roots: make(map[string]*ArtifactStore),
	}
}

// Open returns the store for a location.
func (f *ArtifactStoreFactory) Open(location domain.ArtifactLocation) (driven.ArtifactStore, error) {
	switch location.Type {
	case domain.StorageBlob:
		if f.blob == nil {
			return nil, fmt.Errorf("%w: no Blob backend configured", domain.ErrConfiguration)
		}
		return f.blob, nil
	case domain.StorageFile:
		return f.file(location.Path)
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", domain.ErrConfiguration, location.Type)
	}
}

func (f *ArtifactStoreFactory) file(root string) (*ArtifactStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: storage type File requires a storage location", domain.ErrConfiguration)
	}
	root = filepath.Clean(root)

	f.mu.Lock()
	defer f.mu.Unlock()
	if store, ok := f.roots[root]; ok {
		return store, nil
	}
	store, err := NewArtifactStore(root)
	if err != nil {
		return nil, err
	}
	f.roots[root] = store
	return store, nil
}

package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

// mockDocumentService records uploads and updates.
type mockDocumentService struct {
	mu       sync.Mutex
	docs     map[string]*domain.Document
	uploads  []string
	updates  []string
	listErr  error
	sequence int
}

func newMockDocumentService(existing ...domain.Document) *mockDocumentService {
	m := &mockDocumentService{docs: make(map[string]*domain.Document)}
	for i := range existing {
		doc := existing[i]
		m.docs[doc.ID] = &doc
	}
	return m
}

func (m *mockDocumentService) Upload(_ context.Context, filename, _ string, content []byte) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence++
	doc := &domain.Document{ID: fmt.Sprintf("new-%d", m.sequence), Filename: filename, Content: content}
	m.docs[doc.ID] = doc
	m.uploads = append(m.uploads, filename)
	return doc, nil
}

func (m *mockDocumentService) Update(_ context.Context, id string, content []byte) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, domain.ErrNotFound)
	}
	doc.Content = content
	m.updates = append(m.updates, id)
	return doc, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	docs := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentService) Status(_ context.Context, _ string) (*driving.DocumentStatus, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) Pages(_ context.Context, _ string, _ domain.ArtifactKind) ([]string, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) Page(_ context.Context, _ string, _ domain.ArtifactKind, _ int) ([]byte, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) Text(_ context.Context, _ string) ([]string, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) Search(_ context.Context, _, _ string, _ int) ([]domain.PageHit, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) snapshot() (uploads, updates []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...), append([]string(nil), m.updates...)
}

func TestIgnored(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"report.pdf", false},
		{"notes.docx", false},
		{".hidden.pdf", true},
		{"~$notes.docx", true},
		{"download.pdf.crdownload", true},
		{"copy.part", true},
		{"scratch.tmp", true},
		{"backup.txt~", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ignored(tt.name))
		})
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))
	hidden := filepath.Join(dir, ".report.pdf")
	require.NoError(t, os.WriteFile(hidden, []byte("%PDF"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	nested := filepath.Join(sub, "nested.pdf")
	require.NoError(t, os.WriteFile(nested, []byte("%PDF"), 0o644))

	tests := []struct {
		name   string
		event  fsnotify.Event
		wantOK bool
	}{
		{"create file", fsnotify.Event{Name: file, Op: fsnotify.Create}, true},
		{"write file", fsnotify.Event{Name: file, Op: fsnotify.Write}, true},
		{"chmod file", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, false},
		{"remove file", fsnotify.Event{Name: filepath.Join(dir, "gone.pdf"), Op: fsnotify.Remove}, false},
		{"rename file", fsnotify.Event{Name: file, Op: fsnotify.Rename}, false},
		{"hidden file", fsnotify.Event{Name: hidden, Op: fsnotify.Create}, false},
		{"directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, false},
		{"nested file", fsnotify.Event{Name: nested, Op: fsnotify.Create}, false},
		{"vanished before stat", fsnotify.Event{Name: filepath.Join(dir, "gone.pdf"), Op: fsnotify.Create}, false},
	}

	w := New(dir, newMockDocumentService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.handleEvent(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.event.Name, path)
			}
		})
	}
}

func TestWatcher_ingest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	docs := newMockDocumentService()
	w := New(dir, docs)

	require.NoError(t, w.ingest(ctx, path))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.NoError(t, w.ingest(ctx, path))

	uploads, updates := docs.snapshot()
	assert.Equal(t, []string{"report.pdf"}, uploads)
	assert.Equal(t, []string{"new-1"}, updates)
	assert.Equal(t, []byte("v2"), docs.docs["new-1"].Content)

	// A deleted document is uploaded again.
	require.NoError(t, docs.Delete(ctx, "new-1"))
	require.NoError(t, w.ingest(ctx, path))
	uploads, _ = docs.snapshot()
	assert.Equal(t, []string{"report.pdf", "report.pdf"}, uploads)

	assert.Error(t, w.ingest(ctx, filepath.Join(dir, "missing.pdf")))
}

func TestWatcher_loadKnownPrefersLatest(t *testing.T) {
	now := time.Now()
	docs := newMockDocumentService(
		domain.Document{ID: "old", Filename: "report.pdf", ModifiedAt: now.Add(-time.Hour)},
		domain.Document{ID: "new", Filename: "report.pdf", ModifiedAt: now},
		domain.Document{ID: "other", Filename: "slides.pptx", ModifiedAt: now},
	)
	w := New(t.TempDir(), docs)

	require.NoError(t, w.loadKnown(context.Background()))

	assert.Equal(t, "new", w.known["report.pdf"])
	assert.Equal(t, "other", w.known["slides.pptx"])
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.pdf"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "known.pdf"), []byte("known"), 0o644))

	docs := newMockDocumentService(domain.Document{ID: "doc-known", Filename: "known.pdf"})
	w := New(dir, docs, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The initial scan uploads files without a document.
	assert.Eventually(t, func() bool {
		uploads, _ := docs.snapshot()
		return len(uploads) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.pdf"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "known.pdf"), []byte("changed"), 0o644))

	assert.Eventually(t, func() bool {
		uploads, updates := docs.snapshot()
		return len(uploads) == 2 && len(updates) == 1
	}, 2*time.Second, 10*time.Millisecond)

	uploads, updates := docs.snapshot()
	assert.ElementsMatch(t, []string{"existing.pdf", "dropped.pdf"}, uploads)
	assert.Equal(t, []string{"doc-known"}, updates)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_RunErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		w := New(filepath.Join(t.TempDir(), "nope"), newMockDocumentService())
		assert.Error(t, w.Run(context.Background()))
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		w := New(file, newMockDocumentService())
		assert.Error(t, w.Run(context.Background()))
	})

	t.Run("list fails", func(t *testing.T) {
		docs := newMockDocumentService()
		docs.listErr = domain.ErrStorage
		w := New(t.TempDir(), docs)
		assert.ErrorIs(t, w.Run(context.Background()), domain.ErrStorage)
	})
}

// Package watch turns an inbox directory into a document source: files
// dropped into the directory are uploaded, and rewriting a file replaces
// the document's content. Both raise change events through the document
// service, which queues conversions.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
// Editors and copy tools write files in several chunks.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period before ingesting a file.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher uploads files from an inbox directory.
type Watcher struct {
	dir       string
	documents driving.DocumentService
	debounce  time.Duration

	mu      sync.Mutex
	known   map[string]string // filename -> document ID
	pending map[string]*time.Timer

	ingestMu sync.Mutex
}

// New creates a watcher for dir.
func New(dir string, documents driving.DocumentService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		documents: documents,
		debounce:  DefaultDebounce,
		known:     make(map[string]string),
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled. Files already in the
// directory that have no document yet are uploaded first.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("inbox %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox %s: not a directory", w.dir)
	}

	if err := w.loadKnown(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.scan(ctx)
	logger.Info("watch: watching %s", w.dir)

	defer w.cancelPending()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(event); ok {
				w.schedule(ctx, path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// handleEvent returns the path to ingest for events that create or
// rewrite a regular, visible file directly inside the inbox.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return "", false
	}
	if ignored(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the quiet-period timer of a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.ingest(ctx, path); err != nil {
			logger.Warn("watch: %v", err)
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ingest uploads a new file or replaces the content of a known one.
func (w *Watcher) ingest(ctx context.Context, path string) error {
	w.ingestMu.Lock()
	defer w.ingestMu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)

	w.mu.Lock()
	id, known := w.known[name]
	w.mu.Unlock()

	if known {
		_, err := w.documents.Update(ctx, id, content)
		switch {
		case err == nil:
			logger.Info("watch: updated %s (%s)", name, id)
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("update %s: %w", name, err)
		}
		// The document was deleted; upload it again.
	}

	doc, err := w.documents.Upload(ctx, name, "", content)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	w.mu.Lock()
	w.known[name] = doc.ID
	w.mu.Unlock()
	logger.Info("watch: uploaded %s as %s", name, doc.ID)
	return nil
}

// loadKnown maps filenames to the most recently modified document.
func (w *Watcher) loadKnown(ctx context.Context) error {
	docs, err := w.documents.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	latest := make(map[string]time.Time, len(docs))

	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range docs {
		name := docs[i].Filename
		if at, ok := latest[name]; ok && !docs[i].ModifiedAt.After(at) {
			continue
		}
		latest[name] = docs[i].ModifiedAt
		w.known[name] = docs[i].ID
	}
	return nil
}

// scan uploads files present in the inbox that have no document.
func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("watch: scan %s: %v", w.dir, err)
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || ignored(entry.Name()) {
			continue
		}
		w.mu.Lock()
		_, known := w.known[entry.Name()]
		w.mu.Unlock()
		if known {
			continue
		}
		if err := w.ingest(ctx, filepath.Join(w.dir, entry.Name())); err != nil {
			logger.Warn("watch: %v", err)
		}
	}
}

// ignored reports hidden files and common partial-download suffixes.
func ignored(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return true
	}
	for _, suffix := range []string{".tmp", ".part", ".crdownload", ".swp", "~"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

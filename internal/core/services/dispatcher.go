package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.Dispatcher = (*Dispatcher)(nil)

// Dispatcher enqueues one conversion job per document event. It runs on
// the caller's request path, so it never converts anything itself.
type Dispatcher struct {
	documents driven.DocumentStore
	settings  driving.SettingsService
	registry  *FormatRegistry
	queue     driven.JobQueue
	converter driving.ConverterService
	now       func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	documents driven.DocumentStore,
	settings driving.SettingsService,
	registry *FormatRegistry,
	queue driven.JobQueue,
	converter driving.ConverterService,
) *Dispatcher {
	return &Dispatcher{
		documents: documents,
		settings:  settings,
		registry:  registry,
		queue:     queue,
		converter: converter,
		now:       time.Now,
	}
}

// OnDocumentChanged queues a conversion for a created or modified document.
// Nothing is queued when auto-convert is off or the type is unsupported.
func (d *Dispatcher) OnDocumentChanged(ctx context.Context, documentID, contentHash string) error {
	global := d.settings.Global()
	if !global.AutoConvert {
		logger.Debug("dispatch %s: auto-convert disabled", documentID)
		return nil
	}
	doc, err := d.documents.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", documentID, err)
	}
	if !d.registry.Supports(doc.FileType()) {
		logger.Debug("dispatch %s: unsupported type %q", documentID, doc.Filename)
		return nil
	}
	return d.enqueue(ctx, documentID, contentHash, global, false)
}

// OnDocumentDeleted removes the document's artifacts and metadata.
func (d *Dispatcher) OnDocumentDeleted(ctx context.Context, documentID string) error {
	return d.converter.Delete(ctx, documentID)
}

// RequestConversion queues a conversion regardless of auto-convert.
func (d *Dispatcher) RequestConversion(ctx context.Context, documentID string, force bool) error {
	doc, err := d.documents.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", documentID, err)
	}
	if !d.registry.Supports(doc.FileType()) {
		return fmt.Errorf("dispatch %s: %w: %q", documentID, domain.ErrUnsupportedType, doc.Filename)
	}
	return d.enqueue(ctx, documentID, "", d.settings.Global(), force)
}

// EnqueueStale queues a job for every document CanConvert reports stale.
// serve runs it at startup to pick up documents stored while no worker was
// running. Nothing is queued when auto-convert is off.
func (d *Dispatcher) EnqueueStale(ctx context.Context) (int, error) {
	global := d.settings.Global()
	if !global.AutoConvert {
		logger.Debug("stale sweep: auto-convert disabled")
		return 0, nil
	}
	docs, err := d.documents.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("stale sweep: %w", err)
	}
	queued := 0
	for i := range docs {
		doc, err := d.documents.GetDocument(ctx, docs[i].ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return queued, fmt.Errorf("stale sweep: %w", err)
		}
		stale, err := d.converter.CanConvert(ctx, doc)
		if err != nil {
			return queued, fmt.Errorf("stale sweep %s: %w", doc.ID, err)
		}
		if !stale {
			continue
		}
		if err := d.enqueue(ctx, doc.ID, "", global, false); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// enqueue validates the snapshot so a configuration error reaches the
// operator at event time rather than only in a worker log.
func (d *Dispatcher) enqueue(
	ctx context.Context,
	documentID, contentHash string,
	global domain.GlobalSettings,
	force bool,
) error {
	if err := global.Validate(); err != nil {
		return fmt.Errorf("dispatch %s: %w", documentID, err)
	}
	job := &domain.ConversionJob{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		ContentHash: contentHash,
		Settings:    global,
		Force:       force,
		EnqueuedAt:  d.now(),
	}
	if err := d.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("dispatch %s: %w", documentID, err)
	}
	logger.Debug("queued job %s for %s", job.ID, documentID)
	return nil
}

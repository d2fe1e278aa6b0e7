package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Ensure ConverterService implements the interface.
var _ driving.ConverterService = (*ConverterService)(nil)

// ConverterService runs the conversion state machine:
// NotConverted -> Converting -> Converted(success) | Converted(failure).
//
// All reads and writes of one document's status and artifacts happen
// under that document's key lock, so redelivered or concurrent jobs for
// the same content perform the conversion at most once.
type ConverterService struct {
	documents driven.DocumentStore
	metadata  driven.MetadataStore
	artifacts driven.ArtifactStoreFactory
	registry  *FormatRegistry
	hasher    driven.Hasher
	indexer   driven.Indexer
	locks     *KeyLock
	now       func() time.Time

	mu         sync.Mutex
	converting map[string]struct{}
}

// NewConverterService creates a converter service.
// Pass the KeyLock shared with the SettingsService.
func NewConverterService(
	documents driven.DocumentStore,
	metadata driven.MetadataStore,
	artifacts driven.ArtifactStoreFactory,
	registry *FormatRegistry,
	hasher driven.Hasher,
	indexer driven.Indexer,
	locks *KeyLock,
) *ConverterService {
	if locks == nil {
		locks = NewKeyLock()
	}
	return &ConverterService{
		documents:  documents,
		metadata:   metadata,
		artifacts:  artifacts,
		registry:   registry,
		hasher:     hasher,
		indexer:    indexer,
		locks:      locks,
		now:        time.Now,
		converting: make(map[string]struct{}),
	}
}

// CanConvert reports whether the document needs a conversion run.
func (s *ConverterService) CanConvert(ctx context.Context, doc *domain.Document) (bool, error) {
	if doc == nil {
		return false, domain.ErrInvalidInput
	}
	if !s.registry.Supports(doc.FileType()) {
		return false, nil
	}
	meta, err := s.loadMetadata(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	return isStale(meta, s.hasher.Hash(doc.Content)), nil
}

// Convert converts a document if it is stale and returns its status.
func (s *ConverterService) Convert(
	ctx context.Context,
	documentID string,
	global domain.GlobalSettings,
	opts driving.ConvertOptions,
) (*domain.ConversionStatus, error) {
	unlock, err := s.locks.Lock(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	meta, err := s.loadMetadata(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// The local override is read now, under the lock, so a change made
	// after the job was queued still applies.
	effective, err := domain.Resolve(global, meta.LocalOverride())
	if err != nil {
		return nil, fmt.Errorf("resolve settings of %s: %w", documentID, err)
	}

	fingerprint := s.hasher.Hash(doc.Content)
	fileType := doc.FileType()

	converter, ok := s.registry.Lookup(fileType)
	if !ok {
		if meta != nil && meta.Status != nil && !meta.Status.SuccessfullyConverted &&
			meta.Status.Fingerprint == fingerprint {
			return cloneStatus(meta.Status), nil
		}
		return s.recordFailure(ctx, documentID, meta, fingerprint,
			fmt.Errorf("%w: no converter for %q", domain.ErrUnsupportedType, doc.Filename))
	}

	if !opts.Force && !isStale(meta, fingerprint) {
		logger.Debug("convert %s: up to date", documentID)
		return cloneStatus(meta.Status), nil
	}

	s.setConverting(documentID, true)
	defer s.setConverting(documentID, false)

	logger.Info("converting %s (%s via %s)", documentID, fileType, converter.Name())
	started := s.now()

	pages, err := s.runConverter(ctx, converter, doc, effective)
	if err != nil {
		return s.recordFailure(ctx, documentID, meta, fingerprint, err)
	}

	store, err := s.artifacts.Open(effective.Location())
	if err != nil {
		return s.recordFailure(ctx, documentID, meta, fingerprint, fmt.Errorf("%w: %w", domain.ErrStorage, err))
	}
	if err := writeArtifacts(ctx, store, documentID, pages, effective.ImageFormat); err != nil {
		return s.recordFailure(ctx, documentID, meta, fingerprint, err)
	}

	updated := meta.Clone()
	if updated == nil {
		updated = &domain.Metadata{DocumentID: documentID}
	}
	previous := updated.Storage
	updated.Storage = store.Location()
	updated.Status = &domain.ConversionStatus{
		Fingerprint:           fingerprint,
		SuccessfullyConverted: true,
		NumPages:              len(pages),
		ConvertedAt:           s.now(),
	}

	if effective.ShouldAutoLayout(fileType) && doc.Layout != domain.LayoutViewer {
		if err := s.documents.SetLayout(ctx, documentID, domain.LayoutViewer); err != nil {
			logger.Warn("convert %s: set layout: %v", documentID, err)
		}
	}

	updated.Catalog = nil
	if effective.EnableIndexation {
		updated.Catalog = s.buildCatalog(documentID, pages)
	}

	if err := s.metadata.SaveMetadata(ctx, updated); err != nil {
		return nil, fmt.Errorf("save status of %s: %w", documentID, err)
	}

	if !previous.IsZero() && previous != updated.Storage {
		s.deleteArtifacts(ctx, documentID, previous)
	}

	logger.Info("converted %s: %d pages in %s", documentID, len(pages), s.now().Sub(started).Round(time.Millisecond))
	return cloneStatus(updated.Status), nil
}

// State returns the state machine position of a document.
func (s *ConverterService) State(ctx context.Context, documentID string) (domain.ConversionState, error) {
	if _, err := s.documents.GetDocument(ctx, documentID); err != nil {
		return "", err
	}
	s.mu.Lock()
	_, busy := s.converting[documentID]
	s.mu.Unlock()
	if busy {
		return domain.StateConverting, nil
	}
	meta, err := s.loadMetadata(ctx, documentID)
	if err != nil {
		return "", err
	}
	return meta.State(), nil
}

// Metadata returns the stored annotation record, or nil if none exists.
func (s *ConverterService) Metadata(ctx context.Context, documentID string) (*domain.Metadata, error) {
	return s.loadMetadata(ctx, documentID)
}

// Delete removes a document's artifacts and metadata.
func (s *ConverterService) Delete(ctx context.Context, documentID string) error {
	unlock, err := s.locks.Lock(ctx, documentID)
	if err != nil {
		return err
	}
	defer unlock()

	meta, err := s.loadMetadata(ctx, documentID)
	if err != nil {
		return err
	}
	if meta != nil && !meta.Storage.IsZero() {
		store, err := s.artifacts.Open(meta.Storage)
		if err != nil {
			return fmt.Errorf("open artifacts of %s: %w", documentID, err)
		}
		if err := store.Delete(ctx, documentID); err != nil {
			return fmt.Errorf("delete artifacts of %s: %w", documentID, err)
		}
	}
	if err := s.metadata.DeleteMetadata(ctx, documentID); err != nil {
		return fmt.Errorf("delete metadata of %s: %w", documentID, err)
	}
	return nil
}

// runConverter calls the strategy bounded by the conversion timeout.
// A strategy that ignores cancellation is abandoned when the deadline
// passes; a panic is turned into a conversion failure.
func (s *ConverterService) runConverter(
	ctx context.Context,
	converter driven.FormatConverter,
	doc *domain.Document,
	effective domain.EffectiveSettings,
) ([]domain.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, effective.ConversionTimeout)
	defer cancel()

	type result struct {
		pages []domain.Page
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %s panicked: %v", domain.ErrConversionFailed, converter.Name(), r)}
			}
		}()
		pages, err := converter.Convert(ctx, doc.Content, driven.ConvertOptions{
			ImageFormat: effective.ImageFormat,
			Extension:   filepath.Ext(doc.Filename),
		})
		done <- result{pages: pages, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", domain.ErrConversionTimeout, effective.ConversionTimeout)
		}
		if errors.Is(res.err, domain.ErrConversionFailed) || errors.Is(res.err, context.Canceled) {
			return nil, res.err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrConversionFailed, res.err)
	}
	if len(res.pages) == 0 {
		return nil, fmt.Errorf("%w: %s produced no pages", domain.ErrConversionFailed, converter.Name())
	}
	return res.pages, nil
}

// writeArtifacts persists pages as one batch. Any error aborts the
// batch and leaves the committed set untouched.
func writeArtifacts(
	ctx context.Context,
	store driven.ArtifactStore,
	documentID string,
	pages []domain.Page,
	format domain.ImageFormat,
) (err error) {
	batch, err := store.Begin(ctx, documentID, format)
	if err != nil {
		return storageError(fmt.Errorf("begin batch: %w", err))
	}
	defer func() {
		if err != nil {
			if abortErr := batch.Abort(context.WithoutCancel(ctx)); abortErr != nil {
				logger.Warn("abort batch of %s: %v", documentID, abortErr)
			}
		}
	}()

	for i := range pages {
		for _, kind := range domain.AllArtifactKinds() {
			if err := batch.Write(ctx, kind, i+1, pages[i].Artifact(kind)); err != nil {
				return storageError(fmt.Errorf("write %s page %d: %w", kind, i+1, err))
			}
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return storageError(fmt.Errorf("commit batch: %w", err))
	}
	return nil
}

// recordFailure keeps the previous status and artifacts and adds the
// error marker. The record is saved even if ctx was cancelled.
func (s *ConverterService) recordFailure(
	ctx context.Context,
	documentID string,
	meta *domain.Metadata,
	fingerprint string,
	cause error,
) (*domain.ConversionStatus, error) {
	logger.Error("conversion of %s failed: %v", documentID, cause)

	updated := meta.Clone()
	if updated == nil {
		updated = &domain.Metadata{DocumentID: documentID}
	}
	status := domain.ConversionStatus{Fingerprint: fingerprint, ConvertedAt: s.now()}
	if updated.Status != nil {
		status = *updated.Status
	}
	status.SuccessfullyConverted = false
	status.LastError = cause.Error()
	updated.Status = &status

	if err := s.metadata.SaveMetadata(context.WithoutCancel(ctx), updated); err != nil {
		return nil, fmt.Errorf("save status of %s: %w", documentID, err)
	}
	return cloneStatus(updated.Status), nil
}

// buildCatalog indexes the page text. A failure degrades to no catalog
// and never fails the run.
func (s *ConverterService) buildCatalog(documentID string, pages []domain.Page) *domain.Catalog {
	if s.indexer == nil {
		return nil
	}
	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.Text
	}
	catalog, err := s.indexer.Build(texts)
	if err != nil {
		logger.Warn("index %s: %v", documentID, err)
		return nil
	}
	logger.Debug("indexed %s: %d words", documentID, len(catalog.Words()))
	return catalog
}

func (s *ConverterService) deleteArtifacts(ctx context.Context, documentID string, location domain.ArtifactLocation) {
	store, err := s.artifacts.Open(location)
	if err == nil {
		err = store.Delete(ctx, documentID)
	}
	if err != nil {
		logger.Warn("delete old artifacts of %s in %s: %v", documentID, location.Type, err)
	}
}

func (s *ConverterService) loadMetadata(ctx context.Context, documentID string) (*domain.Metadata, error) {
	meta, err := s.metadata.GetMetadata(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load metadata of %s: %w", documentID, err)
	}
	return meta, nil
}

func (s *ConverterService) setConverting(documentID string, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if busy {
		s.converting[documentID] = struct{}{}
	} else {
		delete(s.converting, documentID)
	}
}

// isStale is the staleness check: no status, different content or a
// failed last attempt.
func isStale(meta *domain.Metadata, fingerprint string) bool {
	if meta == nil || meta.Status == nil {
		return true
	}
	return meta.Status.Fingerprint != fingerprint || !meta.Status.SuccessfullyConverted
}

func storageError(err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func cloneStatus(status *domain.ConversionStatus) *domain.ConversionStatus {
	if status == nil {
		return nil
	}
	c := *status
	return &c
}

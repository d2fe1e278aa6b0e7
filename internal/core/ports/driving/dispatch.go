package driving

import "context"

// Dispatcher turns document events into queued conversion jobs.
// Calls return once the job is queued and never wait for conversion.
type Dispatcher interface {
	// OnDocumentChanged handles a create or modify event.
	OnDocumentChanged(ctx context.Context, documentID, contentHash string) error

	// OnDocumentDeleted removes the document's artifacts and metadata.
	OnDocumentDeleted(ctx context.Context, documentID string) error

	// RequestConversion queues a conversion regardless of auto-convert.
	// With force set the worker bypasses the staleness check.
	RequestConversion(ctx context.Context, documentID string, force bool) error

	// EnqueueStale queues every stored document that needs a conversion
	// run and returns how many were queued.
	EnqueueStale(ctx context.Context) (int, error)
}

// WorkerPool runs queued conversion jobs in the background.
type WorkerPool interface {
	// Start begins processing jobs.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all workers, waiting for running jobs.
	Stop() error
}

package driven

import (
	"context"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// JobQueue transports conversion jobs from the dispatcher to workers.
// Delivery is at-least-once; consumers tolerate duplicates.
type JobQueue interface {
	// Enqueue adds a job. It does not wait for the job to run.
	Enqueue(ctx context.Context, job *domain.ConversionJob) error

	// Dequeue blocks until a job is available or ctx is done.
	// Returns domain.ErrQueueClosed once the queue is closed and drained.
	Dequeue(ctx context.Context) (*domain.ConversionJob, error)

	// Close stops accepting jobs and releases resources.
	Close() error
}

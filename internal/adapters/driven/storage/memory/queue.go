package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
)

// Ensure JobQueue implements the interface.
var _ driven.JobQueue = (*JobQueue)(nil)

// JobQueue is a buffered channel job queue for single-process deployments.
type JobQueue struct {
	jobs chan *domain.ConversionJob

	mu     sync.RWMutex
	closed bool
}

// NewJobQueue creates a queue holding up to size pending jobs.
func NewJobQueue(size int) *JobQueue {
	if size < 1 {
		size = 1
	}
	return &JobQueue{
		jobs: make(chan *domain.ConversionJob, size),
	}
}

// Enqueue adds a job, blocking while the queue is full.
func (q *JobQueue) Enqueue(ctx context.Context, job *domain.ConversionJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return domain.ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue job %s: %w", job.ID, ctx.Err())
	}
}

// Dequeue blocks until a job is available.
func (q *JobQueue) Dequeue(ctx context.Context) (*domain.ConversionJob, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, domain.ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of pending jobs.
func (q *JobQueue) Len() int {
	return len(q.jobs)
}

// Close stops accepting jobs. Pending jobs can still be dequeued.
func (q *JobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}

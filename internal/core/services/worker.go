package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Ensure WorkerPool implements the interface.
var _ driving.WorkerPool = (*WorkerPool)(nil)

// dequeueRetryDelay is the pause after a queue error before polling again.
const dequeueRetryDelay = time.Second

// WorkerPool runs conversion jobs from a shared queue on N goroutines.
// A failing or panicking job is logged and never stops the pool.
type WorkerPool struct {
	config    domain.WorkerConfig
	queue     driven.JobQueue
	converter driving.ConverterService
	limiter   *rate.Limiter

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a worker pool with configuration.
func NewWorkerPool(config domain.WorkerConfig, queue driven.JobQueue, converter driving.ConverterService) *WorkerPool {
	if config.Workers < 1 {
		config.Workers = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Workers)
	}
	return &WorkerPool{
		config:    config,
		queue:     queue,
		converter: converter,
		limiter:   limiter,
	}
}

// Start runs the workers. This method blocks until Stop is called, ctx
// is cancelled or the queue is closed. Cancelling ctx also cancels
// running conversions; Stop lets them finish.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil // Already running
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("worker pool: starting %d workers", p.config.Workers)
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, pollCtx, i+1)
	}
	p.mu.Unlock()

	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-pollCtx.Done():
		}
	}()

	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return ctx.Err()
}

// Stop gracefully shuts down the pool, waiting for running jobs.
func (p *WorkerPool) Stop() error {
	p.mu.Lock()
	if !p.running || p.stopCh == nil {
		p.mu.Unlock()
		return nil
	}
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Processed returns the number of jobs that completed, successful or not.
func (p *WorkerPool) Processed() int64 {
	return p.processed.Load()
}

// Failed returns the number of jobs that ended in an error or failed status.
func (p *WorkerPool) Failed() int64 {
	return p.failed.Load()
}

// work is one worker loop. Jobs run with jobCtx so Stop does not abort
// them; pollCtx ends the loop.
func (p *WorkerPool) work(jobCtx, pollCtx context.Context, id int) {
	defer p.wg.Done()

	for {
		if err := p.limiter.Wait(pollCtx); err != nil {
			return
		}
		job, err := p.queue.Dequeue(pollCtx)
		if err != nil {
			if pollCtx.Err() != nil || errors.Is(err, domain.ErrQueueClosed) {
				return
			}
			logger.Error("worker %d: dequeue: %v", id, err)
			select {
			case <-pollCtx.Done():
				return
			case <-time.After(dequeueRetryDelay):
			}
			continue
		}
		p.run(jobCtx, id, job)
	}
}

// run executes one job in isolation.
func (p *WorkerPool) run(ctx context.Context, id int, job *domain.ConversionJob) {
	defer p.processed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			logger.Error("worker %d: job %s for %s panicked: %v", id, job.ID, job.DocumentID, r)
		}
	}()

	logger.Debug("worker %d: job %s for %s (queued %s ago)", id, job.ID, job.DocumentID,
		time.Since(job.EnqueuedAt).Round(time.Millisecond))

	status, err := p.converter.Convert(ctx, job.DocumentID, job.Settings, driving.ConvertOptions{Force: job.Force})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("worker %d: %s was deleted before conversion", id, job.DocumentID)
	case err != nil:
		p.failed.Add(1)
		logger.Error("worker %d: job %s for %s: %v", id, job.ID, job.DocumentID, err)
	case !status.SuccessfullyConverted:
		p.failed.Add(1)
		logger.Warn("worker %d: %s not converted: %s", id, job.DocumentID, status.LastError)
	}
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Ensure JobQueue implements the interface.
var _ driven.JobQueue = (*JobQueue)(nil)

const (
	// DefaultKey is the list holding pending jobs.
	DefaultKey = "documentviewer:jobs"

	// DefaultPollTimeout bounds each BRPOP so Dequeue notices Close.
	DefaultPollTimeout = time.Second

	pingTimeout = 5 * time.Second
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string

	// PollTimeout is the BRPOP timeout. Zero uses DefaultPollTimeout.
	PollTimeout time.Duration
}

// JobQueue is a Redis list job queue.
type JobQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
	closed      atomic.Bool
}

// NewJobQueue connects to Redis and verifies the connection.
func NewJobQueue(cfg Config) (*JobQueue, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrConfiguration)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	poll := cfg.PollTimeout
	if poll <= 0 {
		poll = DefaultPollTimeout
	}
	return &JobQueue{client: client, key: key, pollTimeout: poll}, nil
}

// Enqueue pushes the job onto the list.
func (q *JobQueue) Enqueue(ctx context.Context, job *domain.ConversionJob) error {
	if q.closed.Load() {
		return domain.ErrQueueClosed
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Dequeue pops the oldest job, waiting until one is available.
// Payloads that cannot be decoded are dropped.
func (q *JobQueue) Dequeue(ctx context.Context) (*domain.ConversionJob, error) {
	for {
		if q.closed.Load() {
			return nil, domain.ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case errors.Is(err, redis.ErrClosed):
			return nil, domain.ErrQueueClosed
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("dequeue: %w", err)
		}

		// BRPOP replies with [key, value].
		if len(res) != 2 {
			continue
		}
		var job domain.ConversionJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			logger.Warn("redis queue: dropping malformed job: %v", err)
			continue
		}
		return &job, nil
	}
}

// Len returns the number of pending jobs.
func (q *JobQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Close stops the queue and closes the connection. Pending jobs stay in
// Redis for the next consumer.
func (q *JobQueue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	return q.client.Close()
}

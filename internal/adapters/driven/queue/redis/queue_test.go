package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// startRedis runs a Redis container for the test and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if !isDockerAvailable() {
		t.Skip("Docker not available")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

// isDockerAvailable checks if Docker is available for testing.
func isDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.Client().Ping(ctx)
	return err == nil
}

func newJob(id, docID string) *domain.ConversionJob {
	return &domain.ConversionJob{
		ID:          id,
		DocumentID:  docID,
		ContentHash: "hash-" + docID,
		Settings:    domain.DefaultGlobalSettings(),
		EnqueuedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestNewJobQueue_RequiresAddr(t *testing.T) {
	_, err := NewJobQueue(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestJobQueue_FIFO(t *testing.T) {
	addr := startRedis(t)
	q, err := NewJobQueue(Config{Addr: addr, Key: "test:fifo", PollTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	first := newJob("job-1", "doc-1")
	first.Force = true
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, newJob("job-2", "doc-2")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.True(t, got.Force)
	assert.Equal(t, first.Settings, got.Settings)
	assert.True(t, first.EnqueuedAt.Equal(got.EnqueuedAt))

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-2", got.ID)
}

func TestJobQueue_DequeueWaitsAndHonoursContext(t *testing.T) {
	addr := startRedis(t)
	q, err := NewJobQueue(Config{Addr: addr, Key: "test:wait", PollTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = q.Enqueue(context.Background(), newJob("late", "doc-late"))
	}()
	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", got.ID)
}

func TestJobQueue_SkipsMalformedPayloads(t *testing.T) {
	addr := startRedis(t)
	q, err := NewJobQueue(Config{Addr: addr, Key: "test:malformed", PollTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	raw := goredis.NewClient(&goredis.Options{Addr: addr})
	defer raw.Close()
	require.NoError(t, raw.LPush(ctx, "test:malformed", "{not json").Err())
	require.NoError(t, q.Enqueue(ctx, newJob("good", "doc-1")))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "good", got.ID)
}

func TestJobQueue_Close(t *testing.T) {
	addr := startRedis(t)
	q, err := NewJobQueue(Config{Addr: addr, Key: "test:close"})
	require.NoError(t, err)

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Enqueue(context.Background(), newJob("x", "doc")), domain.ErrQueueClosed)
	_, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_ProcessesAllJobs(t *testing.T) {
	q := NewMemoryQueue(Options{Workers: 3, BufferSize: 64}, zerolog.Nop())

	var handled atomic.Int32
	q.Start(func(ctx context.Context, job Job) error {
		handled.Add(1)
		return nil
	})

	for i := 0; i < 50; i++ {
		job, err := NewJob("notify", map[string]int{"n": i})
		require.NoError(t, err)
		require.NoError(t, q.Enqueue(context.Background(), job))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))
	require.Equal(t, int32(50), handled.Load())
}

func TestMemoryQueue_FullBufferDoesNotBlock(t *testing.T) {
	q := NewMemoryQueue(Options{Workers: 1, BufferSize: 2}, zerolog.Nop())

	require.NoError(t, q.Enqueue(context.Background(), Job{Topic: "a"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Topic: "b"}))
	require.ErrorIs(t, q.Enqueue(context.Background(), Job{Topic: "c"}), ErrQueueFull)
	require.Equal(t, 2, q.Len())
}

func TestMemoryQueue_EnqueueAfterClose(t *testing.T) {
	q := NewMemoryQueue(Options{}, zerolog.Nop())
	q.Start(func(context.Context, Job) error { return nil })
	require.NoError(t, q.Close(context.Background()))

	require.ErrorIs(t, q.Enqueue(context.Background(), Job{Topic: "late"}), ErrQueueClosed)
	// closing twice is harmless
	require.NoError(t, q.Close(context.Background()))
}

func TestMemoryQueue_FailuresDoNotStopWorkers(t *testing.T) {
	q := NewMemoryQueue(Options{Workers: 1, BufferSize: 8}, zerolog.Nop())

	var mu sync.Mutex
	var topics []string
	q.Start(func(ctx context.Context, job Job) error {
		mu.Lock()
		topics = append(topics, job.Topic)
		mu.Unlock()
		switch job.Topic {
		case "error":
			return errors.New("boom")
		case "panic":
			panic("boom")
		}
		return nil
	})

	for _, topic := range []string{"error", "panic", "ok"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Topic: topic}))
	}
	require.NoError(t, q.Close(context.Background()))
	require.Equal(t, []string{"error", "panic", "ok"}, topics)
}

func TestMemoryQueue_JobGetsDeadline(t *testing.T) {
	q := NewMemoryQueue(Options{Workers: 1, JobTimeout: 20 * time.Millisecond}, zerolog.Nop())

	errs := make(chan error, 1)
	q.Start(func(ctx context.Context, job Job) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	})
	require.NoError(t, q.Enqueue(context.Background(), Job{Topic: "slow"}))

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("job context never expired")
	}
	require.NoError(t, q.Close(context.Background()))
}

func TestMemoryQueue_CloseHonoursContext(t *testing.T) {
	q := NewMemoryQueue(Options{Workers: 1}, zerolog.Nop())

	release := make(chan struct{})
	q.Start(func(context.Context, Job) error {
		<-release
		return nil
	})
	require.NoError(t, q.Enqueue(context.Background(), Job{Topic: "stuck"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Close(ctx), context.DeadlineExceeded)
	close(release)
}

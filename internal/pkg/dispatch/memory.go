package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MemoryQueue is a buffered channel drained by a fixed pool of goroutines
type MemoryQueue struct {
	opts   Options
	jobs   chan Job
	logger zerolog.Logger

	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewMemoryQueue creates an in-process queue. Workers do not run until Start.
func NewMemoryQueue(opts Options, logger zerolog.Logger) *MemoryQueue {
	opts = opts.withDefaults()
	return &MemoryQueue{
		opts:   opts,
		jobs:   make(chan Job, opts.BufferSize),
		logger: logger.With().Str("queue", "memory").Logger(),
	}
}

// Enqueue adds a job without blocking. A full buffer returns ErrQueueFull.
func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers once
func (q *MemoryQueue) Start(handler Handler) {
	q.startOnce.Do(func() {
		for i := 0; i < q.opts.Workers; i++ {
			q.wg.Add(1)
			go func() {
				defer q.wg.Done()
				for job := range q.jobs {
					runJob(handler, job, q.opts.JobTimeout, q.logger)
				}
			}()
		}
		q.logger.Info().Int("workers", q.opts.Workers).Int("buffer", q.opts.BufferSize).Msg("Dispatch workers started")
	})
}

// Close stops accepting jobs and waits for buffered jobs to finish or ctx to expire
func (q *MemoryQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	return waitGroupDone(ctx, q.wg.Wait)
}

// Len returns the number of buffered jobs
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

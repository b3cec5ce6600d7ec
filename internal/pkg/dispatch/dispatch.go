// Package dispatch runs fire-and-forget jobs off the request path.
//
// Producers call Enqueue and never wait for the job to run. Workers started with
// Start pull jobs and pass them to a Handler; handler errors are logged and dropped,
// so a failing job never reaches the producer.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("dispatch: queue is full")
	ErrQueueClosed = errors.New("dispatch: queue is closed")
)

// Job is a unit of deferred work. Payload is opaque to the queue.
type Job struct {
	Topic      string          `json:"topic"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// NewJob marshals payload into a job for topic
func NewJob(topic string, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}
	return Job{Topic: topic, Payload: data, EnqueuedAt: time.Now().UTC()}, nil
}

// Handler processes one job
type Handler func(ctx context.Context, job Job) error

// Queue is implemented by MemoryQueue and RedisQueue
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Start(handler Handler)
	Close(ctx context.Context) error
}

// Options tune the worker pool
type Options struct {
	Workers    int
	BufferSize int
	JobTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.BufferSize < 1 {
		o.BufferSize = 256
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = 5 * time.Second
	}
	return o
}

// runJob executes handler with its own deadline. Panics are recovered so one bad job
// cannot take a worker down.
func runJob(handler Handler, job Job, timeout time.Duration, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("topic", job.Topic).Interface("panic", r).Msg("Dispatch job panicked")
		}
	}()

	if err := handler(ctx, job); err != nil {
		logger.Error().Err(err).
			Str("topic", job.Topic).
			Dur("queued", time.Since(job.EnqueuedAt)).
			Msg("Dispatch job failed")
	}
}

func waitGroupDone(ctx context.Context, wait func()) error {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

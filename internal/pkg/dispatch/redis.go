package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// pollTimeout bounds each BRPOP so workers notice Close promptly
const pollTimeout = 2 * time.Second

// OpenRedis connects to the Redis URL (redis://:pass@host:6379/0) and pings it
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisQueue keeps jobs in a Redis list so they survive a process restart and can be
// consumed by any instance. Producers LPUSH, workers BRPOP.
type RedisQueue struct {
	client *redis.Client
	key    string
	opts   Options
	logger zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewRedisQueue creates a queue on the list at key. The client is owned by the caller.
func NewRedisQueue(client *redis.Client, key string, opts Options, logger zerolog.Logger) *RedisQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisQueue{
		client: client,
		key:    key,
		opts:   opts.withDefaults(),
		logger: logger.With().Str("queue", "redis").Str("key", key).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue pushes the JSON-encoded job onto the list
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Start launches the polling workers once
func (q *RedisQueue) Start(handler Handler) {
	q.startOnce.Do(func() {
		for i := 0; i < q.opts.Workers; i++ {
			q.wg.Add(1)
			go q.work(handler)
		}
		q.logger.Info().Int("workers", q.opts.Workers).Msg("Dispatch workers started")
	})
}

func (q *RedisQueue) work(handler Handler) {
	defer q.wg.Done()

	for q.ctx.Err() == nil {
		res, err := q.client.BRPop(q.ctx, pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if q.ctx.Err() != nil {
				return
			}
			q.logger.Warn().Err(err).Msg("Failed to pop job, retrying")
			select {
			case <-q.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// res is [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.logger.Error().Err(err).Msg("Dropping undecodable job")
			continue
		}
		runJob(handler, job, q.opts.JobTimeout, q.logger)
	}
}

// Close stops the workers. Jobs still in the list stay there for the next consumer.
func (q *RedisQueue) Close(ctx context.Context) error {
	q.closed.Store(true)
	q.cancel()
	return waitGroupDone(ctx, q.wg.Wait)
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue full")

// ErrQueueClosed is returned by Enqueue before Start or after Stop.
var ErrQueueClosed = errors.New("queue closed")

// Job is a unit of background work.
type Job struct {
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue runs jobs on a fixed pool of goroutines. Enqueue never blocks the
// caller, and Stop drains whatever is still buffered before returning.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs chan Job
	wg   sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, lets the workers finish the buffer and waits for them.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands job to the workers without waiting.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(ctx, job)
	}
}

// run retries inline so a draining Stop still sees every attempt.
func (q *Queue) run(ctx context.Context, job Job) {
	for {
		err := q.handler(ctx, job)
		if err == nil {
			return
		}
		job.Attempt++
		if job.Attempt > q.cfg.MaxRetries {
			q.logger.Error("job dropped after retries",
				zap.String("queue", q.name), zap.String("type", job.Type), zap.Int("attempts", job.Attempt), zap.Error(err))
			return
		}
		q.logger.Warn("job failed, retrying",
			zap.String("queue", q.name), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.cfg.RetryDelay):
		}
	}
}

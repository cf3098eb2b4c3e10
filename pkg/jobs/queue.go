package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned when enqueueing on a queue that is not running.
var ErrQueueClosed = errors.New("jobs: queue not running")

// Job is a unit of background work.
type Job struct {
	ID       string
	Kind     string
	Payload  any
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// DeadLetterFunc receives jobs that exhausted their retries.
type DeadLetterFunc func(context.Context, Job, error)

// Config configures the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the first backoff; each further attempt doubles it up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	DeadLetter    DeadLetterFunc
	Logger        *zap.Logger
}

// Stats counts job outcomes since the queue started.
type Stats struct {
	Processed int64
	Retried   int64
	Dead      int64
}

// Queue is an in-memory job dispatcher backed by a goroutine pool.
type Queue struct {
	name    string
	handler Handler
	cfg     Config
	logger  *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	processed atomic.Int64
	retried   atomic.Int64
	dead      atomic.Int64
}

// NewQueue builds a queue; call Start before enqueueing.
func NewQueue(name string, handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = 30 * cfg.RetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
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
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for them to return.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue pushes a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx, running := q.ctx, q.running
	q.mu.Unlock()
	if !running {
		return fmt.Errorf("%w: %s", ErrQueueClosed, q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s", ErrQueueClosed, q.name)
	case q.jobs <- job:
		return nil
	}
}

// Stats returns a snapshot of the outcome counters.
func (q *Queue) Stats() Stats {
	return Stats{Processed: q.processed.Load(), Retried: q.retried.Load(), Dead: q.dead.Load()}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.fail(job, err)
				continue
			}
			q.processed.Add(1)
		}
	}
}

func (q *Queue) backoff(attempt int) time.Duration {
	d := q.cfg.RetryDelay
	for i := 1; i < attempt && d < q.cfg.MaxRetryDelay; i++ {
		d *= 2
	}
	if d > q.cfg.MaxRetryDelay {
		d = q.cfg.MaxRetryDelay
	}
	return d
}

func (q *Queue) fail(job Job, err error) {
	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("kind", job.Kind), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt > q.cfg.MaxRetries {
		q.dead.Add(1)
		q.logger.Error("job exhausted retries", fields...)
		if q.cfg.DeadLetter != nil {
			q.cfg.DeadLetter(q.ctx, job, err)
		}
		return
	}

	q.retried.Add(1)
	q.logger.Warn("job failed, retrying", fields...)
	delay := q.backoff(job.Attempt)
	go func(j Job) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				q.logger.Error("requeue failed", zap.String("job_id", j.ID), zap.Error(err))
			}
		}
	}(job)
}

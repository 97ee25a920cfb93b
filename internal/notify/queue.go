package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("mail queue is shutting down")

// Queue delivers messages on a bounded pool of workers off the request path.
type Queue struct {
	mailer  Mailer
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Message
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Message, n)
		}
	}
}
func WithSendTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(mailer Mailer, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		mailer:  mailer,
		logger:  logger,
		workers: 2,
		timeout: 30 * time.Second,
		ch:      make(chan Message, 128),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				for msg := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.mailer.Send(ctx, msg)
					cancel()

					if err != nil {
						q.logger.Error("mail delivery failed", "worker_id", workerID, "to", msg.To, "subject", msg.Subject, "error", err)
					} else {
						q.logger.Info("mail delivered", "worker_id", workerID, "to", msg.To, "subject", msg.Subject)
					}
				}
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- msg:
		return nil
	default:
	}
	q.logger.Warn("mail queue full, applying backpressure", "to", msg.To)
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting messages and waits for queued ones to drain.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("mail queue shutdown interrupted by context")
	case <-done:
		q.logger.Info("mail queue drained")
	}
}

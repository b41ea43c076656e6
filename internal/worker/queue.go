// Package worker runs day re-analysis requests off the caller's path.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one queued day label.
type Handler func(ctx context.Context, dayLabel string) error

// Queue is a single-worker task queue keyed by day label. Labels already
// waiting are coalesced; a full queue drops the request.
type Queue struct {
	tasks   chan string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]bool
	started bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewQueue creates a queue with the given buffer size and per-task timeout.
func NewQueue(size int, timeout time.Duration, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 16
	}
	return &Queue{
		tasks:   make(chan string, size),
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}
}

// Enqueue schedules dayLabel for processing without blocking.
func (q *Queue) Enqueue(dayLabel string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending[dayLabel] {
		q.logger.Debug("re-analysis already pending", zap.String("day", dayLabel))
		return
	}

	select {
	case q.tasks <- dayLabel:
		q.pending[dayLabel] = true
	default:
		q.logger.Warn("re-analysis queue full, dropping request", zap.String("day", dayLabel))
	}
}

// Start launches the worker goroutine. Calling it twice is a no-op.
func (q *Queue) Start(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	go q.run(ctx, handler)
	q.logger.Info("re-analysis worker started")
}

// Stop cancels the worker and waits for the in-flight task to return.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	<-q.done
	q.logger.Info("re-analysis worker stopped")
}

func (q *Queue) run(ctx context.Context, handler Handler) {
	defer close(q.done)

	for {
		select {
		case <-ctx.Done():
			return
		case label := <-q.tasks:
			q.mu.Lock()
			delete(q.pending, label)
			q.mu.Unlock()

			q.process(ctx, handler, label)
		}
	}
}

func (q *Queue) process(ctx context.Context, handler Handler, label string) {
	taskCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("re-analysis panicked", zap.String("day", label), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := handler(taskCtx, label); err != nil {
		q.logger.Warn("re-analysis failed", zap.String("day", label), zap.Error(err))
		return
	}
	q.logger.Debug("re-analysis completed", zap.String("day", label), zap.Duration("duration", time.Since(start)))
}

package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrQueueFull is returned when an event arrives faster than the sink
// drains them.
var ErrQueueFull = errors.New("events: queue full")

// ErrQueueClosed is returned by Notify after Close.
var ErrQueueClosed = errors.New("events: queue closed")

const (
	defaultQueueSize    = 256
	defaultQueueTimeout = 2 * time.Second
)

// Queue hands events to a slow Notifier without blocking the caller.
// A single goroutine delivers them, so the sink sees events in the order
// Notify accepted them.
type Queue struct {
	next    Notifier
	logger  *log.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	ch     chan Event
	done   chan struct{}
}

// NewQueue starts delivering to next. size and timeout fall back to
// defaults when not positive; timeout bounds each delivery.
func NewQueue(next Notifier, logger *log.Logger, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if timeout <= 0 {
		timeout = defaultQueueTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	q := &Queue{
		next:    next,
		logger:  logger,
		timeout: timeout,
		ch:      make(chan Event, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Notify enqueues ev. It never blocks; ctx is not used.
func (q *Queue) Notify(_ context.Context, ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- ev:
		return nil
	default:
		q.logger.Warn("event dropped", "type", ev.Type, "run", ev.RunID)
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until the queued ones have been
// delivered.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	<-q.done
	return nil
}

func (q *Queue) run() {
	defer close(q.done)
	for ev := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Notify(ctx, ev); err != nil {
			q.logger.Debug("event not delivered", "type", ev.Type, "err", err)
		}
		cancel()
	}
}

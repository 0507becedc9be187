package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vesagent/wire"
)

// Entry is one queued event waiting for delivery.
// Params: Path is the listener path the event is posted to.
// Returns: queue element; Attempts is written only by the worker.
type Entry struct {
	Event      *wire.Event
	Path       string
	EnqueuedAt time.Time
	Attempts   int
}

// QueueConfig holds queue limits.
// Params: Capacity max entries (in flight included); MaxAge rejects admission while the
// oldest entry is older; EnqueueTimeout bounds the wait for space (0 rejects immediately).
// Returns: queue configuration.
type QueueConfig struct {
	Capacity       int
	MaxAge         time.Duration
	EnqueueTimeout time.Duration
}

// Queue is a bounded in-memory FIFO of events awaiting delivery.
// Entries stay counted against capacity until the worker acks them.
type Queue struct {
	mu sync.Mutex

	entries []*Entry
	cfg     QueueConfig
	closed  bool

	// changed is closed and replaced on every mutation to wake waiters.
	changed chan struct{}
	now     func() time.Time
}

// NewQueue creates an empty queue.
// Params: cfg limits; Capacity must be > 0.
// Returns: queue or error on invalid limits.
func NewQueue(cfg QueueConfig) (*Queue, error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("queue capacity must be > 0")
	}
	if cfg.MaxAge < 0 || cfg.EnqueueTimeout < 0 {
		return nil, fmt.Errorf("queue durations must be >= 0")
	}
	return &Queue{
		entries: make([]*Entry, 0, cfg.Capacity),
		cfg:     cfg,
		changed: make(chan struct{}),
		now:     time.Now,
	}, nil
}

// Enqueue appends one event to the queue tail if limits allow.
// Params: ev validated event; path listener path it is posted to.
// Returns: nil on admission, ErrQueueFull, or ErrQueueClosed.
func (q *Queue) Enqueue(ev *wire.Event, path string) error {
	if ev == nil {
		return fmt.Errorf("enqueue: event is nil")
	}

	var deadline *time.Timer
	defer func() {
		if deadline != nil {
			deadline.Stop()
		}
	}()

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		err := q.rejectByLimits(q.now())
		if err == nil {
			q.entries = append(q.entries, &Entry{Event: ev, Path: path, EnqueuedAt: q.now()})
			q.broadcastLocked()
			q.mu.Unlock()
			return nil
		}
		if q.cfg.EnqueueTimeout <= 0 {
			q.mu.Unlock()
			return err
		}
		changed := q.changed
		q.mu.Unlock()

		if deadline == nil {
			deadline = time.NewTimer(q.cfg.EnqueueTimeout)
		}
		select {
		case <-changed:
		case <-deadline.C:
			return err
		}
	}
}

// Wait blocks until at least one entry is pending.
// Params: ctx cancels the wait.
// Returns: nil when entries are pending, ErrQueueClosed when closed and empty, or ctx error.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		if len(q.entries) > 0 {
			q.mu.Unlock()
			return nil
		}
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		changed := q.changed
		q.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// awaitChange blocks until the queue mutates, timeout elapses, or ctx ends.
// Params: ctx lifecycle context; timeout max wait.
// Returns: none.
func (q *Queue) awaitChange(ctx context.Context, timeout time.Duration) {
	q.mu.Lock()
	changed := q.changed
	q.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-changed:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Peek returns the head batch without removing it.
// Params: limit batch size.
// Returns: up to limit contiguous head entries sharing the head's path.
func (q *Queue) Peek(limit int) []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 || limit <= 0 {
		return nil
	}
	path := q.entries[0].Path
	out := make([]*Entry, 0, min(limit, len(q.entries)))
	for _, entry := range q.entries {
		if len(out) == limit || entry.Path != path {
			break
		}
		out = append(out, entry)
	}
	return out
}

// Ack removes n entries from the queue head after terminal success or failure.
// Params: n entry count returned by Peek.
// Returns: error when n exceeds pending entries.
func (q *Queue) Ack(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 {
		return fmt.Errorf("ack requires positive count")
	}
	if n > len(q.entries) {
		return fmt.Errorf("ack %d entries on queue with %d pending", n, len(q.entries))
	}
	remaining := copy(q.entries, q.entries[n:])
	clear(q.entries[remaining:])
	q.entries = q.entries[:remaining]
	q.broadcastLocked()
	return nil
}

// Close stops admission. Pending entries stay available to the worker.
// Params: none.
// Returns: none.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.broadcastLocked()
}

// Closed reports whether admission stopped.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Drain removes and returns every pending entry.
// Params: none.
// Returns: entries in FIFO order.
func (q *Queue) Drain() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.entries
	q.entries = make([]*Entry, 0, q.cfg.Capacity)
	q.broadcastLocked()
	return out
}

// Len returns the pending entry count, in-flight entries included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Capacity returns the configured capacity.
func (q *Queue) Capacity() int {
	return q.cfg.Capacity
}

// rejectByLimits checks queue constraints before append; caller must hold lock.
// Params: now current time.
// Returns: ErrQueueFull if the queue rejects new events.
func (q *Queue) rejectByLimits(now time.Time) error {
	if len(q.entries) >= q.cfg.Capacity {
		return ErrQueueFull
	}
	if q.cfg.MaxAge > 0 && len(q.entries) > 0 {
		if now.Sub(q.entries[0].EnqueuedAt) >= q.cfg.MaxAge {
			return ErrQueueFull
		}
	}
	return nil
}

func (q *Queue) broadcastLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"vesagent/wire"
)

const batchPathSuffix = "/eventBatch"

// RetryPolicy configures exponential backoff between delivery attempts.
// Params: MaxAttempts counts the first attempt; Jitter is the randomization factor (0..1).
// Returns: retry settings.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
}

// WorkerConfig configures batching, request timeout and retries.
// Params: BatchMaxEvents 1 disables batching; BatchMaxAge max wait for a batch to fill.
// Returns: worker settings.
type WorkerConfig struct {
	BatchMaxEvents int
	BatchMaxAge    time.Duration
	Timeout        time.Duration
	Retry          RetryPolicy
}

// Failure reports entries that reached terminal failure.
type Failure struct {
	Entries []*Entry
	Err     error
}

// Observer receives delivery outcomes and collector commands from the worker goroutine.
type Observer interface {
	Delivered(entries []*Entry)
	Failed(failure Failure)
	Commands(commands []Command)
}

type nopObserver struct{}

func (nopObserver) Delivered([]*Entry) {}
func (nopObserver) Failed(Failure)     {}
func (nopObserver) Commands([]Command) {}

// Worker drains the queue and delivers events to the collector.
// One worker per queue; it is the only component doing network I/O.
type Worker struct {
	cfg      WorkerConfig
	queue    *Queue
	sender   Sender
	observer Observer
	logger   *slog.Logger

	now  func() time.Time
	wait func(ctx context.Context, delay time.Duration) error
}

// NewWorker creates a transport worker.
// Params: cfg batching/retry settings; queue source; sender transport; observer outcome sink (nil allowed); logger.
// Returns: worker or error on invalid settings.
func NewWorker(cfg WorkerConfig, queue *Queue, sender Sender, observer Observer, logger *slog.Logger) (*Worker, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if cfg.BatchMaxEvents < 1 {
		return nil, fmt.Errorf("batch max_events must be >= 1")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1")
	}
	if cfg.Retry.Jitter < 0 || cfg.Retry.Jitter > 1 {
		return nil, fmt.Errorf("retry jitter must be in [0,1]")
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		sender:   sender,
		observer: observer,
		logger:   logger,
		now:      time.Now,
		wait:     waitDelay,
	}, nil
}

// Run executes the worker loop: wait, batch, deliver.
// Params: ctx lifecycle context; cancellation is observed between attempts and during backoff.
// Returns: nil once the queue is closed and empty, or ctx error when canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := w.queue.Wait(ctx); err != nil {
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := w.collect(ctx)
		if len(batch) == 0 {
			continue
		}
		if err := w.deliver(ctx, batch); err != nil {
			return err
		}
	}
}

// collect returns the next batch, waiting up to BatchMaxAge for it to fill.
// Params: ctx lifecycle context.
// Returns: head entries sharing one path.
func (w *Worker) collect(ctx context.Context) []*Entry {
	for {
		batch := w.queue.Peek(w.cfg.BatchMaxEvents)
		if len(batch) == 0 || len(batch) >= w.cfg.BatchMaxEvents || w.cfg.BatchMaxAge <= 0 {
			return batch
		}
		// A different path behind the batch or a closed queue means no more entries can join.
		if w.queue.Len() > len(batch) || w.queue.Closed() || ctx.Err() != nil {
			return batch
		}
		remaining := w.cfg.BatchMaxAge - w.now().Sub(batch[0].EnqueuedAt)
		if remaining <= 0 {
			return batch
		}
		w.queue.awaitChange(ctx, remaining)
	}
}

// deliver sends one batch with retries and acks it on a terminal outcome.
// Params: ctx lifecycle context; batch head entries from Peek.
// Returns: ctx error when canceled between attempts; entries then stay queued.
func (w *Worker) deliver(ctx context.Context, batch []*Entry) error {
	path := batch[0].Path
	events := make([]*wire.Event, 0, len(batch))
	for _, entry := range batch {
		events = append(events, entry.Event)
	}
	if len(events) > 1 {
		path += batchPathSuffix
	}

	body, err := wire.EncodeBody(events)
	if err != nil {
		return w.fail(batch, &TransportError{Permanent: true, Err: err})
	}

	retry := w.newBackOff()
	for attempt := 1; ; attempt++ {
		for _, entry := range batch {
			entry.Attempts++
		}

		response, err := w.send(ctx, path, body)
		if err == nil {
			return w.delivered(batch, response)
		}
		if IsPermanent(err) || attempt >= w.cfg.Retry.MaxAttempts {
			return w.fail(batch, err)
		}

		delay := retry.NextBackOff()
		w.logger.Warn(
			"collector send failed, retrying",
			slog.String("path", path),
			slog.Int("events", len(batch)),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.wait(ctx, delay); err != nil {
			return err
		}
	}
}

// send performs one attempt detached from ctx cancellation and bounded by the collector timeout.
// Params: ctx lifecycle context; path listener path; body encoded events.
// Returns: response body or send error.
func (w *Worker) send(ctx context.Context, path string, body []byte) ([]byte, error) {
	sendCtx := context.WithoutCancel(ctx)
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, w.cfg.Timeout)
		defer cancel()
	}
	return w.sender.Send(sendCtx, path, body)
}

func (w *Worker) delivered(batch []*Entry, response []byte) error {
	if err := w.queue.Ack(len(batch)); err != nil {
		w.logger.Error("ack delivered entries failed", slog.String("error", err.Error()))
	}
	w.observer.Delivered(batch)

	commands, err := DecodeCommands(response)
	if err != nil {
		w.logger.Debug("ignoring collector response", slog.String("error", err.Error()))
		return nil
	}
	if len(commands) > 0 {
		w.observer.Commands(commands)
	}
	return nil
}

func (w *Worker) fail(batch []*Entry, err error) error {
	if ackErr := w.queue.Ack(len(batch)); ackErr != nil {
		w.logger.Error("ack failed entries failed", slog.String("error", ackErr.Error()))
	}
	w.logger.Error(
		"collector delivery failed",
		slog.Int("events", len(batch)),
		slog.Int("attempts", batch[0].Attempts),
		slog.String("error", err.Error()),
	)
	w.observer.Failed(Failure{Entries: batch, Err: err})
	return nil
}

// newBackOff builds the exponential backoff for one batch.
// Params: none.
// Returns: backoff positioned at the initial interval.
func (w *Worker) newBackOff() *backoff.ExponentialBackOff {
	retry := backoff.NewExponentialBackOff()
	if w.cfg.Retry.InitialInterval > 0 {
		retry.InitialInterval = w.cfg.Retry.InitialInterval
	}
	if w.cfg.Retry.MaxInterval > 0 {
		retry.MaxInterval = w.cfg.Retry.MaxInterval
	}
	if w.cfg.Retry.Multiplier >= 1 {
		retry.Multiplier = w.cfg.Retry.Multiplier
	}
	retry.RandomizationFactor = w.cfg.Retry.Jitter
	retry.Reset()
	return retry
}

// waitDelay sleeps for delay or until ctx ends.
// Params: ctx lifecycle context; delay backoff duration.
// Returns: ctx error when canceled first.
func waitDelay(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

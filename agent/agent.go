// Package agent is the producer-facing entry point: it validates events,
// queues them and delivers them to the VES collector in the background.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"vesagent/event"
	"vesagent/internal/collector"
	"vesagent/internal/config"
	"vesagent/internal/logging"
)

var (
	// ErrNotInitialized is returned when an entry point is used before Initialize.
	ErrNotInitialized = errors.New("agent is not initialized")
	// ErrAlreadyInitialized is returned by a second Init of the default agent.
	ErrAlreadyInitialized = errors.New("agent is already initialized")
	// ErrShuttingDown is returned by Post once Shutdown has started.
	ErrShuttingDown = errors.New("agent is shutting down")
	// ErrEventSealed is returned when the same event instance is posted twice.
	ErrEventSealed = errors.New("event was already posted")
	// ErrNilEvent is returned by Post for a nil event.
	ErrNilEvent = errors.New("event is nil")
	// ErrShutdownTimeout is reported for events still undelivered when the shutdown grace period ends.
	ErrShutdownTimeout = errors.New("shutdown grace period elapsed before delivery")
	// ErrInvalidOptions wraps Initialize option errors.
	ErrInvalidOptions = errors.New("invalid agent options")
	// ErrQueueFull is returned by Post when the queue rejects the event.
	ErrQueueFull = collector.ErrQueueFull
)

type state int32

const (
	stateUninitialized state = iota
	stateReady
	stateShuttingDown
	stateStopped
)

// Stats is a snapshot of agent counters.
type Stats struct {
	Posted    uint64
	Rejected  uint64
	Delivered uint64
	Failed    uint64
	Pending   int
}

// Agent accepts events from any number of producers and owns one transport worker.
type Agent struct {
	opts        Options
	logger      *slog.Logger
	closeLogger func()

	state  atomic.Int32
	queue  *collector.Queue
	sender collector.Sender
	worker *collector.Worker

	cancelWorker context.CancelFunc
	workerDone   chan struct{}
	stopping     chan struct{}
	stopped      chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error

	posted    atomic.Uint64
	rejected  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64

	heartbeat heartbeatMonitor
}

// Initialize validates opts, starts the transport worker and returns a ready agent.
// Params: opts collector endpoint, credentials, topics, queue/batch/retry settings and hooks.
// Returns: ready agent or error wrapping ErrInvalidOptions.
func Initialize(opts Options) (*Agent, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	logger := opts.Logger
	closeLogger := func() {}
	if logger == nil {
		level := opts.LogLevel
		if level == "" {
			level = "info"
		}
		created, closeFn, err := logging.New(config.LogConfig{
			Console: config.LogSinkConfig{Enabled: true, Level: level, Format: "line"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		logger = created
		closeLogger = closeFn
	}

	queue, err := collector.NewQueue(collector.QueueConfig{
		Capacity:       opts.Queue.Capacity,
		MaxAge:         opts.Queue.MaxAge,
		EnqueueTimeout: opts.Queue.EnqueueTimeout,
	})
	if err != nil {
		closeLogger()
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	sender := opts.transport
	if sender == nil {
		httpSender, err := collector.NewHTTPSender(opts.senderConfig(logger))
		if err != nil {
			closeLogger()
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		sender = httpSender
	}

	a := &Agent{
		opts:        opts,
		logger:      logger,
		closeLogger: closeLogger,
		queue:       queue,
		sender:      sender,
		workerDone:  make(chan struct{}),
		stopping:    make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	a.heartbeat.init(opts.HeartbeatInterval, opts.MeasurementInterval, opts.MaxMissedHeartbeats)

	worker, err := collector.NewWorker(opts.workerConfig(), queue, sender, outcomes{agent: a}, logger)
	if err != nil {
		closeSender(sender)
		closeLogger()
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	a.worker = worker

	workerCtx, cancel := context.WithCancel(context.Background())
	a.cancelWorker = cancel
	go func() {
		defer close(a.workerDone)
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("transport worker stopped", slog.String("error", err.Error()))
		}
	}()

	a.state.Store(int32(stateReady))
	logger.Info(
		"agent initialized",
		slog.String("collector", opts.CollectorBaseURL),
		slog.String("listener_path", opts.ListenerPath),
		slog.Int("queue_capacity", opts.Queue.Capacity),
		slog.Int("batch_max_events", opts.Batch.MaxEvents),
	)
	return a, nil
}

// Post validates ev, fills header defaults and queues it for delivery.
// Params: ev fully built event; the caller must not touch it once accepted.
// Returns: nil when accepted, *event.ValidationError, ErrQueueFull, ErrEventSealed,
// ErrNotInitialized or ErrShuttingDown.
func (a *Agent) Post(ev event.Event) error {
	if a == nil {
		return ErrNotInitialized
	}
	switch state(a.state.Load()) {
	case stateUninitialized:
		return ErrNotInitialized
	case stateShuttingDown, stateStopped:
		return ErrShuttingDown
	}
	if ev == nil {
		return ErrNilEvent
	}

	header := ev.EventHeader()
	if header.Sealed() {
		return ErrEventSealed
	}
	header.FillDefaults(a.opts.ReportingEntityName, a.opts.SourceName)

	wireEvent, err := event.Serialize(ev)
	if err != nil {
		a.rejected.Add(1)
		return err
	}
	if !header.Seal() {
		return ErrEventSealed
	}

	if err := a.queue.Enqueue(wireEvent, a.opts.route(header.Domain())); err != nil {
		header.Unseal()
		a.rejected.Add(1)
		if errors.Is(err, collector.ErrQueueClosed) {
			return ErrShuttingDown
		}
		return err
	}
	a.posted.Add(1)
	return nil
}

// Shutdown stops admission and drains the queue within the grace period.
// Params: ctx bounds the drain together with ShutdownGrace.
// Returns: nil; undelivered events are reported to OnFailure with ErrShutdownTimeout.
func (a *Agent) Shutdown(ctx context.Context) error {
	if a == nil || state(a.state.Load()) == stateUninitialized {
		return ErrNotInitialized
	}
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	<-a.stopped
	return a.shutdownErr
}

func (a *Agent) shutdown(ctx context.Context) error {
	defer close(a.stopped)

	a.state.Store(int32(stateShuttingDown))
	close(a.stopping)
	a.queue.Close()
	a.logger.Info("agent shutting down", slog.Int("pending", a.queue.Len()))

	grace := time.NewTimer(a.opts.ShutdownGrace)
	defer grace.Stop()
	drained := true
	select {
	case <-a.workerDone:
	case <-grace.C:
		drained = false
	case <-ctx.Done():
		drained = false
	}

	a.cancelWorker()
	<-a.workerDone

	remaining := a.queue.Drain()
	if !drained || len(remaining) > 0 {
		for _, entry := range remaining {
			a.reportFailure(entry, ErrShutdownTimeout)
		}
		a.logger.Warn("shutdown grace period elapsed", slog.Int("undelivered", len(remaining)))
	}

	closeSender(a.sender)
	a.state.Store(int32(stateStopped))
	a.logger.Info(
		"agent stopped",
		slog.Uint64("delivered", a.delivered.Load()),
		slog.Uint64("failed", a.failed.Load()),
	)
	a.closeLogger()
	return nil
}

// Stats returns a snapshot of the agent counters.
// Params: none.
// Returns: counters and the current queue depth.
func (a *Agent) Stats() Stats {
	return Stats{
		Posted:    a.posted.Load(),
		Rejected:  a.rejected.Load(),
		Delivered: a.delivered.Load(),
		Failed:    a.failed.Load(),
		Pending:   a.queue.Len(),
	}
}

// Logger returns the agent logger.
func (a *Agent) Logger() *slog.Logger {
	return a.logger
}

func (a *Agent) reportFailure(entry *collector.Entry, err error) {
	a.failed.Add(1)
	failure := Failure{
		EventID:  entry.Event.ID(),
		Domain:   entry.Event.Domain(),
		Path:     entry.Path,
		Attempts: entry.Attempts,
		Err:      err,
	}
	if failure.Domain == string(event.DomainHeartbeat) {
		a.heartbeat.missed(a.logger)
	}
	if a.opts.OnFailure != nil {
		a.opts.OnFailure(failure)
		return
	}
	a.logger.Error(
		"event delivery failed",
		slog.String("event_id", failure.EventID),
		slog.String("domain", failure.Domain),
		slog.String("path", failure.Path),
		slog.Int("attempts", failure.Attempts),
		slog.String("error", err.Error()),
	)
}

func closeSender(sender collector.Sender) {
	if closer, ok := sender.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// outcomes adapts worker callbacks onto the agent.
type outcomes struct {
	agent *Agent
}

func (o outcomes) Delivered(entries []*collector.Entry) {
	a := o.agent
	for _, entry := range entries {
		a.delivered.Add(1)
		if entry.Event.Domain() == string(event.DomainHeartbeat) {
			a.heartbeat.delivered(a.logger)
		}
		if a.opts.OnDelivered != nil {
			a.opts.OnDelivered(Delivery{
				EventID:  entry.Event.ID(),
				Domain:   entry.Event.Domain(),
				Path:     entry.Path,
				Attempts: entry.Attempts,
			})
		}
	}
}

func (o outcomes) Failed(failure collector.Failure) {
	for _, entry := range failure.Entries {
		o.agent.reportFailure(entry, failure.Err)
	}
}

func (o outcomes) Commands(commands []collector.Command) {
	a := o.agent
	for _, command := range commands {
		switch command.Type {
		case collector.CommandHeartbeatIntervalChange:
			a.heartbeat.setInterval(command.HeartbeatInterval)
			a.logger.Info("heartbeat interval changed by collector", slog.Duration("interval", command.HeartbeatInterval))
		case collector.CommandMeasurementIntervalChange:
			a.heartbeat.setMeasurementInterval(command.MeasurementInterval)
			a.logger.Info("measurement interval changed by collector", slog.Duration("interval", command.MeasurementInterval))
		default:
			a.logger.Debug("ignoring collector command", slog.String("command", string(command.Type)))
		}
	}
}

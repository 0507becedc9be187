package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"vesagent/agent"
	"vesagent/event"
	"vesagent/internal/config"
	"vesagent/internal/hostmetrics"
)

// shutdownSlack is added on top of the configured grace so the agent's own timer fires first.
const shutdownSlack = time.Second

type measurementFiller interface {
	Fill(context.Context, *event.Measurement) error
}

// agentEngine runs heartbeat and measurement schedulers on one agent.
type agentEngine struct {
	agent           *agent.Agent
	sampler         measurementFiller
	measurementName string
	grace           time.Duration
	logger          *slog.Logger
}

// newAgentEngine initializes the agent and the optional host sampler from config.
// Params: _ ignored build context; cfg validated config; logger shared runtime logger.
// Returns: engine runner or initialization error.
func newAgentEngine(_ context.Context, cfg *config.Config, logger *slog.Logger) (engineRunner, error) {
	var sampler measurementFiller
	if cfg.Measurement.Enabled {
		hostSampler, err := hostmetrics.New(hostmetrics.Config{
			VMID:     cfg.Global.SourceName,
			VNICs:    cfg.Measurement.VNICs,
			Disks:    cfg.Measurement.Disks,
			Mounts:   cfg.Measurement.Mounts,
			Extended: cfg.Measurement.Extended,
		})
		if err != nil {
			return nil, fmt.Errorf("build host sampler: %w", err)
		}
		sampler = hostSampler
	}

	a, err := agent.Initialize(agentOptions(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("initialize agent: %w", err)
	}

	return &agentEngine{
		agent:           a,
		sampler:         sampler,
		measurementName: cfg.Measurement.Name,
		grace:           cfg.Shutdown.Grace.Duration,
		logger:          logger,
	}, nil
}

// agentOptions maps the config file onto agent options.
// Params: cfg validated config; logger shared runtime logger.
// Returns: options for agent.Initialize.
func agentOptions(cfg *config.Config, logger *slog.Logger) agent.Options {
	collector := cfg.Collector

	opts := agent.Options{
		CollectorBaseURL:    collector.BaseURL,
		ListenerPath:        collector.ListenerPath,
		TopicFault:          collector.TopicFault,
		TopicMeasurement:    collector.TopicMeasurement,
		Username:            collector.Username,
		Password:            collector.Password,
		LogLevel:            cfg.Log.Console.Level,
		MaxMissedHeartbeats: collector.MaxMissedHeartbeats,
		ReportingEntityName: cfg.Global.ReportingEntityName,
		SourceName:          cfg.Global.SourceName,
		Timeout:             collector.Timeout.Duration,
		RateLimit:           collector.RateLimit,
		InsecureSkipVerify:  collector.InsecureSkipVerify,
		CAFile:              collector.CAFile,
		Queue: agent.QueueOptions{
			Capacity:       collector.Queue.Capacity,
			MaxAge:         collector.Queue.MaxAge.Duration,
			EnqueueTimeout: collector.Queue.EnqueueTimeout.Duration,
		},
		Batch: agent.BatchOptions{
			MaxEvents: collector.Batch.MaxEvents,
			MaxAge:    collector.Batch.MaxAge.Duration,
		},
		Retry: agent.RetryOptions{
			MaxAttempts:     collector.Retry.MaxAttempts,
			InitialInterval: collector.Retry.InitialInterval.Duration,
			MaxInterval:     collector.Retry.MaxInterval.Duration,
			Multiplier:      collector.Retry.Multiplier,
		},
		Breaker: agent.BreakerOptions{
			Enabled:  collector.Breaker.Enabled,
			Failures: collector.Breaker.Failures,
			Timeout:  collector.Breaker.Timeout.Duration,
		},
		HeartbeatName:       cfg.Heartbeat.Name,
		HeartbeatInterval:   cfg.Heartbeat.Interval.Duration,
		MeasurementInterval: cfg.Measurement.Interval.Duration,
		ShutdownGrace:       cfg.Shutdown.Grace.Duration,
		Logger:              logger,
	}
	if collector.Retry.Jitter != nil {
		opts.Retry.Jitter = *collector.Retry.Jitter
	}

	names := make([]string, 0, len(cfg.Heartbeat.Fields))
	for name := range cfg.Heartbeat.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts.HeartbeatFields = append(opts.HeartbeatFields, event.KeyValue{Name: name, Value: cfg.Heartbeat.Fields[name]})
	}

	return opts
}

// Run supervises the schedulers until ctx ends, then shuts the agent down within the grace period.
// Params: ctx runtime lifecycle.
// Returns: first scheduler error or nil on graceful stop.
func (e *agentEngine) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return e.agent.RunHeartbeat(groupCtx)
	})
	if e.sampler != nil {
		group.Go(func() error {
			return e.runMeasurements(groupCtx)
		})
	}

	<-groupCtx.Done()
	runErr := group.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.grace+shutdownSlack)
	defer cancel()
	if err := e.agent.Shutdown(shutdownCtx); err != nil {
		e.logger.Error("agent shutdown failed", slog.String("error", err.Error()))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// runMeasurements posts one host measurement per MeasurementInterval.
// The interval is re-read after every sample so collector commands take effect.
// Params: ctx stops the loop.
// Returns: nil when stopped.
func (e *agentEngine) runMeasurements(ctx context.Context) error {
	timer := time.NewTimer(e.agent.MeasurementInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if stop := e.postMeasurement(ctx); stop {
			return nil
		}
		timer.Reset(e.agent.MeasurementInterval())
	}
}

// postMeasurement samples the host and posts one measurement event.
// Params: ctx sampling cancellation.
// Returns: true once the agent is shutting down.
func (e *agentEngine) postMeasurement(ctx context.Context) bool {
	interval := e.agent.MeasurementInterval()
	m := event.NewMeasurement(e.measurementName, "", interval.Seconds())
	if err := e.sampler.Fill(ctx, m); err != nil {
		e.logger.Warn("host sampling failed", slog.String("error", err.Error()))
		return false
	}

	err := e.agent.Post(m)
	switch {
	case err == nil:
		return false
	case errors.Is(err, agent.ErrShuttingDown):
		return true
	default:
		e.logger.Warn("measurement rejected", slog.String("event_id", m.ID()), slog.String("error", err.Error()))
		return false
	}
}

// Status reports agent health and counters for the debug endpoint.
func (e *agentEngine) Status() engineStatus {
	stats := e.agent.Stats()
	return engineStatus{
		Healthy:             e.agent.Healthy(),
		Posted:              stats.Posted,
		Rejected:            stats.Rejected,
		Delivered:           stats.Delivered,
		Failed:              stats.Failed,
		Pending:             stats.Pending,
		HeartbeatInterval:   e.agent.HeartbeatInterval().String(),
		MeasurementInterval: e.agent.MeasurementInterval().String(),
	}
}

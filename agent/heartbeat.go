package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"vesagent/event"
)

// heartbeatMonitor tracks heartbeat health and the collector-controlled intervals.
type heartbeatMonitor struct {
	interval            atomic.Int64
	measurementInterval atomic.Int64
	maxMissed           int32
	misses              atomic.Int32
	healthy             atomic.Bool
	changed             chan struct{}
}

func (m *heartbeatMonitor) init(interval, measurementInterval time.Duration, maxMissed int) {
	m.interval.Store(int64(interval))
	m.measurementInterval.Store(int64(measurementInterval))
	m.maxMissed = int32(maxMissed)
	m.healthy.Store(true)
	m.changed = make(chan struct{}, 1)
}

func (m *heartbeatMonitor) setInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.interval.Store(int64(interval))
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

func (m *heartbeatMonitor) setMeasurementInterval(interval time.Duration) {
	if interval > 0 {
		m.measurementInterval.Store(int64(interval))
	}
}

// missed records one lost heartbeat and flips health after maxMissed in a row.
func (m *heartbeatMonitor) missed(logger *slog.Logger) {
	misses := m.misses.Add(1)
	if m.maxMissed <= 0 || misses < m.maxMissed {
		return
	}
	if m.healthy.CompareAndSwap(true, false) {
		logger.Error(
			"collector unreachable: heartbeats missed",
			slog.Int("missed", int(misses)),
			slog.Int("max_missed", int(m.maxMissed)),
		)
	}
}

func (m *heartbeatMonitor) delivered(logger *slog.Logger) {
	m.misses.Store(0)
	if m.healthy.CompareAndSwap(false, true) {
		logger.Info("collector heartbeat restored")
	}
}

// Healthy reports whether fewer than MaxMissedHeartbeats consecutive heartbeats were lost.
// Params: none.
// Returns: false while the collector is considered unreachable.
func (a *Agent) Healthy() bool {
	return a.heartbeat.healthy.Load()
}

// HeartbeatInterval returns the current heartbeat period.
func (a *Agent) HeartbeatInterval() time.Duration {
	return time.Duration(a.heartbeat.interval.Load())
}

// MeasurementInterval returns the current measurement period, which the collector may change.
func (a *Agent) MeasurementInterval() time.Duration {
	return time.Duration(a.heartbeat.measurementInterval.Load())
}

// RunHeartbeat posts a heartbeat immediately and then every HeartbeatInterval.
// Params: ctx stops the loop; Shutdown also stops it.
// Returns: nil when stopped, ErrNotInitialized for an uninitialized agent.
func (a *Agent) RunHeartbeat(ctx context.Context) error {
	if a == nil || state(a.state.Load()) == stateUninitialized {
		return ErrNotInitialized
	}

	ticker := time.NewTicker(a.HeartbeatInterval())
	defer ticker.Stop()

	if stop := a.postHeartbeat(); stop {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.stopping:
			return nil
		case <-a.heartbeat.changed:
			ticker.Reset(a.HeartbeatInterval())
		case <-ticker.C:
			if stop := a.postHeartbeat(); stop {
				return nil
			}
		}
	}
}

// postHeartbeat builds and posts one heartbeat.
// Params: none.
// Returns: true once the agent is shutting down.
func (a *Agent) postHeartbeat() bool {
	var ev event.Event
	if len(a.opts.HeartbeatFields) > 0 {
		seconds := int(a.HeartbeatInterval() / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		withFields := event.NewHeartbeatField(a.opts.HeartbeatName, "", seconds)
		for _, field := range a.opts.HeartbeatFields {
			withFields.AddField(field.Name, field.Value)
		}
		ev = withFields
	} else {
		ev = event.NewHeartbeat(a.opts.HeartbeatName, "")
	}

	err := a.Post(ev)
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrShuttingDown):
		return true
	default:
		a.heartbeat.missed(a.logger)
		a.logger.Warn("heartbeat rejected", slog.String("error", err.Error()))
		return false
	}
}

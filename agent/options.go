package agent

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"vesagent/event"
	"vesagent/internal/collector"
)

const (
	DefaultListenerPath        = "/eventListener/v5"
	DefaultMaxMissedHeartbeats = 3
	DefaultQueueCapacity       = 1024
	DefaultBatchMaxEvents      = 16
	DefaultBatchMaxAge         = time.Second
	DefaultTimeout             = 10 * time.Second
	DefaultShutdownGrace       = 10 * time.Second
	DefaultHeartbeatInterval   = 60 * time.Second
	DefaultMeasurementInterval = 300 * time.Second

	defaultRetryAttempts   = 5
	defaultRetryInitial    = 500 * time.Millisecond
	defaultRetryMax        = 30 * time.Second
	defaultRetryMultiplier = 2
	defaultBreakerTimeout  = 30 * time.Second
	defaultHeartbeatName   = "heartbeat"
)

// QueueOptions bounds the in-memory event queue.
// Params: Capacity max pending events; MaxAge rejects while the oldest pending event is older (0 disables);
// EnqueueTimeout bounded wait for space (0 rejects immediately).
// Returns: queue limits.
type QueueOptions struct {
	Capacity       int
	MaxAge         time.Duration
	EnqueueTimeout time.Duration
}

// BatchOptions controls event coalescing into eventBatch posts.
// Params: MaxEvents 1 disables batching; MaxAge max wait for a batch to fill.
// Returns: batch limits.
type BatchOptions struct {
	MaxEvents int
	MaxAge    time.Duration
}

// RetryOptions controls exponential backoff for transient delivery errors.
type RetryOptions struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
}

// BreakerOptions controls the collector circuit breaker.
type BreakerOptions struct {
	Enabled  bool
	Failures uint32
	Timeout  time.Duration
}

// Options carries every Initialize parameter.
// Params: CollectorBaseURL scheme://host:port of the collector; topics are appended to ListenerPath;
// LogLevel is used only when Logger is nil; MaxMissedHeartbeats 0 selects the default, negative disables
// health supervision; zero Queue.Capacity and Retry.MaxAttempts select defaults.
// Returns: agent settings.
type Options struct {
	CollectorBaseURL    string
	ListenerPath        string
	TopicFault          string
	TopicMeasurement    string
	Username            string
	Password            string
	LogLevel            string
	MaxMissedHeartbeats int

	ReportingEntityName string
	SourceName          string

	Timeout            time.Duration
	RateLimit          float64
	InsecureSkipVerify bool
	CAFile             string
	UserAgent          string

	Queue   QueueOptions
	Batch   BatchOptions
	Retry   RetryOptions
	Breaker BreakerOptions

	HeartbeatName       string
	HeartbeatInterval   time.Duration
	HeartbeatFields     []event.KeyValue
	MeasurementInterval time.Duration
	ShutdownGrace       time.Duration

	Logger      *slog.Logger
	OnFailure   func(Failure)
	OnDelivered func(Delivery)

	// transport replaces the HTTP sender; set by tests.
	transport collector.Sender
}

// Failure describes one event that reached terminal failure.
type Failure struct {
	EventID  string
	Domain   string
	Path     string
	Attempts int
	Err      error
}

// Delivery describes one event accepted by the collector.
type Delivery struct {
	EventID  string
	Domain   string
	Path     string
	Attempts int
}

// withDefaults returns a copy of o with zero values replaced by defaults.
// Params: none.
// Returns: normalized options.
func (o Options) withDefaults() Options {
	if o.ListenerPath == "" {
		o.ListenerPath = DefaultListenerPath
	}
	o.ListenerPath = "/" + strings.Trim(o.ListenerPath, "/")
	o.TopicFault = strings.Trim(o.TopicFault, "/")
	o.TopicMeasurement = strings.Trim(o.TopicMeasurement, "/")
	if o.ReportingEntityName == "" || o.SourceName == "" {
		host, _ := os.Hostname()
		if o.ReportingEntityName == "" {
			o.ReportingEntityName = host
		}
		if o.SourceName == "" {
			o.SourceName = host
		}
	}
	if o.MaxMissedHeartbeats == 0 {
		o.MaxMissedHeartbeats = DefaultMaxMissedHeartbeats
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Queue.Capacity == 0 {
		o.Queue.Capacity = DefaultQueueCapacity
	}
	if o.Batch.MaxEvents == 0 {
		o.Batch.MaxEvents = DefaultBatchMaxEvents
		if o.Batch.MaxAge == 0 {
			o.Batch.MaxAge = DefaultBatchMaxAge
		}
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry.MaxAttempts = defaultRetryAttempts
	}
	if o.Retry.InitialInterval == 0 {
		o.Retry.InitialInterval = defaultRetryInitial
	}
	if o.Retry.MaxInterval == 0 {
		o.Retry.MaxInterval = defaultRetryMax
	}
	if o.Retry.Multiplier == 0 {
		o.Retry.Multiplier = defaultRetryMultiplier
	}
	if o.Breaker.Enabled && o.Breaker.Timeout == 0 {
		o.Breaker.Timeout = defaultBreakerTimeout
	}
	if o.HeartbeatName == "" {
		o.HeartbeatName = defaultHeartbeatName
	}
	if o.HeartbeatInterval == 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.MeasurementInterval == 0 {
		o.MeasurementInterval = DefaultMeasurementInterval
	}
	if o.ShutdownGrace == 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}
	return o
}

// validate checks normalized options.
// Params: none.
// Returns: first invalid setting.
func (o Options) validate() error {
	if strings.TrimSpace(o.CollectorBaseURL) == "" && o.transport == nil {
		return fmt.Errorf("collector base url is required")
	}
	if o.Queue.Capacity < 1 {
		return fmt.Errorf("queue capacity must be >= 1")
	}
	if o.Queue.MaxAge < 0 || o.Queue.EnqueueTimeout < 0 {
		return fmt.Errorf("queue max age and enqueue timeout must be >= 0")
	}
	if o.Batch.MaxEvents < 0 || o.Batch.MaxAge < 0 {
		return fmt.Errorf("batch limits must be >= 0")
	}
	if o.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be >= 1")
	}
	if o.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1")
	}
	if o.Retry.Jitter < 0 || o.Retry.Jitter > 1 {
		return fmt.Errorf("retry jitter must be in [0,1]")
	}
	if o.HeartbeatInterval < 0 || o.MeasurementInterval < 0 || o.ShutdownGrace < 0 || o.Timeout < 0 {
		return fmt.Errorf("intervals and timeouts must be >= 0")
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	return nil
}

// route returns the listener path for a domain.
// Params: domain event domain.
// Returns: listener path with the domain topic appended when configured.
func (o Options) route(domain event.Domain) string {
	topic := ""
	switch domain {
	case event.DomainFault:
		topic = o.TopicFault
	case event.DomainMeasurement:
		topic = o.TopicMeasurement
	}
	if topic == "" {
		return o.ListenerPath
	}
	return o.ListenerPath + "/" + topic
}

func (o Options) senderConfig(logger *slog.Logger) collector.SenderConfig {
	return collector.SenderConfig{
		BaseURL:            o.CollectorBaseURL,
		Username:           o.Username,
		Password:           o.Password,
		Timeout:            o.Timeout,
		RateLimit:          o.RateLimit,
		InsecureSkipVerify: o.InsecureSkipVerify,
		CAFile:             o.CAFile,
		UserAgent:          o.UserAgent,
		Breaker: collector.BreakerConfig{
			Enabled:  o.Breaker.Enabled,
			Failures: o.Breaker.Failures,
			Timeout:  o.Breaker.Timeout,
		},
		Logger: logger,
	}
}

func (o Options) workerConfig() collector.WorkerConfig {
	return collector.WorkerConfig{
		BatchMaxEvents: o.Batch.MaxEvents,
		BatchMaxAge:    o.Batch.MaxAge,
		Timeout:        o.Timeout,
		Retry: collector.RetryPolicy{
			MaxAttempts:     o.Retry.MaxAttempts,
			InitialInterval: o.Retry.InitialInterval,
			MaxInterval:     o.Retry.MaxInterval,
			Multiplier:      o.Retry.Multiplier,
			Jitter:          o.Retry.Jitter,
		},
	}
}

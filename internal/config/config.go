package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel            = "info"
	defaultLogFormat           = "line"
	defaultLogMaxSizeMB        = 100
	defaultLogMaxBackups       = 5
	defaultLogMaxAgeDays       = 14
	defaultListenerPath        = "/eventListener/v5"
	defaultCollectorTimeout    = 10 * time.Second
	defaultMaxMissedHeartbeats = 3
	defaultQueueCapacity       = 1024
	defaultBatchMaxEvents      = 16
	defaultBatchMaxAge         = time.Second
	defaultRetryMaxAttempts    = 5
	defaultRetryInitial        = 500 * time.Millisecond
	defaultRetryMax            = 30 * time.Second
	defaultRetryMultiplier     = 2.0
	defaultRetryJitter         = 0.1
	defaultBreakerFailures     = 5
	defaultBreakerTimeout      = 30 * time.Second
	defaultHeartbeatInterval   = 60 * time.Second
	defaultHeartbeatName       = "heartbeat"
	defaultMeasurementInterval = 300 * time.Second
	defaultMeasurementName     = "measurement"
	defaultShutdownGrace       = 10 * time.Second
	defaultPprofListen         = "127.0.0.1:6060"
)

// Duration wraps time.Duration for TOML parsing.
// Params: text duration string (e.g. "5s", "1m").
// Returns: parse error on invalid duration.
type Duration struct {
	time.Duration
}

// UnmarshalText parses TOML duration values.
// Params: text is raw duration bytes from TOML.
// Returns: error when value is not a valid Go duration.
func (d *Duration) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		d.Duration = 0
		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}

	d.Duration = parsed
	return nil
}

// Config represents the root agent configuration.
// Params: TOML document sections.
// Returns: validated runtime configuration.
type Config struct {
	Global      GlobalConfig      `toml:"global"`
	Log         LogConfig         `toml:"log"`
	Pprof       PprofConfig       `toml:"pprof"`
	Collector   CollectorConfig   `toml:"collector"`
	Heartbeat   HeartbeatConfig   `toml:"heartbeat"`
	Measurement MeasurementConfig `toml:"measurement"`
	Shutdown    ShutdownConfig    `toml:"shutdown"`
}

// GlobalConfig names this agent in every event header.
// Params: source and reporting entity names; both default to the hostname.
// Returns: header identity settings.
type GlobalConfig struct {
	SourceName          string `toml:"source_name"`
	ReportingEntityName string `toml:"reporting_entity_name"`
}

// PprofConfig defines optional runtime pprof HTTP endpoint.
// Params: enabled flag and listen address in host:port format.
// Returns: pprof runtime settings.
type PprofConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// LogConfig contains console/file logging configuration.
// Params: console and file sink options.
// Returns: logger sink settings.
type LogConfig struct {
	Console LogSinkConfig `toml:"console"`
	File    LogSinkConfig `toml:"file"`
}

// LogSinkConfig defines one logging sink.
// Params: sink options from TOML; rotation fields apply to the file sink only.
// Returns: sink setup.
type LogSinkConfig struct {
	Enabled    bool   `toml:"enabled"`
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Color      bool   `toml:"color"`
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// CollectorConfig describes the VES collector endpoint and delivery policy.
// A negative max_missed_heartbeats disables health supervision.
type CollectorConfig struct {
	BaseURL             string                 `toml:"base_url"`
	ListenerPath        string                 `toml:"listener_path"`
	TopicFault          string                 `toml:"topic_fault"`
	TopicMeasurement    string                 `toml:"topic_measurement"`
	Username            string                 `toml:"username"`
	Password            string                 `toml:"password"`
	Timeout             Duration               `toml:"timeout"`
	RateLimit           float64                `toml:"rate_limit"`
	InsecureSkipVerify  bool                   `toml:"insecure_skip_verify"`
	CAFile              string                 `toml:"ca_file"`
	MaxMissedHeartbeats int                    `toml:"max_missed_heartbeats"`
	Queue               CollectorQueueConfig   `toml:"queue"`
	Batch               CollectorBatchConfig   `toml:"batch"`
	Retry               CollectorRetryConfig   `toml:"retry"`
	Breaker             CollectorBreakerConfig `toml:"breaker"`
}

// CollectorQueueConfig bounds the in-memory event queue.
type CollectorQueueConfig struct {
	Capacity       int      `toml:"capacity"`
	MaxAge         Duration `toml:"max_age"`
	EnqueueTimeout Duration `toml:"enqueue_timeout"`
}

// CollectorBatchConfig controls eventBatch coalescing.
type CollectorBatchConfig struct {
	MaxEvents int      `toml:"max_events"`
	MaxAge    Duration `toml:"max_age"`
}

// CollectorRetryConfig controls backoff for transient delivery errors.
// Params: Jitter is a pointer so an explicit 0 disables randomization.
// Returns: retry settings.
type CollectorRetryConfig struct {
	MaxAttempts     int      `toml:"max_attempts"`
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
	Multiplier      float64  `toml:"multiplier"`
	Jitter          *float64 `toml:"jitter"`
}

// CollectorBreakerConfig controls the sender circuit breaker.
type CollectorBreakerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Failures uint32   `toml:"failures"`
	Timeout  Duration `toml:"timeout"`
}

// HeartbeatConfig controls periodic heartbeat events.
// Params: Fields are sent as heartbeatFields additionalFields in key order.
// Returns: heartbeat settings.
type HeartbeatConfig struct {
	Name     string            `toml:"name"`
	Interval Duration          `toml:"interval"`
	Fields   map[string]string `toml:"fields"`
}

// MeasurementConfig controls periodic host measurement events.
// Params: VNICs, Disks and Mounts are wildcard masks; empty selects all. Extended adds filesystem/swap/load groups.
// Returns: measurement settings.
type MeasurementConfig struct {
	Enabled  bool     `toml:"enabled"`
	Name     string   `toml:"name"`
	Interval Duration `toml:"interval"`
	VNICs    []string `toml:"vnics"`
	Disks    []string `toml:"disks"`
	Mounts   []string `toml:"mounts"`
	Extended bool     `toml:"extended"`
}

// ShutdownConfig bounds the final queue drain.
type ShutdownConfig struct {
	Grace Duration `toml:"grace"`
}

// Load reads TOML config, expands environment variables, applies defaults, and validates.
// Params: path to TOML config file or directory with *.toml files.
// Returns: validated config pointer or error.
func Load(path string) (*Config, error) {
	raw, err := readConfigSource(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("decode TOML %q: %w", path, err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfigSource reads one TOML file or concatenates *.toml files from directory.
// Params: path to config file or directory.
// Returns: raw TOML bytes or error.
func readConfigSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config %q: %w", path, err)
	}

	if !info.IsDir() {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read config %q: %w", path, readErr)
		}
		return raw, nil
	}

	return readConfigDir(path)
}

// readConfigDir concatenates config snippets from one directory in file name order.
// Params: path to directory that contains *.toml files.
// Returns: concatenated TOML content or error.
func readConfigDir(path string) ([]byte, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read config dir %q: %w", path, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".toml") {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("read config dir %q: no *.toml files", path)
	}

	var builder strings.Builder
	for _, name := range files {
		filePath := filepath.Join(path, name)
		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("read config %q: %w", filePath, readErr)
		}
		builder.Write(raw)
		if len(raw) == 0 || raw[len(raw)-1] != '\n' {
			builder.WriteByte('\n')
		}
		builder.WriteByte('\n')
	}

	return []byte(builder.String()), nil
}

// applyDefaults fills defaults for optional configuration fields.
// Params: receiver config pointer.
// Returns: error if defaulting needs host lookup and it fails.
func (c *Config) applyDefaults() error {
	c.Log.Console.Level = lowerOrDefault(c.Log.Console.Level, defaultLogLevel)
	c.Log.Console.Format = lowerOrDefault(c.Log.Console.Format, defaultLogFormat)
	c.Log.File.Level = lowerOrDefault(c.Log.File.Level, defaultLogLevel)
	c.Log.File.Format = lowerOrDefault(c.Log.File.Format, "json")
	if c.Log.File.MaxSizeMB == 0 {
		c.Log.File.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Log.File.MaxBackups == 0 {
		c.Log.File.MaxBackups = defaultLogMaxBackups
	}
	if c.Log.File.MaxAgeDays == 0 {
		c.Log.File.MaxAgeDays = defaultLogMaxAgeDays
	}

	if !c.Log.Console.Enabled && !c.Log.File.Enabled {
		c.Log.Console.Enabled = true
	}

	if strings.TrimSpace(c.Global.SourceName) == "" || strings.TrimSpace(c.Global.ReportingEntityName) == "" {
		host, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("resolve hostname: %w", err)
		}
		if strings.TrimSpace(c.Global.SourceName) == "" {
			c.Global.SourceName = host
		}
		if strings.TrimSpace(c.Global.ReportingEntityName) == "" {
			c.Global.ReportingEntityName = host
		}
	}

	c.applyCollectorDefaults()

	if strings.TrimSpace(c.Heartbeat.Name) == "" {
		c.Heartbeat.Name = defaultHeartbeatName
	}
	if c.Heartbeat.Interval.Duration == 0 {
		c.Heartbeat.Interval.Duration = defaultHeartbeatInterval
	}
	if strings.TrimSpace(c.Measurement.Name) == "" {
		c.Measurement.Name = defaultMeasurementName
	}
	if c.Measurement.Interval.Duration == 0 {
		c.Measurement.Interval.Duration = defaultMeasurementInterval
	}
	if c.Shutdown.Grace.Duration == 0 {
		c.Shutdown.Grace.Duration = defaultShutdownGrace
	}
	if c.Pprof.Enabled && strings.TrimSpace(c.Pprof.Listen) == "" {
		c.Pprof.Listen = defaultPprofListen
	}

	return nil
}

// applyCollectorDefaults fills collector transport, queue, batch, retry and breaker defaults.
// Params: receiver config pointer.
// Returns: none.
func (c *Config) applyCollectorDefaults() {
	collector := &c.Collector
	collector.BaseURL = strings.TrimRight(strings.TrimSpace(collector.BaseURL), "/")
	if strings.TrimSpace(collector.ListenerPath) == "" {
		collector.ListenerPath = defaultListenerPath
	}
	if collector.Timeout.Duration == 0 {
		collector.Timeout.Duration = defaultCollectorTimeout
	}
	if collector.MaxMissedHeartbeats == 0 {
		collector.MaxMissedHeartbeats = defaultMaxMissedHeartbeats
	}
	if collector.Queue.Capacity == 0 {
		collector.Queue.Capacity = defaultQueueCapacity
	}
	if collector.Batch.MaxEvents == 0 {
		collector.Batch.MaxEvents = defaultBatchMaxEvents
	}
	if collector.Batch.MaxAge.Duration == 0 && collector.Batch.MaxEvents > 1 {
		collector.Batch.MaxAge.Duration = defaultBatchMaxAge
	}
	if collector.Retry.MaxAttempts == 0 {
		collector.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if collector.Retry.InitialInterval.Duration == 0 {
		collector.Retry.InitialInterval.Duration = defaultRetryInitial
	}
	if collector.Retry.MaxInterval.Duration == 0 {
		collector.Retry.MaxInterval.Duration = defaultRetryMax
	}
	if collector.Retry.Multiplier == 0 {
		collector.Retry.Multiplier = defaultRetryMultiplier
	}
	if collector.Retry.Jitter == nil {
		collector.Retry.Jitter = float64Ptr(defaultRetryJitter)
	}
	if collector.Breaker.Failures == 0 {
		collector.Breaker.Failures = defaultBreakerFailures
	}
	if collector.Breaker.Timeout.Duration == 0 {
		collector.Breaker.Timeout.Duration = defaultBreakerTimeout
	}
}

// validate checks config consistency and required fields.
// Params: receiver config pointer.
// Returns: validation error for invalid or incomplete config.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Global.SourceName) == "" {
		return fmt.Errorf("global.source_name resolved to empty value")
	}
	if strings.TrimSpace(c.Global.ReportingEntityName) == "" {
		return fmt.Errorf("global.reporting_entity_name resolved to empty value")
	}

	if err := validateSink("log.console", c.Log.Console, false); err != nil {
		return err
	}
	if err := validateSink("log.file", c.Log.File, true); err != nil {
		return err
	}
	if err := validatePprofConfig("pprof", c.Pprof); err != nil {
		return err
	}
	if err := validateCollectorConfig("collector", c.Collector); err != nil {
		return err
	}

	if c.Heartbeat.Interval.Duration <= 0 {
		return fmt.Errorf("heartbeat.interval must be > 0")
	}
	for name := range c.Heartbeat.Fields {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("heartbeat.fields contains an empty name")
		}
	}
	if c.Measurement.Interval.Duration <= 0 {
		return fmt.Errorf("measurement.interval must be > 0")
	}
	if err := validateMasks("measurement.vnics", c.Measurement.VNICs); err != nil {
		return err
	}
	if err := validateMasks("measurement.disks", c.Measurement.Disks); err != nil {
		return err
	}
	if err := validateMasks("measurement.mounts", c.Measurement.Mounts); err != nil {
		return err
	}
	if err := validateNonNegativeDurationField("shutdown.grace", c.Shutdown.Grace.Duration); err != nil {
		return err
	}

	return nil
}

// validateCollectorConfig validates endpoint and delivery policy.
// Params: path config path prefix; cfg collector section.
// Returns: validation error or nil.
func validateCollectorConfig(path string, cfg CollectorConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("%s.base_url is required", path)
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("%s.base_url: %w", path, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s.base_url must use http or https, got %q", path, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s.base_url host is required", path)
	}
	if !strings.HasPrefix(cfg.ListenerPath, "/") {
		return fmt.Errorf("%s.listener_path must start with /", path)
	}
	if strings.ContainsAny(cfg.TopicFault+cfg.TopicMeasurement, " ?#") {
		return fmt.Errorf("%s topics must be plain path segments", path)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%s.rate_limit must be >= 0", path)
	}
	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			return fmt.Errorf("%s.ca_file: %w", path, err)
		}
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{field: path + ".timeout", value: cfg.Timeout.Duration},
		{field: path + ".queue.max_age", value: cfg.Queue.MaxAge.Duration},
		{field: path + ".queue.enqueue_timeout", value: cfg.Queue.EnqueueTimeout.Duration},
		{field: path + ".batch.max_age", value: cfg.Batch.MaxAge.Duration},
		{field: path + ".retry.initial_interval", value: cfg.Retry.InitialInterval.Duration},
		{field: path + ".retry.max_interval", value: cfg.Retry.MaxInterval.Duration},
		{field: path + ".breaker.timeout", value: cfg.Breaker.Timeout.Duration},
	}
	for _, item := range durations {
		if err := validateNonNegativeDurationField(item.field, item.value); err != nil {
			return err
		}
	}

	if cfg.Queue.Capacity < 1 {
		return fmt.Errorf("%s.queue.capacity must be >= 1", path)
	}
	if cfg.Batch.MaxEvents < 1 {
		return fmt.Errorf("%s.batch.max_events must be >= 1", path)
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%s.retry.max_attempts must be >= 1", path)
	}
	if cfg.Retry.Multiplier < 1 {
		return fmt.Errorf("%s.retry.multiplier must be >= 1", path)
	}
	if cfg.Retry.InitialInterval.Duration > cfg.Retry.MaxInterval.Duration {
		return fmt.Errorf("%s.retry.initial_interval must be <= max_interval", path)
	}
	if jitter := *cfg.Retry.Jitter; jitter < 0 || jitter > 1 {
		return fmt.Errorf("%s.retry.jitter must be in [0,1]", path)
	}

	return nil
}

// validateSink validates one logging sink configuration.
// Params: name is sink path for errors; sink is sink config; requirePath means path required when enabled.
// Returns: validation error or nil.
func validateSink(name string, sink LogSinkConfig, requirePath bool) error {
	if sink.Enabled && requirePath && strings.TrimSpace(sink.Path) == "" {
		return fmt.Errorf("%s.path is required when sink is enabled", name)
	}

	if err := validateLogLevel(sink.Level); err != nil {
		return fmt.Errorf("%s.level: %w", name, err)
	}
	if err := validateLogFormat(sink.Format); err != nil {
		return fmt.Errorf("%s.format: %w", name, err)
	}
	if sink.MaxSizeMB < 0 || sink.MaxBackups < 0 || sink.MaxAgeDays < 0 {
		return fmt.Errorf("%s rotation limits must be >= 0", name)
	}

	return nil
}

// validateLogLevel validates known log levels.
// Params: level is lower-case level name.
// Returns: error when level is unsupported.
func validateLogLevel(level string) error {
	switch strings.TrimSpace(strings.ToLower(level)) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unsupported value %q", level)
	}
}

// validateLogFormat validates supported sink formats.
// Params: format is lower-case format name.
// Returns: error when format is unsupported.
func validateLogFormat(format string) error {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "line", "json":
		return nil
	default:
		return fmt.Errorf("unsupported value %q", format)
	}
}

// validatePprofConfig validates the optional pprof listener.
// Params: path config path prefix; cfg pprof section.
// Returns: validation error or nil.
func validatePprofConfig(path string, cfg PprofConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("%s.listen must be host:port: %w", path, err)
	}
	return nil
}

// validateMasks rejects empty wildcard masks.
// Params: path config path; masks configured masks.
// Returns: validation error or nil.
func validateMasks(path string, masks []string) error {
	for idx, mask := range masks {
		if strings.TrimSpace(mask) == "" {
			return fmt.Errorf("%s[%d] must not be empty", path, idx)
		}
	}
	return nil
}

// validateNonNegativeDurationField rejects negative durations.
// Params: fieldPath config path; value configured duration.
// Returns: validation error or nil.
func validateNonNegativeDurationField(fieldPath string, value time.Duration) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", fieldPath)
	}
	return nil
}

// lowerOrDefault returns a trimmed lower-case value or default fallback.
// Params: value to normalize; fallback value when empty.
// Returns: normalized value.
func lowerOrDefault(value, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	return normalized
}

// float64Ptr returns pointer to provided float64 value.
// Params: value to allocate.
// Returns: pointer to copied value.
func float64Ptr(value float64) *float64 {
	copied := value
	return &copied
}

package config

import "time"

// QueueConfig configures the priority queue and its per-client rate
// limiter.
type QueueConfig struct {
	MaxSize         int           `mapstructure:"max_size" validate:"min=1" toml:"max_size"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_client_per_min" validate:"min=1" toml:"rate_limit_per_client_per_min"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window" toml:"rate_limit_window,omitempty"`
}

func (c QueueConfig) Validate() error { return validateConfig(c) }

// WorkerConfig configures the worker pool.
type WorkerConfig struct {
	WorkerCount              int           `mapstructure:"worker_count" validate:"min=1" toml:"worker_count"`
	MaxRetries               int           `mapstructure:"max_retries" validate:"min=0" toml:"max_retries"`
	GracePeriod              time.Duration `mapstructure:"grace_period" toml:"grace_period,omitempty"`
	ProgressThrottleInterval time.Duration `mapstructure:"progress_throttle_interval" toml:"progress_throttle_interval,omitempty"`
}

func (c WorkerConfig) Validate() error { return validateConfig(c) }

// StateStoreConfig configures the state store's flush and retention
// cadence.
type StateStoreConfig struct {
	FlushInterval   time.Duration `mapstructure:"state_flush_interval" toml:"state_flush_interval,omitempty"`
	RetentionWindow time.Duration `mapstructure:"retention_window" toml:"retention_window,omitempty"`
	RetentionSweep  time.Duration `mapstructure:"retention_sweep" toml:"retention_sweep,omitempty"`
}

func (c StateStoreConfig) Validate() error { return validateConfig(c) }

// EventBusConfig configures the SSE connection pool.
type EventBusConfig struct {
	MaxConnections       int           `mapstructure:"sse_max_connections" validate:"min=1" toml:"sse_max_connections"`
	MaxPerClient          int           `mapstructure:"sse_max_per_client" validate:"min=1" toml:"sse_max_per_client"`
	QueueCapacity         int           `mapstructure:"sse_queue_capacity" validate:"min=1" toml:"sse_queue_capacity"`
	HeartbeatInterval     time.Duration `mapstructure:"sse_heartbeat_interval" toml:"sse_heartbeat_interval,omitempty"`
	IdleTimeout           time.Duration `mapstructure:"sse_idle_timeout" toml:"sse_idle_timeout,omitempty"`
	CompressionThreshold  int           `mapstructure:"sse_compression_threshold" toml:"sse_compression_threshold,omitempty"`
}

func (c EventBusConfig) Validate() error { return validateConfig(c) }

// LocalConfig is the full, flattened configuration surface enumerated by
// spec.md §6, assembled the way the teacher's LocalConfig composes
// RepoConfig/ServerConfig sections.
type LocalConfig struct {
	Repo       RepoConfig       `mapstructure:"repo"`
	Server     ServerConfig     `mapstructure:"server"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	StateStore StateStoreConfig `mapstructure:"state_store"`
	EventBus   EventBusConfig   `mapstructure:"event_bus"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	LogLevel   string           `mapstructure:"log_level" toml:"log_level,omitempty"`
}

func (l LocalConfig) Validate() error {
	return validateConfig(l)
}

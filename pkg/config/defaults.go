package config

import (
	"time"

	"github.com/jaye773/summarizer-core/internal/classify"
	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
	"github.com/jaye773/summarizer-core/internal/worker"
)

// DefaultServerPort is the port the CLI binds with --port when no
// configuration file or flag overrides it.
const DefaultServerPort = 8080

// DefaultServerHost is the bind address used when unset.
const DefaultServerHost = "0.0.0.0"

// DefaultLogLevel matches the logging.Logger default level.
const DefaultLogLevel = "info"

// DefaultDataDir is the state/config directory used when unset.
const DefaultDataDir = "./data"

// DefaultServiceName labels telemetry emitted by this binary.
const DefaultServiceName = "summarizer-core"

// DefaultLocalConfig returns a fully populated LocalConfig, re-exporting the
// Default* constants each internal package already applies to a zero-valued
// Config. cmd/summarizerd seeds viper with these before binding flags and
// environment overrides, the way the teacher's cmd/cli seeds
// config.DefaultMinimumEgressBatchSize as a cobra flag default.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		Repo: RepoConfig{
			DataDir: DefaultDataDir,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
			Host: DefaultServerHost,
		},
		Queue: QueueConfig{
			MaxSize:         queue.DefaultMaxSize,
			RateLimitPerMin: queue.DefaultRateLimitPerMin,
			RateLimitWindow: time.Minute,
		},
		Worker: WorkerConfig{
			WorkerCount:              worker.DefaultWorkerCount,
			MaxRetries:               classify.DefaultMaxRetries,
			GracePeriod:              worker.DefaultGracePeriod,
			ProgressThrottleInterval: worker.DefaultProgressThrottleInterval,
		},
		StateStore: StateStoreConfig{
			FlushInterval:   statestore.DefaultFlushInterval,
			RetentionWindow: statestore.DefaultRetentionWindow,
			RetentionSweep:  statestore.DefaultRetentionSweep,
		},
		EventBus: EventBusConfig{
			MaxConnections:       eventbus.DefaultMaxConnections,
			MaxPerClient:         eventbus.DefaultMaxPerClient,
			QueueCapacity:        eventbus.DefaultQueueCapacity,
			HeartbeatInterval:    eventbus.DefaultHeartbeatInterval,
			IdleTimeout:          eventbus.DefaultIdleTimeout,
			CompressionThreshold: eventbus.DefaultCompressionThreshold,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
		LogLevel: DefaultLogLevel,
	}
}

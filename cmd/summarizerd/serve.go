package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/demo"
	"github.com/jaye773/summarizer-core/pkg/config"
	"github.com/jaye773/summarizer-core/pkg/fx/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.NoArgs,
	Short: "Run the job-processing core: priority queue, worker pool, event bus, and HTTP server",
	RunE:  doServe,
}

func doServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load[config.LocalConfig]()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	summarizer := &demo.Summarizer{}

	fxApp := fx.New(app.CommonModules(cfg, summarizer, buildVersion))
	if err := fxApp.Err(); err != nil {
		return err
	}

	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("starting fx app: %w", err)
	}

	<-fxApp.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := fxApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping fx app: %w", err)
	}
	return nil
}

// init seeds viper with DefaultLocalConfig()'s values before binding flags,
// the way the teacher's rootCmd seeds each PersistentFlags default from a
// config.Default* constant — every field LocalConfig.Validate requires
// must resolve to a non-zero default even when unset by flag/env/file.
func init() {
	defaults := config.DefaultLocalConfig()

	serveCmd.Flags().Uint("port", defaults.Server.Port, "HTTP server port")
	cobra.CheckErr(viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")))

	serveCmd.Flags().String("host", defaults.Server.Host, "HTTP server bind address")
	cobra.CheckErr(viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host")))

	serveCmd.Flags().String("public-url", defaults.Server.PublicURL, "externally reachable base URL")
	cobra.CheckErr(viper.BindPFlag("server.public_url", serveCmd.Flags().Lookup("public-url")))

	serveCmd.Flags().Int("worker-count", defaults.Worker.WorkerCount, "worker pool size")
	cobra.CheckErr(viper.BindPFlag("worker.worker_count", serveCmd.Flags().Lookup("worker-count")))

	viper.SetDefault("queue.max_size", defaults.Queue.MaxSize)
	viper.SetDefault("queue.rate_limit_per_client_per_min", defaults.Queue.RateLimitPerMin)
	viper.SetDefault("queue.rate_limit_window", defaults.Queue.RateLimitWindow)

	viper.SetDefault("worker.max_retries", defaults.Worker.MaxRetries)
	viper.SetDefault("worker.grace_period", defaults.Worker.GracePeriod)
	viper.SetDefault("worker.progress_throttle_interval", defaults.Worker.ProgressThrottleInterval)

	viper.SetDefault("state_store.state_flush_interval", defaults.StateStore.FlushInterval)
	viper.SetDefault("state_store.retention_window", defaults.StateStore.RetentionWindow)
	viper.SetDefault("state_store.retention_sweep", defaults.StateStore.RetentionSweep)

	viper.SetDefault("event_bus.sse_max_connections", defaults.EventBus.MaxConnections)
	viper.SetDefault("event_bus.sse_max_per_client", defaults.EventBus.MaxPerClient)
	viper.SetDefault("event_bus.sse_queue_capacity", defaults.EventBus.QueueCapacity)
	viper.SetDefault("event_bus.sse_heartbeat_interval", defaults.EventBus.HeartbeatInterval)
	viper.SetDefault("event_bus.sse_idle_timeout", defaults.EventBus.IdleTimeout)
	viper.SetDefault("event_bus.sse_compression_threshold", defaults.EventBus.CompressionThreshold)

	viper.SetDefault("telemetry.service_name", defaults.Telemetry.ServiceName)

	viper.SetDefault("log_level", defaults.LogLevel)
}

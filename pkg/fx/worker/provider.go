// Package worker wires the fixed-size worker pool into the composition
// root. The Summarizer implementation itself is supplied by the caller
// (cmd/summarizerd) via fx.Supply/fx.As, since third-party AI/transcript
// adapters are outside this core's scope.
package worker

import (
	"context"

	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
	"github.com/jaye773/summarizer-core/internal/worker"
	"github.com/jaye773/summarizer-core/pkg/config"
	"github.com/jaye773/summarizer-core/pkg/health"
	"github.com/jaye773/summarizer-core/pkg/telemetry"
)

var Module = fx.Module("worker",
	fx.Provide(
		NewMetrics,
		New,
	),
	fx.Invoke(registerLifecycle),
)

// NewMetrics builds the pool's telemetry wrapper from the global telemetry
// instance, matching internal/eventbus's equivalent provider.
func NewMetrics(tel *telemetry.Telemetry) (*worker.Metrics, error) {
	return worker.NewMetrics(tel)
}

var log = logging.Logger("worker")

// New builds the Pool. Start is deferred to the fx.Lifecycle hook below.
func New(cfg config.WorkerConfig, q *queue.Queue, store *statestore.Store, bus *eventbus.Bus, summarizer worker.Summarizer, metrics *worker.Metrics) *worker.Pool {
	return worker.New(worker.Config{
		WorkerCount:              cfg.WorkerCount,
		MaxRetries:               cfg.MaxRetries,
		GracePeriod:              cfg.GracePeriod,
		ProgressThrottleInterval: cfg.ProgressThrottleInterval,
		Logger:                   log,
		Metrics:                  metrics,
		OnFinalFailure: func(j *job.Job, err error) {
			log.Warnw("job permanently failed", "job_id", j.ID, "client_id", j.ClientID, "err", err)
		},
	}, q, store, bus, summarizer)
}

// registerLifecycle starts the pool once the rest of the graph is up and
// marks the health checker ready, then stops it (draining in-flight jobs
// and flushing the state store) on shutdown.
func registerLifecycle(lc fx.Lifecycle, pool *worker.Pool, checker *health.Checker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start(ctx)
			checker.SetMode(health.ModeServing)
			checker.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}

// Package eventbus wires the SSE connection pool and its HTTP transport
// into the composition root.
package eventbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/eventbus/httpapi"
	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/pkg/config"
	echofx "github.com/jaye773/summarizer-core/pkg/fx/echo"
	"github.com/jaye773/summarizer-core/pkg/telemetry"
)

var Module = fx.Module("eventbus",
	fx.Provide(
		NewMetrics,
		New,
		fx.Annotate(
			NewHandler,
			fx.As(new(echofx.RouteRegistrar)),
			fx.ResultTags(`group:"route_registrar"`),
		),
	),
	fx.Invoke(registerLifecycle),
)

// NewMetrics builds the bus's telemetry wrapper from the global telemetry
// instance.
func NewMetrics(tel *telemetry.Telemetry) (*eventbus.Metrics, error) {
	return eventbus.NewMetrics(tel)
}

// New builds the Bus, starting its heartbeat/reaper loop immediately (the
// loop is cheap and harmless before the server accepts connections, the way
// the teacher's own New constructors start background goroutines eagerly).
func New(cfg config.EventBusConfig, metrics *eventbus.Metrics) *eventbus.Bus {
	return eventbus.New(eventbus.Config{
		MaxConnections:       cfg.MaxConnections,
		MaxPerClient:         cfg.MaxPerClient,
		QueueCapacity:        cfg.QueueCapacity,
		HeartbeatInterval:    cfg.HeartbeatInterval,
		IdleTimeout:          cfg.IdleTimeout,
		CompressionThreshold: cfg.CompressionThreshold,
		Logger:               logging.Logger("eventbus"),
		Metrics:              metrics,
	})
}

// NewHandler builds the SSE RouteRegistrar over bus.
func NewHandler(bus *eventbus.Bus) *httpapi.Handler {
	return httpapi.New(bus, logging.Logger("eventbus/httpapi"))
}

func registerLifecycle(lc fx.Lifecycle, bus *eventbus.Bus) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			bus.Shutdown()
			return nil
		},
	})
}

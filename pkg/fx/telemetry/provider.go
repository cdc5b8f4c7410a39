// Package telemetry wires OpenTelemetry metrics, the Prometheus scrape
// endpoint, and host metrics into the composition root, following the
// teacher's cmd/cli/root.go:initTelemetry + pkg/telemetry.Initialize
// pattern translated onto fx.
package telemetry

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	echofx "github.com/jaye773/summarizer-core/pkg/fx/echo"
	"github.com/jaye773/summarizer-core/pkg/config"
	"github.com/jaye773/summarizer-core/pkg/telemetry"
)

var Module = fx.Module("telemetry",
	fx.Provide(
		New,
		fx.Annotate(
			NewMetricsHandler,
			fx.As(new(echofx.RouteRegistrar)),
			fx.ResultTags(`group:"route_registrar"`),
		),
	),
	fx.Invoke(
		setupHTTPMetrics,
		registerHostMetrics,
	),
)

// New initializes the global telemetry instance and returns it, the way the
// teacher's cobra.OnInitialize(initTelemetry) calls telemetry.Initialize
// synchronously before the server starts serving. When cfg.Disable is set,
// the global noop instance telemetry.Global() already falls back to is
// returned untouched, so every downstream Metrics wrapper is built on no-op
// instruments without a separate code path.
func New(lc fx.Lifecycle, cfg config.TelemetryConfig) (*telemetry.Telemetry, error) {
	if cfg.Disable {
		return telemetry.Global(), nil
	}

	if err := telemetry.Initialize(context.Background(), telemetry.Config{
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return telemetry.Shutdown(ctx)
		},
	})

	return telemetry.Global(), nil
}

// metricsHandler exposes the Prometheus exporter's registry over HTTP.
type metricsHandler struct{}

// NewMetricsHandler returns a RouteRegistrar mounting /metrics. Resolving
// *telemetry.Telemetry as a parameter (even though it is unused beyond
// ordering) forces fx to initialize telemetry before any request can reach
// the handler.
func NewMetricsHandler(_ *telemetry.Telemetry) *metricsHandler {
	return &metricsHandler{}
}

func (h *metricsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func setupHTTPMetrics(tel *telemetry.Telemetry) error {
	return telemetry.SetupHTTPMetrics(tel.Meter())
}

// registerHostMetrics starts the CPU/memory/data-dir gauges for the
// lifetime of the app; StartHostMetrics unregisters its callback once ctx
// is cancelled, so OnStop just cancels that context rather than
// duplicating the unregister logic.
func registerHostMetrics(lc fx.Lifecycle, repo config.RepoConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return telemetry.StartHostMetrics(ctx, repo.DataDir)
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

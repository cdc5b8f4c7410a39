package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider wraps a Prometheus-backed MeterProvider, replacing the teacher's
// otlpmetrichttp exporter: this core ships a single in-process Prometheus
// scrape endpoint rather than a push pipeline to a remote collector.
type Provider struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter
	exporter *prometheus.Exporter
}

// Config describes the resource attributes attached to every exported
// metric.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	InstanceID     string
	Endpoint       string
}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(provider)

	return &Provider{
		provider: provider,
		meter:    provider.Meter(cfg.ServiceName),
		exporter: exporter,
	}, nil
}

func (p *Provider) Meter() metric.Meter {
	return p.meter
}

// Exporter exposes the Prometheus exporter. The /metrics route mounted by
// pkg/fx/telemetry serves the default Prometheus registry, which the
// exporter registers with, and does not call this accessor.
func (p *Provider) Exporter() *prometheus.Exporter {
	return p.exporter
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

package telemetry

import (
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel/metric"
)

var log = logging.Logger("telemetry")

// HTTP-layer instruments, registered by SetupHTTPMetrics. No middleware in
// pkg/fx/echo records onto them, so they export no data points. Per-job
// and per-connection instruments live beside the packages that own them
// (internal/worker, internal/eventbus) rather than in one giant global
// block, following the teacher's own per-subsystem Telemetry.NewX pattern
// rather than its legacy package-level metrics.go var block.
var (
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestSize     metric.Float64Histogram
	HTTPResponseSize    metric.Float64Histogram
)

// SetupHTTPMetrics registers the shared HTTP instruments against the given
// meter. Called once during composition-root startup.
func SetupHTTPMetrics(meter metric.Meter) error {
	var err error

	HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.duration.seconds",
		metric.WithDescription("Duration of HTTP requests in seconds, by endpoint, method, and status"),
		metric.WithExplicitBucketBoundaries(HTTPServerDurationBounds...),
	)
	if err != nil {
		return err
	}

	HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.count",
		metric.WithDescription("Total number of HTTP requests, by endpoint, method, and status"),
	)
	if err != nil {
		return err
	}

	HTTPRequestSize, err = meter.Float64Histogram(
		"http.server.request.size.bytes",
		metric.WithDescription("Size of HTTP request bodies in bytes"),
	)
	if err != nil {
		return err
	}

	HTTPResponseSize, err = meter.Float64Histogram(
		"http.server.response.size.bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
	)
	if err != nil {
		return err
	}

	return nil
}

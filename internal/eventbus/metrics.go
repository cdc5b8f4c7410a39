package eventbus

import (
	"context"

	"github.com/jaye773/summarizer-core/pkg/telemetry"
)

// Metrics wraps the counters/gauges this pool reports, grounded on the same
// pattern as internal/worker/metrics.go: an absolute-value Gauge for the
// live connection count, monotonic Counters for the things that happen to a
// connection over its lifetime.
type Metrics struct {
	connections *telemetry.Gauge
	rejected    *telemetry.Counter
	overflowed  *telemetry.Counter
	published   *telemetry.Counter

	noop bool
}

// NewMetrics builds a Metrics instance backed by tel.
func NewMetrics(tel *telemetry.Telemetry) (*Metrics, error) {
	connections, err := tel.NewGauge(telemetry.GaugeConfig{
		Name:        "summarizer_eventbus_connections",
		Description: "number of open SSE connections held by the bus",
	})
	if err != nil {
		return nil, err
	}
	rejected, err := tel.NewCounter(telemetry.CounterConfig{
		Name:        "summarizer_eventbus_connections_rejected_total",
		Description: "count of Register calls refused by the global or per-client cap",
	})
	if err != nil {
		return nil, err
	}
	overflowed, err := tel.NewCounter(telemetry.CounterConfig{
		Name:        "summarizer_eventbus_queue_overflow_total",
		Description: "count of events dropped from a connection's outgoing queue to make room for a newer one",
	})
	if err != nil {
		return nil, err
	}
	published, err := tel.NewCounter(telemetry.CounterConfig{
		Name:        "summarizer_eventbus_events_published_total",
		Description: "count of events accepted onto at least one connection's outgoing queue",
	})
	if err != nil {
		return nil, err
	}
	return &Metrics{
		connections: connections,
		rejected:    rejected,
		overflowed:  overflowed,
		published:   published,
	}, nil
}

// NewNoopMetrics is the zero-dependency default used when the bus is
// constructed without telemetry wired in (e.g. in tests).
func NewNoopMetrics() *Metrics {
	return &Metrics{noop: true}
}

func (m *Metrics) RecordConnectionCount(n int) {
	if m.noop {
		return
	}
	m.connections.Record(context.Background(), int64(n))
}

func (m *Metrics) RecordRejected(perClient bool) {
	if m.noop {
		return
	}
	attr := telemetry.BoolAttr("per_client", perClient)
	m.rejected.Inc(context.Background(), attr)
}

func (m *Metrics) RecordOverflow() {
	if m.noop {
		return
	}
	m.overflowed.Inc(context.Background())
}

func (m *Metrics) RecordPublish(eventType EventType) {
	if m.noop {
		return
	}
	m.published.Inc(context.Background(), telemetry.StringAttr("event_type", string(eventType)))
}

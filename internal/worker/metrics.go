package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jaye773/summarizer-core/pkg/telemetry"
)

// Metrics wraps the counters/gauges/timers this pool reports, grounded on
// the teacher's lib/jobqueue/worker/telemetry.go metricsRecorder: an
// Int64Gauge only records an absolute value, so active-job deltas are
// accumulated locally with atomic.Int64 before each Record call, the same
// way the teacher's recordGaugeDelta helper does.
type Metrics struct {
	active      *telemetry.Gauge
	activeCount atomic.Int64
	failures    *telemetry.Counter
	duration    *telemetry.Timer

	noop bool
}

// NewMetrics builds a Metrics instance backed by tel.
func NewMetrics(tel *telemetry.Telemetry) (*Metrics, error) {
	active, err := tel.NewGauge(telemetry.GaugeConfig{
		Name:        "summarizer_worker_active_jobs",
		Description: "number of jobs currently being processed by the worker pool",
	})
	if err != nil {
		return nil, err
	}
	failures, err := tel.NewCounter(telemetry.CounterConfig{
		Name:        "summarizer_worker_job_failures_total",
		Description: "count of failed job executions, including failures that are then retried",
	})
	if err != nil {
		return nil, err
	}
	duration, err := tel.NewTimer(telemetry.TimerConfig{
		Name:        "summarizer_worker_job_duration_ms",
		Description: "wall-clock duration of a single summarizer invocation",
		Unit:        "ms",
	})
	if err != nil {
		return nil, err
	}
	return &Metrics{active: active, failures: failures, duration: duration}, nil
}

// NewNoopMetrics is the zero-dependency default used when the pool is
// constructed without telemetry wired in (e.g. in tests).
func NewNoopMetrics() *Metrics {
	return &Metrics{noop: true}
}

func (m *Metrics) RecordActiveDelta(delta int64) {
	if m.noop {
		return
	}
	total := m.activeCount.Add(delta)
	m.active.Record(context.Background(), total)
}

func (m *Metrics) RecordJobFailure() {
	if m.noop {
		return
	}
	m.failures.Inc(context.Background())
}

func (m *Metrics) RecordJobDuration(d time.Duration) {
	if m.noop {
		return
	}
	m.duration.Record(context.Background(), d)
}

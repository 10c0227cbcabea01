package navigation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names, also read back by the telemetry package.
const (
	MetricRebuildDuration = "navindex.rebuild.duration"
	MetricRebuildCount    = "navindex.rebuild.count"
)

// rebuildMetrics records rebuild counts and latencies.
type rebuildMetrics struct {
	duration metric.Float64Histogram
	count    metric.Int64Counter
}

func newRebuildMetrics(mp metric.MeterProvider) *rebuildMetrics {
	meter := mp.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(MetricRebuildDuration,
		metric.WithUnit("ms"),
		metric.WithDescription("Time taken to rebuild a navigation tree"),
	)
	if err != nil {
		otel.Handle(err)
	}
	count, err := meter.Int64Counter(MetricRebuildCount,
		metric.WithDescription("Number of navigation tree rebuilds"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &rebuildMetrics{duration: duration, count: count}
}

func (m *rebuildMetrics) record(ctx context.Context, cfg Config, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("kind", cfg.Kind.String()),
		attribute.Bool("trashed", cfg.Trashed),
		attribute.Bool("error", err != nil),
	)
	if m.duration != nil {
		m.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)
	}
	if m.count != nil {
		m.count.Add(ctx, 1, attrs)
	}
}

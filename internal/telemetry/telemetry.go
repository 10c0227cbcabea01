// Package telemetry installs the OpenTelemetry SDK providers that record
// navigation rebuild spans and metrics.
package telemetry

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"navindex/internal/logging"
	"navindex/internal/navigation"
)

const serviceName = "navindex"

// Telemetry owns the SDK tracer and meter providers of one process.
// Spans are written to the logger at debug level; metrics are kept in
// memory and read on demand through Rebuilds.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider

	reader *sdkmetric.ManualReader
}

// New creates the providers. Pass them to the navigation package with
// navigation.WithTracerProvider and navigation.WithMeterProvider.
func New(logger *logging.Logger) *Telemetry {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	reader := sdkmetric.NewManualReader()
	return &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogSpanExporter(logger))),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		),
		reader: reader,
	}
}

// RebuildSummary aggregates the rebuilds of one tree since start-up.
type RebuildSummary struct {
	Kind     string
	Trashed  bool
	Rebuilds int64
	Failures int64
	Total    time.Duration
}

type treeKey struct {
	kind    string
	trashed bool
}

// Rebuilds collects the rebuild metrics recorded so far, one entry per tree
// that was rebuilt at least once, live before bin within a kind.
func (t *Telemetry) Rebuilds(ctx context.Context) ([]RebuildSummary, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}

	trees := make(map[treeKey]*RebuildSummary)
	summary := func(attrs attribute.Set) *RebuildSummary {
		kind, _ := attrs.Value("kind")
		trashed, _ := attrs.Value("trashed")
		k := treeKey{kind: kind.AsString(), trashed: trashed.AsBool()}
		s, ok := trees[k]
		if !ok {
			s = &RebuildSummary{Kind: k.kind, Trashed: k.trashed}
			trees[k] = s
		}
		return s
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != navigation.MetricRebuildCount {
					continue
				}
				for _, dp := range data.DataPoints {
					s := summary(dp.Attributes)
					s.Rebuilds += dp.Value
					if failed, ok := dp.Attributes.Value("error"); ok && failed.AsBool() {
						s.Failures += dp.Value
					}
				}
			case metricdata.Histogram[float64]:
				if m.Name != navigation.MetricRebuildDuration {
					continue
				}
				for _, dp := range data.DataPoints {
					summary(dp.Attributes).Total += time.Duration(dp.Sum * float64(time.Millisecond))
				}
			}
		}
	}

	out := make([]RebuildSummary, 0, len(trees))
	for _, s := range trees {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b RebuildSummary) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		switch {
		case a.Trashed == b.Trashed:
			return 0
		case a.Trashed:
			return 1
		default:
			return -1
		}
	})
	return out, nil
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
}

// LogSpanExporter writes ended spans to a logger.
type LogSpanExporter struct {
	logger *logging.Logger
}

// NewLogSpanExporter creates an exporter writing to logger at debug level.
func NewLogSpanExporter(logger *logging.Logger) *LogSpanExporter {
	if logger == nil {
		logger = logging.NoopLogger()
	}
	return &LogSpanExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		args := []any{
			"span", span.Name(),
			"trace_id", span.SpanContext().TraceID().String(),
			"duration", span.EndTime().Sub(span.StartTime()),
		}
		for _, kv := range span.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		if status := span.Status(); status.Code == codes.Error {
			args = append(args, "error", status.Description)
		}
		e.logger.DebugContext(ctx, "span ended", args...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

var _ sdktrace.SpanExporter = (*LogSpanExporter)(nil)

package navigation

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"navindex/internal/logging"
	"navindex/internal/ports"
)

const instrumentationName = "navindex/navigation"

type options struct {
	guard          ports.ConsistencyGuard
	logger         *logging.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Index, a Registry or a Bootstrapper.
type Option func(*options)

// WithGuard sets the consistency guard used to read snapshots during rebuild.
func WithGuard(guard ports.ConsistencyGuard) Option {
	return func(o *options) {
		o.guard = guard
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NoopLogger()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	return o
}

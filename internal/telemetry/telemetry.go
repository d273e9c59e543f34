// Package telemetry implements the engine's telemetry capability on
// OpenTelemetry.
//
// Telemetry is disabled by default: Init installs no-op providers unless
// FLOWKIT_OTEL_ENABLED=true, so the engine's span wrapping costs nothing when
// off. With FLOWKIT_OTEL_STDOUT=true spans and metrics are pretty-printed to
// stderr for local development.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"flowkit/internal/runctx"
)

const instrumentationScope = "flowkit"

var shutdownFns []func(context.Context) error

// Enabled reports whether telemetry is active (FLOWKIT_OTEL_ENABLED=true).
func Enabled() bool {
	return os.Getenv("FLOWKIT_OTEL_ENABLED") == "true"
}

// Init configures OTel providers. When telemetry is disabled this leaves the
// default no-op providers in place and returns immediately.
func Init(ctx context.Context, serviceName, version string) error {
	if !Enabled() {
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	if os.Getenv("FLOWKIT_OTEL_STDOUT") == "true" {
		traceExp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("telemetry: stdout trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdownFns = append(shutdownFns, tp.Shutdown)

		metricExp, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("telemetry: stdout metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdownFns = append(shutdownFns, mp.Shutdown)
	}

	return nil
}

// Shutdown flushes and stops every installed provider.
func Shutdown(ctx context.Context) error {
	var firstErr error
	for _, fn := range shutdownFns {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	shutdownFns = nil
	return firstErr
}

// OTel implements the runctx.Telemetry capability: spans go to the OTel
// tracer, counters to the OTel meter, and span durations are additionally
// recorded into an HDR histogram for the local latency summary.
type OTel struct {
	tracer trace.Tracer
	meter  metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
	latency  *hdrhistogram.Histogram
}

// NewOTel creates an OTel capability bound to the globally installed
// providers.
func NewOTel() *OTel {
	return &OTel{
		tracer:   otel.Tracer(instrumentationScope),
		meter:    otel.Meter(instrumentationScope),
		counters: make(map[string]metric.Int64Counter),
		// 1µs to 1h at 3 significant figures.
		latency: hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3),
	}
}

// Span executes fn inside a named span, returning fn's result or error
// unchanged.
func (t *OTel) Span(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, name)
	start := time.Now()
	err := fn(ctx)
	t.recordLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}

// Counter returns the named counter, creating it on first use.
func (t *OTel) Counter(name string) runctx.Counter {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.counters[name]
	if !ok {
		var err error
		c, err = t.meter.Int64Counter(name)
		if err != nil {
			return noopCounter{}
		}
		t.counters[name] = c
	}
	return otelCounter{counter: c}
}

func (t *OTel) recordLatency(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.latency.RecordValue(d.Microseconds())
}

// Summary reports span latency percentiles recorded so far.
func (t *OTel) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latency.TotalCount() == 0 {
		return "no spans recorded"
	}
	return fmt.Sprintf("spans=%d p50=%dµs p95=%dµs p99=%dµs max=%dµs",
		t.latency.TotalCount(),
		t.latency.ValueAtQuantile(50),
		t.latency.ValueAtQuantile(95),
		t.latency.ValueAtQuantile(99),
		t.latency.Max())
}

type otelCounter struct {
	counter metric.Int64Counter
}

func (c otelCounter) Add(n int64) {
	c.counter.Add(context.Background(), n)
}

type noopCounter struct{}

func (noopCounter) Add(int64) {}

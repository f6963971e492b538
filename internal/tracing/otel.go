package tracing

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	providerOnce sync.Once
	providerMu   sync.RWMutex
	provider     *sdktrace.TracerProvider
	providerErr  error
)

// Options configures the process-wide tracer provider
type Options struct {
	ServiceName string
	// OTLPEndpoint is a full OTLP/HTTP traces URL; spans are not exported when empty.
	OTLPEndpoint string
}

// InitOpenTelemetry initializes a process-wide OpenTelemetry tracer provider.
// It is safe to call multiple times; only the first call takes effect.
func InitOpenTelemetry(ctx context.Context, opts Options) error {
	providerOnce.Do(func() {
		res, err := resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceName(opts.ServiceName),
			),
		)
		if err != nil {
			providerErr = err
			return
		}

		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1))),
			sdktrace.WithResource(res),
		}

		if opts.OTLPEndpoint != "" {
			exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.OTLPEndpoint))
			if err != nil {
				providerErr = fmt.Errorf("failed to create OTLP exporter: %w", err)
				return
			}
			// Synchronous export: the process exits right after a single invocation.
			tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
		}

		tp := sdktrace.NewTracerProvider(tpOpts...)

		providerMu.Lock()
		provider = tp
		providerMu.Unlock()

		otel.SetTracerProvider(tp)
	})

	return providerErr
}

// ShutdownOpenTelemetry flushes and shuts down the global tracer provider.
func ShutdownOpenTelemetry(ctx context.Context) error {
	providerMu.RLock()
	tp := provider
	providerMu.RUnlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// StartSpan starts a span and ensures trace_id is propagated in the tracing context package.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))

	if GetTraceID(ctx) == "" {
		sc := span.SpanContext()
		if sc.IsValid() {
			ctx = WithTraceID(ctx, sc.TraceID().String())
		} else {
			ctx = WithTraceID(ctx, NewTraceID())
		}
	}

	return ctx, span
}

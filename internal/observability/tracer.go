// Package observability wires OpenTelemetry tracing. Tracing is off unless
// OTEL_ENABLED=true; spans created through otel.Tracer are then no-ops.
package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"parley/internal/config"
)

// ServiceName is reported as service.name on every span
const ServiceName = "parley"

const defaultEndpoint = "localhost:4318"

// InitTracer installs the global tracer provider.
// Returns a shutdown function that flushes pending spans; it is safe to call
// when tracing is disabled.
func InitTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		logger.Debug("tracing disabled (set OTEL_ENABLED=true to enable)")
		return func(context.Context) error { return nil }, nil
	}

	endpoint := cfg.OTELEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	opts := exporterOptions(endpoint, cfg.IsProduction())
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized", zap.String("endpoint", endpoint))
	return tp.Shutdown, nil
}

// exporterOptions accepts OTEL_EXPORTER_OTLP_ENDPOINT as a URL
// (http://host:4318, scheme decides TLS) or a bare host:port
func exporterOptions(endpoint string, production bool) []otlptracehttp.Option {
	if strings.Contains(endpoint, "://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if !production {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// Package otel bootstraps OpenTelemetry tracing for the control plane. All
// knobs come from the standard OTEL_* environment variables; a missing or
// broken exporter degrades to no-op tracing instead of failing startup, since
// the service must stay usable without a collector.
package otel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Init configures the global tracer provider and returns its shutdown
// function. With OTEL_SDK_DISABLED=true only context propagation is set up.
func Init(ctx context.Context, loc *time.Location) (func(context.Context) error, error) {
	setPropagator()

	if os.Getenv("OTEL_SDK_DISABLED") == "true" {
		logJSON(loc, "info", map[string]any{"msg": "tracing_configured", "tracing_enabled": false})
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(envOr("OTEL_SERVICE_NAME", "driftwatch")),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	exporter, err := newExporter(ctx)
	if err != nil {
		// Keep serving without traces.
		logJSON(loc, "error", map[string]any{"msg": "tracing_init_failed", "error": err.Error()})
		return noopShutdown, nil
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(samplerFromEnv()),
	)
	otel.SetTracerProvider(tp)

	logJSON(loc, "info", map[string]any{
		"msg":             "tracing_configured",
		"tracing_enabled": true,
		"otlp_protocol":   envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		"otlp_endpoint":   endpointFromEnv(),
		"sampler":         envOr("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
		"sampler_arg":     envOr("OTEL_TRACES_SAMPLER_ARG", "1.0"),
	})

	return tp.Shutdown, nil
}

func noopShutdown(context.Context) error { return nil }

func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func newExporter(ctx context.Context) (*otlptrace.Exporter, error) {
	switch protocol := envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"); protocol {
	case "grpc":
		return otlptracegrpc.New(ctx)
	case "http/protobuf":
		return otlptracehttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %s", protocol)
	}
}

func endpointFromEnv() string {
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); ep != "" {
		return ep
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

func samplerFromEnv() trace.Sampler {
	ratio := func() float64 {
		r := 1.0
		fmt.Sscanf(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), "%f", &r)
		return r
	}

	switch os.Getenv("OTEL_TRACES_SAMPLER") {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(ratio())
	case "parentbased_always_on":
		return trace.ParentBased(trace.AlwaysSample())
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(ratio()))
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// logJSON emits one-line JSON, matching the request logger's format.
func logJSON(loc *time.Location, level string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().In(loc).Format(time.RFC3339Nano),
		"level": level,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}

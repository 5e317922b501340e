// Package tracing configures OpenTelemetry for the simulator. When no output
// is configured the global no-op provider stays in place and spans cost
// nothing.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "orderbot"

// Tracer returns the tracer used for engine and API spans.
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// Init installs a tracer provider exporting spans as JSON to outputFile. An
// empty outputFile disables tracing. The returned shutdown function flushes
// and closes the exporter.
func Init(version, outputFile string) (func(context.Context) error, error) {
	if outputFile == "" {
		return func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}

	tp, err := newProvider(version, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		defer f.Close()
		return tp.Shutdown(ctx)
	}, nil
}

// newProvider builds a synchronous stdout-exporter provider writing to w.
func newProvider(version string, w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	), nil
}

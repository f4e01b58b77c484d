// Package telemetry wires OpenTelemetry tracing for the runners. Without
// Init the global no-op provider is used and spans cost nothing.
package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/agbru/fanout"

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Init installs a tracer provider exporting spans as JSON to outputFile.
// An empty outputFile leaves the no-op provider in place.
func Init(serviceName, serviceVersion, outputFile string) (ShutdownFunc, error) {
	if outputFile == "" {
		return func(context.Context) error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, err
	}
	shutdown, err := InitWithWriter(serviceName, serviceVersion, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

// InitWithWriter installs a tracer provider exporting spans to w.
func InitWithWriter(serviceName, serviceVersion string, w io.Writer) (ShutdownFunc, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span named name with the given attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Package tracing wires OpenTelemetry: a gRPC OTLP exporter stood up
// only when OTEL_EXPORTER_OTLP_ENDPOINT is set, otherwise tracing is a
// global no-op and StartSpan costs nothing beyond a context wrap.
package tracing

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "llmgateway"

var (
	initOnce       sync.Once
	tracerProvider *sdktrace.TracerProvider
)

// Init configures OpenTelemetry tracing if an OTLP endpoint is present
// in the environment, and registers the resulting provider as global.
// It returns a shutdown function to invoke during server shutdown; the
// function is a no-op when tracing was never enabled.
func Init(ctx context.Context, serviceVersion string) (func(context.Context) error, error) {
	var initErr error
	initOnce.Do(func() {
		endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
		if endpoint == "" {
			return
		}

		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		insecureFlag := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"))
		if insecureFlag == "" || strings.EqualFold(insecureFlag, "true") || strings.EqualFold(insecureFlag, "1") {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}

		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			initErr = err
			return
		}

		hostname, _ := os.Hostname()
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(tracerName),
				attribute.String("service.version", serviceVersion),
				attribute.String("service.instance.id", hostname),
			),
			resource.WithProcess(),
			resource.WithTelemetrySDK(),
			resource.WithFromEnv(),
		)
		if err != nil {
			initErr = err
			return
		}

		tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tracerProvider)
	})

	if initErr != nil {
		return nil, initErr
	}
	return func(shutdownCtx context.Context) error {
		if tracerProvider == nil {
			return nil
		}
		return tracerProvider.Shutdown(shutdownCtx)
	}, nil
}

// StartSpan starts a span named component/operation on the global
// tracer.
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := otel.Tracer(tracerName)
	spanName := component + "/" + operation
	return tr.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// EndWithError records err on span (if non-nil) and sets the span
// status accordingly, then ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cschleiden/go-resume/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTracerProvider(ctx context.Context, cfg config.TracingConfig) (trace.TracerProvider, func(context.Context) error, error) {
	var opt sdktrace.TracerProviderOption

	switch cfg.Exporter {
	case "", config.ExporterNone:
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil

	case config.ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, nil, fmt.Errorf("creating stdout exporter: %w", err)
		}

		opt = sdktrace.WithSyncer(exp)

	case config.ExporterOTLP:
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}

		exp, err := otlptrace.New(ctx, otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, nil, fmt.Errorf("creating otlp exporter: %w", err)
		}

		opt = sdktrace.WithBatcher(exp)

	default:
		return nil, nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}

	r := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
	)

	tp := sdktrace.NewTracerProvider(opt, sdktrace.WithResource(r))
	otel.SetTracerProvider(tp)

	return tp, tp.Shutdown, nil
}

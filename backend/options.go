package backend

import (
	"log/slog"

	mi "github.com/cschleiden/go-resume/internal/metrics"
	"github.com/cschleiden/go-resume/metrics"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Options struct {
	Logger *slog.Logger

	Metrics metrics.Client

	TracerProvider trace.TracerProvider

	// MaxHistoryEvents limits how many history events are requested for a single execution.
	MaxHistoryEvents int
}

var DefaultOptions Options = Options{
	MaxHistoryEvents: 1000,

	Logger:         slog.Default(),
	Metrics:        mi.NewNoopMetricsClient(),
	TracerProvider: noop.NewTracerProvider(),
}

type BackendOption func(*Options)

func WithLogger(logger *slog.Logger) BackendOption {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithMetrics(client metrics.Client) BackendOption {
	return func(o *Options) {
		o.Metrics = client
	}
}

func WithTracerProvider(tp trace.TracerProvider) BackendOption {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

func WithMaxHistoryEvents(maxEvents int) BackendOption {
	return func(o *Options) {
		o.MaxHistoryEvents = maxEvents
	}
}

func ApplyOptions(opts ...BackendOption) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if options.MaxHistoryEvents <= 0 {
		options.MaxHistoryEvents = DefaultOptions.MaxHistoryEvents
	}

	return options
}

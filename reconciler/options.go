package reconciler

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	im "github.com/cschleiden/go-resume/internal/metrics"
	"github.com/cschleiden/go-resume/metrics"
)

type Options struct {
	// Interval between two updates of the same target.
	Interval time.Duration

	// InitialInterval is the first delay before retrying an update that reported an error.
	InitialInterval time.Duration

	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration

	// MaxElapsedTime stops retrying an update after this long. Zero or more than Interval is capped at
	// Interval, so retries never run into the next update.
	MaxElapsedTime time.Duration

	// RateLimit is the maximum number of updates per second across all targets. Zero is unlimited.
	RateLimit float64

	Clock clock.Clock

	Logger *slog.Logger

	Metrics metrics.Client
}

var DefaultOptions = Options{
	Interval:        5 * time.Minute,
	InitialInterval: time.Second,
	MaxInterval:     30 * time.Second,
	MaxElapsedTime:  2 * time.Minute,
}

type Option func(*Options)

func WithInterval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// WithBackoff configures retries of updates that reported an error.
func WithBackoff(initial, max, maxElapsed time.Duration) Option {
	return func(o *Options) {
		o.InitialInterval = initial
		o.MaxInterval = max
		o.MaxElapsedTime = maxElapsed
	}
}

// WithRateLimit limits updates, retries included, to limit per second across all targets.
func WithRateLimit(limit float64) Option {
	return func(o *Options) {
		o.RateLimit = limit
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithMetrics(client metrics.Client) Option {
	return func(o *Options) {
		o.Metrics = client
	}
}

func applyOptions(opts ...Option) Options {
	o := DefaultOptions
	o.Clock = clock.New()
	o.Logger = slog.Default()
	o.Metrics = im.NewNoopMetricsClient()

	for _, opt := range opts {
		opt(&o)
	}

	if o.Interval <= 0 {
		o.Interval = DefaultOptions.Interval
	}

	if o.MaxElapsedTime <= 0 || o.MaxElapsedTime > o.Interval {
		o.MaxElapsedTime = o.Interval
	}

	return o
}

// Package metrics defines the client the engine, backends and reconciler report counters and timings
// through.
package metrics

import "time"

// Tags are attached to a single measurement. Keys become label names, dots are allowed.
type Tags map[string]string

type Client interface {
	// Counter adds value to the named counter.
	Counter(name string, tags Tags, value int64)

	Distribution(name string, tags Tags, value float64)

	// Gauge sets the named gauge, e.g. the number of cached store records.
	Gauge(name string, tags Tags, value int64)

	// Timing records a duration, reported in milliseconds.
	Timing(name string, tags Tags, duration time.Duration)

	// WithTags returns a client that adds tags to every measurement.
	WithTags(tags Tags) Client
}

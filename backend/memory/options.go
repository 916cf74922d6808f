package memory

import (
	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-resume/backend"
)

type options struct {
	backend.Options

	// Clock is used to stamp started executions and their events.
	Clock clock.Clock
}

type option func(*options)

// WithClock sets the clock used for start times and event timestamps.
func WithClock(c clock.Clock) option {
	return func(o *options) {
		o.Clock = c
	}
}

// WithBackendOptions allows to pass generic backend options.
func WithBackendOptions(opts ...backend.BackendOption) option {
	return func(o *options) {
		for _, opt := range opts {
			opt(&o.Options)
		}
	}
}

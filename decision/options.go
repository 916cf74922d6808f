package decision

import (
	"github.com/benbjohnson/clock"
)

const DefaultRunNamePrefix = "ResumeManager"

type options struct {
	clock            clock.Clock
	runNamePrefix    string
	maxHistoryEvents int
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithRunNamePrefix sets the prefix of the names given to started executions.
func WithRunNamePrefix(prefix string) Option {
	return func(o *options) {
		o.runNamePrefix = prefix
	}
}

// WithMaxHistoryEvents limits how many history events of the last execution are analyzed. Defaults
// to the backend's MaxHistoryEvents.
func WithMaxHistoryEvents(n int) Option {
	return func(o *options) {
		o.maxHistoryEvents = n
	}
}

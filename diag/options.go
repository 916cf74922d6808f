package diag

import (
	"github.com/cschleiden/go-resume/backend"
	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	backend  backend.Backend
	gatherer prometheus.Gatherer
}

type Option func(*options)

// WithBackend includes the history of each resource's last execution in record details.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithGatherer serves the gathered metrics at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

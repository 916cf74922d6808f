package sfn

import (
	"github.com/cschleiden/go-resume/backend"
)

type Options struct {
	backend.Options

	// Region overrides the region from the default AWS configuration chain.
	Region string

	// PageSize is the number of history events requested per call. Step Functions allows at most 1000.
	PageSize int32
}

var DefaultOptions = Options{
	Options:  backend.DefaultOptions,
	PageSize: 1000,
}

type Option func(*Options)

func WithRegion(region string) Option {
	return func(o *Options) {
		o.Region = region
	}
}

func WithPageSize(size int32) Option {
	return func(o *Options) {
		o.PageSize = size
	}
}

// WithBackendOptions allows to pass generic backend options.
func WithBackendOptions(opts ...backend.BackendOption) Option {
	return func(o *Options) {
		o.Options = backend.ApplyOptions(opts...)
	}
}

package redis

type options struct {
	// KeyPrefix is prepended to all keys, allowing multiple stores to share a database.
	KeyPrefix string
}

type option func(*options)

// WithKeyPrefix sets the prefix for all keys used by the store.
func WithKeyPrefix(prefix string) option {
	return func(o *options) {
		o.KeyPrefix = prefix
	}
}

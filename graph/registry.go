package graph

import (
	"fmt"
	"sync"
)

type registryKey struct {
	scope string
	id    string
}

// Registry holds objects that must exist only once per scope, e.g. one dispatcher per stack.
type Registry struct {
	sync.Mutex

	entries map[registryKey]any
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[registryKey]any),
	}
}

// GetOrCreate returns the object registered under scope and id, calling build to create and register
// it if there is none. build runs with the registry locked and must not use the registry.
func (r *Registry) GetOrCreate(scope, id string, build func() (any, error)) (any, error) {
	r.Lock()
	defer r.Unlock()

	key := registryKey{scope, id}
	if v, ok := r.entries[key]; ok {
		return v, nil
	}

	v, err := build()
	if err != nil {
		return nil, fmt.Errorf("creating %q in scope %q: %w", id, scope, err)
	}

	r.entries[key] = v

	return v, nil
}

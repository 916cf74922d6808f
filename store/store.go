// Package store persists the attributes reported for each resource, so a later lifecycle event can
// fall back to them when the workflow engine cannot be reached.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrRecordNotFound = errors.New("record not found")

type Record struct {
	// PhysicalID identifies the resource the attributes were reported for.
	PhysicalID string `json:"physical_id"`

	WorkflowID string `json:"workflow_id"`

	Attributes map[string]string `json:"attributes"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r

	c.Attributes = make(map[string]string, len(r.Attributes))
	for k, v := range r.Attributes {
		c.Attributes[k] = v
	}

	return &c
}

type Store interface {
	// Get returns the record for the given physical id, or ErrRecordNotFound.
	Get(ctx context.Context, physicalID string) (*Record, error)

	// Put creates or replaces the record.
	Put(ctx context.Context, r *Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, physicalID string) error

	// List returns up to count records, most recently updated first.
	List(ctx context.Context, count int) ([]*Record, error)

	Close() error
}

package diag

import (
	"time"

	"github.com/cschleiden/go-resume/store"
)

type Event struct {
	ID         int64       `json:"id,omitempty"`
	Type       string      `json:"type,omitempty"`
	SourceType string      `json:"source_type,omitempty"`
	Timestamp  time.Time   `json:"timestamp,omitempty"`
	Attributes interface{} `json:"attributes,omitempty"`
}

type RecordInfo struct {
	*store.Record

	// History of the last execution, most recent event first. Only set when a backend is configured.
	History []*Event `json:"history,omitempty"`
}

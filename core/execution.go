package core

import (
	"time"

	"github.com/cschleiden/go-resume/payload"
)

type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusTimedOut  ExecutionStatus = "TIMED_OUT"
	ExecutionStatusAborted   ExecutionStatus = "ABORTED"
)

// Terminal returns true once an execution has stopped, successfully or not.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusSucceeded || s.Failed()
}

// Failed returns true for the terminal failure statuses.
func (s ExecutionStatus) Failed() bool {
	switch s {
	case ExecutionStatusFailed, ExecutionStatusTimedOut, ExecutionStatusAborted:
		return true
	}

	return false
}

// Execution is one run of a workflow, as reported by the workflow engine.
type Execution struct {
	// Handle identifies the execution in the engine, e.g. the execution ARN.
	Handle string `json:"handle,omitempty"`

	WorkflowID string `json:"workflow_id,omitempty"`

	// Name is the run name given when the execution was started.
	Name string `json:"name,omitempty"`

	Status ExecutionStatus `json:"status,omitempty"`

	StartedAt time.Time `json:"started_at,omitempty"`

	// Input is the payload the execution was started with. Engines might not return it when listing executions.
	Input payload.Payload `json:"input,omitempty"`
}

func NewExecution(workflowID, handle, name string, status ExecutionStatus, startedAt time.Time) *Execution {
	return &Execution{
		Handle:     handle,
		WorkflowID: workflowID,
		Name:       name,
		Status:     status,
		StartedAt:  startedAt,
	}
}

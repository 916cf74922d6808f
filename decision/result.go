package decision

import (
	"strings"
	"time"

	"github.com/cschleiden/go-resume/continuation"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/payload"
)

type Action int

const (
	ActionNone Action = iota
	ActionStart
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "Start"
	default:
		return "None"
	}
}

// Status is reported back to the lifecycle event's caller. Besides the constants below it carries the
// status of the last execution when no action was taken.
type Status string

const (
	StatusExecutionStarted Status = "EXECUTION_STARTED"
	StatusListError        Status = "EXECUTION_LIST_ERROR"
	StatusHistoryError     Status = "EXECUTION_HISTORY_ERROR"
	StatusStartFailed      Status = "EXECUTION_START_FAILED"
)

func executionStatus(s core.ExecutionStatus) Status {
	return Status(s)
}

// IsError returns true if the status reports a failed call to the workflow engine.
func (s Status) IsError() bool {
	return s == StatusStartFailed || strings.HasSuffix(string(s), "_ERROR")
}

type Result struct {
	Action Action

	Status Status

	LastExecutionHandle string

	LastExecutionStartTime time.Time

	// Continuation is set whenever the history of the last execution was analyzed.
	Continuation *continuation.Continuation

	// StartedInput is the input sent to the workflow engine when starting an execution.
	StartedInput payload.Payload

	// Err is the error returned by the workflow engine, if any.
	Err error
}

// TaskStates returns the continuation in its serialized form, or an empty string if there is none.
func (r *Result) TaskStates() string {
	if r.Continuation == nil {
		return ""
	}

	return r.Continuation.String()
}

package decision

import (
	"fmt"
	"time"

	"github.com/cschleiden/go-resume/payload"
)

// Kind is the lifecycle event a decision is made for.
type Kind int

const (
	_ Kind = iota

	KindCreate
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "Create"
	case KindUpdate:
		return "Update"
	case KindDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

type Request struct {
	Kind Kind

	// WorkflowID identifies the workflow, e.g. the state machine ARN.
	WorkflowID string

	// ScheduledStartTime delays the first run on Create. The zero value means now.
	ScheduledStartTime time.Time

	// ManualInput, when set, is used as the input of the next execution.
	ManualInput payload.Payload

	// TargetState resumes into this state instead of the failed one.
	TargetState string

	// RequestID correlates the decision with the lifecycle event and becomes part of the run name.
	RequestID string
}

// ParseError is reported when the manual input is not a JSON object. The input is ignored.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manual input: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

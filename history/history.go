package history

import (
	"strconv"
	"time"

	"github.com/cschleiden/go-resume/payload"
)

type EventType uint

const (
	_ EventType = iota

	EventType_StateEntered
	EventType_StateExited

	EventType_ExecutionSucceeded

	// Failure class. Engines map any failed, aborted, or timed out event to these, not only the
	// execution level ones.
	EventType_Failed
	EventType_Aborted
	EventType_TimedOut

	EventType_Other
)

func (et EventType) String() string {
	switch et {
	case EventType_StateEntered:
		return "StateEntered"
	case EventType_StateExited:
		return "StateExited"

	case EventType_ExecutionSucceeded:
		return "ExecutionSucceeded"

	case EventType_Failed:
		return "Failed"
	case EventType_Aborted:
		return "Aborted"
	case EventType_TimedOut:
		return "TimedOut"

	case EventType_Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// FailureClass returns true for failed, aborted, and timed out events.
func (et EventType) FailureClass() bool {
	return et == EventType_Failed || et == EventType_Aborted || et == EventType_TimedOut
}

type Event struct {
	ID int64

	Type EventType

	Timestamp time.Time

	// SourceType is the engine native type of the event, e.g. "TaskStateEntered"
	SourceType string

	// Attributes are event type specific attributes
	Attributes interface{}
}

func (e Event) String() string {
	if e.SourceType != "" {
		return e.SourceType
	}

	return e.Type.String() + "(" + strconv.FormatInt(e.ID, 10) + ")"
}

// StateEntered returns the state-entered details of the event, if it carries any.
func (e *Event) StateEntered() (*StateEnteredAttributes, bool) {
	a, ok := e.Attributes.(*StateEnteredAttributes)
	return a, ok && a != nil
}

// StateExited returns the state-exited details of the event, if it carries any.
func (e *Event) StateExited() (*StateExitedAttributes, bool) {
	a, ok := e.Attributes.(*StateExitedAttributes)
	return a, ok && a != nil
}

type StateEnteredAttributes struct {
	Name string `json:"name,omitempty"`

	Input payload.Payload `json:"input,omitempty"`
}

type StateExitedAttributes struct {
	Name string `json:"name,omitempty"`

	Output payload.Payload `json:"output,omitempty"`
}

type FailureAttributes struct {
	Error string `json:"error,omitempty"`

	Cause string `json:"cause,omitempty"`
}

type HistoryEventOption func(e *Event)

func SourceType(sourceType string) HistoryEventOption {
	return func(e *Event) {
		e.SourceType = sourceType
	}
}

func NewHistoryEvent(id int64, timestamp time.Time, eventType EventType, attributes interface{}, opts ...HistoryEventOption) *Event {
	e := &Event{
		ID:         id,
		Type:       eventType,
		Timestamp:  timestamp,
		Attributes: attributes,
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

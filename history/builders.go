package history

import (
	"time"

	"github.com/cschleiden/go-resume/payload"
)

func NewStateEnteredEvent(id int64, timestamp time.Time, name string, input payload.Payload) *Event {
	return NewHistoryEvent(id, timestamp, EventType_StateEntered, &StateEnteredAttributes{
		Name:  name,
		Input: input,
	})
}

func NewStateExitedEvent(id int64, timestamp time.Time, name string, output payload.Payload) *Event {
	return NewHistoryEvent(id, timestamp, EventType_StateExited, &StateExitedAttributes{
		Name:   name,
		Output: output,
	})
}

func NewFailureEvent(id int64, timestamp time.Time, eventType EventType, errorName, cause string) *Event {
	return NewHistoryEvent(id, timestamp, eventType, &FailureAttributes{
		Error: errorName,
		Cause: cause,
	})
}

// Reverse returns the events in reverse order. Engines usually store history oldest first, the
// analysis expects most recent first.
func Reverse(events []*Event) []*Event {
	r := make([]*Event, len(events))
	for i, e := range events {
		r[len(events)-1-i] = e
	}

	return r
}

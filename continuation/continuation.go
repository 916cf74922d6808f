// Package continuation reconstructs the point a failed workflow execution can be resumed from.
//
// The analysis reads an execution's history most recent event first, in a single pass. Causal
// structure is recovered from ordering alone: the state-entered event found right after a failure
// (going back in time) is the state that failed, and the state-exited event found right after a
// successful completion is the last state that ran.
package continuation

import (
	"encoding/json"
	"fmt"

	"github.com/cschleiden/go-resume/history"
	"github.com/cschleiden/go-resume/payload"
)

// Continuation is the resume point derived from an execution history.
type Continuation struct {
	// FailedState is the state that was entered right before the most recent failure.
	FailedState string `json:"failedState"`

	// SucceededState is the last state that exited before the execution succeeded or, for failed
	// executions, before the failed state was entered.
	SucceededState string `json:"succeededState"`

	// ResumeInput is the input to start a new execution with. It always carries a resumeTo field.
	ResumeInput payload.Payload `json:"newInput"`
}

func (c *Continuation) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return string(b)
}

// MalformedInputError is returned when the recorded input of the state to resume cannot be used. The
// continuation returned with it falls back to an input with only the resume target.
type MalformedInputError struct {
	State string
	Err   error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input for state %q: %v", e.State, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

type options struct {
	targetState string
	hasTarget   bool
}

type Option func(*options)

// WithTargetState resumes into the given state, with the input it received when it was entered most
// recently, instead of the failed state.
func WithTargetState(state string) Option {
	return func(o *options) {
		o.targetState = state
		o.hasTarget = state != ""
	}
}

type captureState int

const (
	captureIdle captureState = iota
	captureArmed
	captureFired
)

// capture records one value, at most once. It arms on one event and fires on the next matching one.
type capture struct {
	state captureState
	name  string
	input payload.Payload
}

func (c *capture) arm() {
	if c.state == captureIdle {
		c.state = captureArmed
	}
}

func (c *capture) armed() bool {
	return c.state == captureArmed
}

func (c *capture) fired() bool {
	return c.state == captureFired
}

func (c *capture) fire(name string, input payload.Payload) {
	c.state = captureFired
	c.name = name
	c.input = input
}

// Analyze derives the continuation from events, which must be ordered most recent first.
//
// The returned continuation is always usable. A non-nil error is a *MalformedInputError, reporting
// that the recorded input could not be parsed and a minimal input was used instead.
func Analyze(events []*history.Event, opts ...Option) (Continuation, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		succeeded    capture // exit after ExecutionSucceeded
		failed       capture // entry after the first failure
		exitedBefore capture // exit after the failed state's entry
		target       capture // most recent entry into the target state
	)

	for _, event := range events {
		if event == nil {
			continue
		}

		entered, isEntered := event.StateEntered()
		exited, isExited := event.StateExited()

		// Fire before arming, an event never completes a capture it armed itself.
		if isExited && exitedBefore.armed() {
			exitedBefore.fire(exited.Name, exited.Output)
		}

		if isExited && succeeded.armed() {
			succeeded.fire(exited.Name, exited.Output)
		}

		if isEntered && failed.armed() {
			failed.fire(entered.Name, entered.Input)
			exitedBefore.arm()
		}

		if isEntered && o.hasTarget && !target.fired() && entered.Name == o.targetState {
			target.fire(entered.Name, entered.Input)
		}

		if event.Type == history.EventType_ExecutionSucceeded {
			succeeded.arm()
		}

		if event.Type.FailureClass() {
			failed.arm()
		}
	}

	c := Continuation{}

	if failed.fired() {
		c.FailedState = failed.name
	}

	if succeeded.fired() {
		c.SucceededState = succeeded.name
	} else if exitedBefore.fired() {
		c.SucceededState = exitedBefore.name
	}

	resumeTo := c.FailedState
	source := failed.input
	if o.hasTarget {
		resumeTo = o.targetState
		if target.fired() && !target.input.Empty() {
			source = target.input
		}
	}

	input, err := payload.WithResumeTo(source, resumeTo)
	if err != nil {
		c.ResumeInput = payload.Default(resumeTo)
		return c, &MalformedInputError{State: resumeTo, Err: err}
	}

	c.ResumeInput = input

	return c, nil
}

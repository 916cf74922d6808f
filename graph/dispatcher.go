package graph

import (
	"github.com/cschleiden/go-resume/payload"
)

const (
	// DispatcherID is the id of the dispatcher state. Only one dispatcher exists per scope.
	DispatcherID = "ResumeTo"

	// ResumeToPath selects the resume target in the execution input.
	ResumeToPath = "$." + payload.ResumeToKey
)

// Choice routes to Next when the variable equals Equals.
type Choice struct {
	Variable string
	Equals   string
	Next     *Node
}

type Dispatcher struct {
	ID string

	Choices []Choice

	// Default is the original entry of the graph.
	Default *Node
}

// Route returns the node an execution started with input begins in.
func (d *Dispatcher) Route(input payload.Payload) *Node {
	target, ok := payload.ResumeTo(input)
	if !ok || target == "" {
		return d.Default
	}

	for _, c := range d.Choices {
		if c.Equals == target {
			return c.Next
		}
	}

	return d.Default
}

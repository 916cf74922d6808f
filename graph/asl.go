package graph

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Definition is an Amazon States Language state machine. Only the top level states take part in
// resuming, states nested in Parallel or Map branches cannot be jumped into.
type Definition struct {
	raw []byte

	StartAt string

	// Nodes by state name
	Nodes map[string]*Node
}

// ParseDefinition reads the states of an ASL document and the transitions between them.
func ParseDefinition(raw []byte) (*Definition, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidDefinition)
	}

	root := gjson.ParseBytes(raw)

	startAt := root.Get("StartAt")
	if startAt.Type != gjson.String || startAt.String() == "" {
		return nil, fmt.Errorf("%w: missing StartAt", ErrInvalidDefinition)
	}

	states := root.Get("States")
	if !states.IsObject() {
		return nil, fmt.Errorf("%w: missing States", ErrInvalidDefinition)
	}

	d := &Definition{
		raw:     raw,
		StartAt: startAt.String(),
		Nodes:   make(map[string]*Node),
	}

	states.ForEach(func(name, state gjson.Result) bool {
		d.Nodes[name.String()] = NewNode(name.String(), state.Get("Type").String())
		return true
	})

	var err error
	states.ForEach(func(name, state gjson.Result) bool {
		n := d.Nodes[name.String()]

		for _, target := range transitions(state) {
			next, ok := d.Nodes[target]
			if !ok {
				err = fmt.Errorf("%w: state %q transitions to unknown state %q", ErrInvalidDefinition, n.ID, target)
				return false
			}

			n.Branch(next)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	if _, ok := d.Nodes[d.StartAt]; !ok {
		return nil, fmt.Errorf("%w: StartAt references unknown state %q", ErrInvalidDefinition, d.StartAt)
	}

	return d, nil
}

func transitions(state gjson.Result) []string {
	var targets []string

	if next := state.Get("Next"); next.Exists() {
		targets = append(targets, next.String())
	}

	for _, c := range state.Get("Choices").Array() {
		if next := c.Get("Next"); next.Exists() {
			targets = append(targets, next.String())
		}
	}

	if def := state.Get("Default"); def.Exists() {
		targets = append(targets, def.String())
	}

	for _, c := range state.Get("Catch").Array() {
		if next := c.Get("Next"); next.Exists() {
			targets = append(targets, next.String())
		}
	}

	return targets
}

// Entry returns the node the state machine starts in.
func (d *Definition) Entry() *Node {
	return d.Nodes[d.StartAt]
}

// Augment returns the definition with the resume dispatcher added as a Choice state and set as the
// new StartAt.
func (d *Definition) Augment(a *Augmentor, scope string) ([]byte, error) {
	if _, ok := d.Nodes[DispatcherID]; ok {
		return nil, &ErrIDConflict{fmt.Sprintf("state %q conflicts with the resume dispatcher", DispatcherID)}
	}

	dispatcher, err := a.Augment(scope, d.Entry())
	if err != nil {
		return nil, err
	}

	state, err := choiceState(dispatcher)
	if err != nil {
		return nil, err
	}

	out, err := sjson.SetRawBytes(d.raw, "States."+DispatcherID, state)
	if err != nil {
		return nil, fmt.Errorf("adding dispatcher state: %w", err)
	}

	out, err = sjson.SetBytes(out, "StartAt", DispatcherID)
	if err != nil {
		return nil, fmt.Errorf("setting StartAt: %w", err)
	}

	return out, nil
}

func choiceState(d *Dispatcher) ([]byte, error) {
	state := []byte(`{"Type":"Choice","Choices":[]}`)

	for _, c := range d.Choices {
		choice, err := sjson.SetBytes([]byte(`{}`), "Variable", c.Variable)
		if err == nil {
			choice, err = sjson.SetBytes(choice, "StringEquals", c.Equals)
		}
		if err == nil {
			choice, err = sjson.SetBytes(choice, "Next", c.Next.ID)
		}
		if err == nil {
			state, err = sjson.SetRawBytes(state, "Choices.-1", choice)
		}
		if err != nil {
			return nil, fmt.Errorf("building choice for %q: %w", c.Equals, err)
		}
	}

	state, err := sjson.SetBytes(state, "Default", d.Default.ID)
	if err != nil {
		return nil, fmt.Errorf("setting default: %w", err)
	}

	return state, nil
}

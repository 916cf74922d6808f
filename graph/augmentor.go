package graph

import (
	"fmt"
)

type Augmentor struct {
	registry *Registry
}

func NewAugmentor(registry *Registry) *Augmentor {
	return &Augmentor{
		registry: registry,
	}
}

// Augment returns the dispatcher for the graph starting at entry. The dispatcher has a choice for
// every node reachable from entry and defaults to entry. It is created once per scope, later calls
// return the existing dispatcher regardless of entry.
func (a *Augmentor) Augment(scope string, entry *Node) (*Dispatcher, error) {
	v, err := a.registry.GetOrCreate(scope, DispatcherID, func() (any, error) {
		if entry == nil {
			return nil, fmt.Errorf("%w: no entry node", ErrInvalidDefinition)
		}

		reachable := FindReachable(entry)

		d := &Dispatcher{
			ID:      DispatcherID,
			Choices: make([]Choice, 0, len(reachable)),
			Default: entry,
		}

		for _, n := range reachable {
			if n.ID == DispatcherID {
				return nil, &ErrIDConflict{fmt.Sprintf("state %q conflicts with the resume dispatcher", n.ID)}
			}

			d.Choices = append(d.Choices, Choice{
				Variable: ResumeToPath,
				Equals:   n.ID,
				Next:     n,
			})
		}

		return d, nil
	})
	if err != nil {
		return nil, err
	}

	d, ok := v.(*Dispatcher)
	if !ok {
		return nil, &ErrUnexpectedType{fmt.Sprintf("%q in scope %q is a %T, not a dispatcher", DispatcherID, scope, v)}
	}

	return d, nil
}

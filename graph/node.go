// Package graph inserts a resume dispatcher in front of a workflow graph. The dispatcher routes a new
// execution straight to the state named by the input's resumeTo field, or to the original entry when
// the field is empty or unknown.
package graph

type Node struct {
	ID string

	// Type is the engine's state type, e.g. "Task" or "Choice". Informational only.
	Type string

	next []*Node
}

func NewNode(id, nodeType string) *Node {
	return &Node{
		ID:   id,
		Type: nodeType,
	}
}

// Then adds a transition to next and returns next, so sequences can be chained.
func (n *Node) Then(next *Node) *Node {
	n.next = append(n.next, next)
	return next
}

// Branch adds transitions to all targets and returns n.
func (n *Node) Branch(targets ...*Node) *Node {
	n.next = append(n.next, targets...)
	return n
}

// Next returns the nodes n transitions to, in the order they were added.
func (n *Node) Next() []*Node {
	return n.next
}

// FindReachable returns entry and every node reachable from it, breadth first. Each node is returned
// once, cycles are followed only once.
func FindReachable(entry *Node) []*Node {
	if entry == nil {
		return nil
	}

	visited := map[*Node]bool{entry: true}
	queue := []*Node{entry}
	result := make([]*Node, 0)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		result = append(result, n)

		for _, next := range n.next {
			if next == nil || visited[next] {
				continue
			}

			visited[next] = true
			queue = append(queue, next)
		}
	}

	return result
}

package types

import "fmt"

// NodeID identifies a participating process.
type NodeID string

// NodeName returns the conventional id of the i-th node (1-based), e.g. "P3".
func NodeName(i int) NodeID {
	return NodeID(fmt.Sprintf("P%d", i))
}

// NodeNames returns the ids P1..Pn in order.
func NodeNames(n int) []NodeID {
	ids := make([]NodeID, n)
	for i := range ids {
		ids[i] = NodeName(i + 1)
	}
	return ids
}

func (id NodeID) String() string {
	return string(id)
}

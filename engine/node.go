package engine

import (
	"fmt"

	"github.com/blockberries/benor/types"
	"golang.org/x/exp/slices"
)

// Node is the protocol state of one process.
// Only the Handler acting on the node mutates it.
type Node struct {
	id       types.NodeID
	input    types.Value
	decision types.Decision
	round    int

	// Values collected in the current round
	votes     []types.Value
	decisions []types.Value

	// Messages for rounds ahead of ours, keyed by round, in arrival order
	future map[int][]types.Message

	alive bool
}

// NewNode creates a node at round 1 holding input.
func NewNode(id types.NodeID, input types.Value, alive bool) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownNode)
	}
	if !input.IsBit() {
		return nil, fmt.Errorf("%w: node %s input %s", ErrInvalidInput, id, input)
	}
	return &Node{
		id:     id,
		input:  input,
		round:  1,
		future: make(map[int][]types.Message),
		alive:  alive,
	}, nil
}

func (n *Node) ID() types.NodeID { return n.id }

func (n *Node) Input() types.Value { return n.input }

func (n *Node) Decision() types.Decision { return n.decision }

func (n *Node) Round() int { return n.round }

func (n *Node) Alive() bool { return n.alive }

// Votes returns a copy of the vote values collected this round.
func (n *Node) Votes() []types.Value {
	return slices.Clone(n.votes)
}

// Decisions returns a copy of the decide values collected this round.
func (n *Node) Decisions() []types.Value {
	return slices.Clone(n.decisions)
}

// Future returns a copy of the messages buffered for round.
func (n *Node) Future(round int) []types.Message {
	return slices.Clone(n.future[round])
}

// FutureRounds returns the rounds with buffered messages, ascending.
func (n *Node) FutureRounds() []int {
	rounds := make([]int, 0, len(n.future))
	for r := range n.future {
		rounds = append(rounds, r)
	}
	slices.Sort(rounds)
	return rounds
}

// crash marks the node dead. Returns false if it already was.
func (n *Node) crash() bool {
	if !n.alive {
		return false
	}
	n.alive = false
	return true
}

// decide sets the decision once. Later calls are no-ops returning false.
func (n *Node) decide(v types.Value) bool {
	if n.decision.IsSet() {
		return false
	}
	d, err := types.NewDecision(v)
	if err != nil {
		panic(fmt.Sprintf("CONSENSUS CRITICAL: node %s deciding %s: %v", n.id, v, err))
	}
	n.decision = d
	return true
}

func (n *Node) deferMessage(msg types.Message) int {
	n.future[msg.Round] = append(n.future[msg.Round], msg)
	return len(n.future[msg.Round])
}

// takeFuture removes and returns the messages buffered for round.
func (n *Node) takeFuture(round int) []types.Message {
	msgs, ok := n.future[round]
	if !ok {
		return nil
	}
	delete(n.future, round)
	return msgs
}

// advance moves to the next round with empty collections.
func (n *Node) advance() {
	n.round++
	n.votes = nil
	n.decisions = nil
}

// NodeState is a point-in-time copy of a node.
type NodeState struct {
	ID        types.NodeID
	Input     types.Value
	Decision  types.Decision
	Round     int
	Alive     bool
	Votes     []types.Value
	Decisions []types.Value
	Future    map[int][]types.Message
}

// State returns a deep copy of the node's state.
func (n *Node) State() NodeState {
	future := make(map[int][]types.Message, len(n.future))
	for r, msgs := range n.future {
		future[r] = slices.Clone(msgs)
	}
	return NodeState{
		ID:        n.id,
		Input:     n.input,
		Decision:  n.decision,
		Round:     n.round,
		Alive:     n.alive,
		Votes:     slices.Clone(n.votes),
		Decisions: slices.Clone(n.decisions),
		Future:    future,
	}
}

// Buffered returns the number of messages held in the future buffer.
func (s NodeState) Buffered() int {
	total := 0
	for _, msgs := range s.Future {
		total += len(msgs)
	}
	return total
}

package engine

import "fmt"

// Params are the protocol parameters handed to every Handler invocation.
type Params struct {
	// N is the number of nodes, crashed ones included.
	N int
	// T is the crash-fault bound.
	T int

	// Loopback delivers a node's own broadcasts to its own mailbox, so the
	// node counts its own vote and decide towards the n-t quorums.
	Loopback bool

	// RelayDecision makes a node that decides v in round r send Vote(r+1, v)
	// and Decide(r+1, v) to its peers once, standing in for its part of the
	// following round. Without it the last undecided nodes can starve for
	// quorum after the others decide.
	RelayDecision bool
}

// NewParams validates n and t and returns Params with Loopback and
// RelayDecision enabled.
func NewParams(n, t int) (Params, error) {
	p := Params{N: n, T: t, Loopback: true, RelayDecision: true}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate enforces n >= 1, t >= 0 and n > 2t.
func (p Params) Validate() error {
	if p.N < 1 {
		return fmt.Errorf("%w: n=%d", ErrNoNodes, p.N)
	}
	if p.T < 0 || p.N <= 2*p.T {
		return fmt.Errorf("%w: n=%d t=%d", ErrInvalidFaultBound, p.N, p.T)
	}
	return nil
}

// Quorum is the number of same-phase messages (n-t) a node waits for.
func (p Params) Quorum() int {
	return p.N - p.T
}

// Certify is the number of matching decides (t+1) needed to decide.
func (p Params) Certify() int {
	return p.T + 1
}

// Majority is the count a value must strictly exceed to be a majority (n/2).
func (p Params) Majority() int {
	return p.N / 2
}

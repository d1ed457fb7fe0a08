package network

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/blockberries/benor/types"
)

// DefaultDeliveryProbability is the per-poll delivery chance of the reference model.
const DefaultDeliveryProbability = 0.7

// ErrInvalidProbability is returned for probabilities outside (0, 1].
var ErrInvalidProbability = errors.New("delivery probability must be in (0, 1]")

// Policy decides whether a poll on a non-empty mailbox delivers its head message.
type Policy interface {
	Deliver(receiver types.NodeID) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(receiver types.NodeID) bool

// Deliver implements Policy.
func (f PolicyFunc) Deliver(receiver types.NodeID) bool {
	return f(receiver)
}

// Always delivers on every poll.
var Always Policy = PolicyFunc(func(types.NodeID) bool { return true })

// Bernoulli delivers with fixed probability P, drawing from Rand.
type Bernoulli struct {
	P    float64
	Rand *rand.Rand
}

// NewBernoulli validates p and returns a Bernoulli policy.
func NewBernoulli(p float64, r *rand.Rand) (*Bernoulli, error) {
	if p <= 0 || p > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidProbability, p)
	}
	return &Bernoulli{P: p, Rand: r}, nil
}

// Deliver implements Policy.
func (b *Bernoulli) Deliver(types.NodeID) bool {
	return b.Rand.Float64() < b.P
}

// Scripted replays a fixed sequence of outcomes, one per poll of a non-empty
// mailbox. Once the script is used up it defers to Fallback, or delivers if
// Fallback is nil.
type Scripted struct {
	mu       sync.Mutex
	outcomes []bool
	next     int
	Fallback Policy
}

// NewScripted returns a policy replaying outcomes in order.
func NewScripted(outcomes []bool, fallback Policy) *Scripted {
	cp := make([]bool, len(outcomes))
	copy(cp, outcomes)
	return &Scripted{outcomes: cp, Fallback: fallback}
}

// Deliver implements Policy.
func (s *Scripted) Deliver(receiver types.NodeID) bool {
	s.mu.Lock()
	if s.next < len(s.outcomes) {
		ok := s.outcomes[s.next]
		s.next++
		s.mu.Unlock()
		return ok
	}
	s.mu.Unlock()

	if s.Fallback == nil {
		return true
	}
	return s.Fallback.Deliver(receiver)
}

// Remaining returns how many scripted outcomes have not been consumed.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes) - s.next
}

package engine

import (
	"math/rand"

	"github.com/blockberries/benor/types"
	"golang.org/x/exp/slices"
)

// Selector picks the node whose mailbox is polled next. It returns false
// once it has no more nodes to offer.
type Selector interface {
	Next() (types.NodeID, bool)
}

type randomSelector struct {
	ids []types.NodeID
	rng *rand.Rand
}

// RandomSelector picks uniformly among ids, crashed nodes included, forever.
func RandomSelector(ids []types.NodeID, rng *rand.Rand) Selector {
	return &randomSelector{ids: slices.Clone(ids), rng: rng}
}

func (s *randomSelector) Next() (types.NodeID, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[s.rng.Intn(len(s.ids))], true
}

// SequenceSelector yields a fixed list of ids once, in order.
type SequenceSelector struct {
	ids  []types.NodeID
	next int
}

func NewSequenceSelector(ids []types.NodeID) *SequenceSelector {
	return &SequenceSelector{ids: slices.Clone(ids)}
}

func (s *SequenceSelector) Next() (types.NodeID, bool) {
	if s.next >= len(s.ids) {
		return "", false
	}
	id := s.ids[s.next]
	s.next++
	return id, true
}

// Remaining returns how many ids are left.
func (s *SequenceSelector) Remaining() int {
	return len(s.ids) - s.next
}

type roundRobinSelector struct {
	ids  []types.NodeID
	next int
}

// RoundRobinSelector cycles through ids forever.
func RoundRobinSelector(ids []types.NodeID) Selector {
	return &roundRobinSelector{ids: slices.Clone(ids)}
}

func (s *roundRobinSelector) Next() (types.NodeID, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	id := s.ids[s.next%len(s.ids)]
	s.next++
	return id, true
}

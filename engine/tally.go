package engine

import "github.com/blockberries/benor/types"

// majority returns the bit held by strictly more than n/2 of votes, or
// Abstain when neither bit gets there. n is the group size, not len(votes).
func majority(votes []types.Value, n int) types.Value {
	var zeros, ones int
	for _, v := range votes {
		switch v {
		case types.ValueZero:
			zeros++
		case types.ValueOne:
			ones++
		}
	}
	switch {
	case zeros > n/2:
		return types.ValueZero
	case ones > n/2:
		return types.ValueOne
	default:
		return types.ValueAbstain
	}
}

// decideTally counts the non-Abstain values of a round's decides,
// remembering the order in which each value first appeared.
type decideTally struct {
	order  []types.Value
	counts map[types.Value]int
}

func newDecideTally(decisions []types.Value) *decideTally {
	t := &decideTally{counts: make(map[types.Value]int, 2)}
	for _, v := range decisions {
		if !v.IsBit() {
			continue
		}
		if t.counts[v] == 0 {
			t.order = append(t.order, v)
		}
		t.counts[v]++
	}
	return t
}

// certified returns the first value reaching threshold.
// With n > 2t and threshold t+1 at most one value can.
func (t *decideTally) certified(threshold int) (types.Value, bool) {
	for _, v := range t.order {
		if t.counts[v] >= threshold {
			return v, true
		}
	}
	return types.ValueAbstain, false
}

// first returns the earliest non-Abstain value seen, if any.
func (t *decideTally) first() (types.Value, bool) {
	if len(t.order) == 0 {
		return types.ValueAbstain, false
	}
	return t.order[0], true
}

func (t *decideTally) count(v types.Value) int {
	return t.counts[v]
}

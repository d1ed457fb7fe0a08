package engine

import (
	"testing"

	"github.com/blockberries/benor/types"
)

const (
	zero    = types.ValueZero
	one     = types.ValueOne
	abstain = types.ValueAbstain
)

func TestMajority(t *testing.T) {
	tests := []struct {
		name  string
		votes []types.Value
		n     int
		want  types.Value
	}{
		{"two of three zero", []types.Value{zero, zero}, 3, zero},
		{"split", []types.Value{zero, one}, 3, abstain},
		{"two of three one", []types.Value{one, zero, one}, 3, one},
		{"half is not a majority", []types.Value{one, one, zero}, 4, abstain},
		{"three of four", []types.Value{one, one, one}, 4, one},
		{"three of five", []types.Value{zero, one, zero, zero}, 5, zero},
		{"empty", nil, 3, abstain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := majority(tt.votes, tt.n); got != tt.want {
				t.Errorf("majority(%v, %d) = %s, want %s", tt.votes, tt.n, got, tt.want)
			}
		})
	}
}

func TestDecideTally(t *testing.T) {
	tally := newDecideTally([]types.Value{abstain, one, zero, one})

	if got := tally.count(one); got != 2 {
		t.Errorf("expected 2 ones, got %d", got)
	}
	if got := tally.count(abstain); got != 0 {
		t.Errorf("abstain should not be counted, got %d", got)
	}

	v, ok := tally.first()
	if !ok || v != one {
		t.Errorf("first non-abstain value should be 1, got %s", v)
	}

	if v, ok := tally.certified(2); !ok || v != one {
		t.Errorf("expected 1 certified at threshold 2, got %s %v", v, ok)
	}
	if _, ok := tally.certified(3); ok {
		t.Error("nothing should be certified at threshold 3")
	}
}

func TestDecideTallyAllAbstain(t *testing.T) {
	tally := newDecideTally([]types.Value{abstain, abstain})

	if _, ok := tally.first(); ok {
		t.Error("an all-abstain tally has no first value")
	}
	if _, ok := tally.certified(1); ok {
		t.Error("an all-abstain tally certifies nothing")
	}
}

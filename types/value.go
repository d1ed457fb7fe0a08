package types

import (
	"errors"
	"fmt"
	"math/rand"
)

// Errors
var (
	ErrInvalidValue   = errors.New("invalid value")
	ErrInvalidRound   = errors.New("invalid round")
	ErrInvalidKind    = errors.New("invalid message kind")
	ErrAbstainDecided = errors.New("abstain cannot be decided")
)

// Value is a consensus bit or the Abstain marker.
type Value uint8

const (
	ValueZero    Value = 0
	ValueOne     Value = 1
	ValueAbstain Value = 2
)

// ParseBit converts 0 or 1 to a Value.
func ParseBit(b int) (Value, error) {
	switch b {
	case 0:
		return ValueZero, nil
	case 1:
		return ValueOne, nil
	default:
		return ValueAbstain, fmt.Errorf("%w: %d is not a bit", ErrInvalidValue, b)
	}
}

// MustParseBit is ParseBit for literals known to be bits.
func MustParseBit(b int) Value {
	v, err := ParseBit(b)
	if err != nil {
		panic(err)
	}
	return v
}

// RandomBit draws a uniformly random bit from r.
func RandomBit(r *rand.Rand) Value {
	return Value(r.Intn(2))
}

// IsBit returns true for ValueZero and ValueOne.
func (v Value) IsBit() bool {
	return v == ValueZero || v == ValueOne
}

// IsValid returns true for any of the three defined values.
func (v Value) IsValid() bool {
	return v <= ValueAbstain
}

func (v Value) String() string {
	switch v {
	case ValueZero:
		return "0"
	case ValueOne:
		return "1"
	case ValueAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("Value(%d)", uint8(v))
	}
}

// Decision is the write-once outcome of a node: unset, 0 or 1.
// The zero Decision is unset.
type Decision struct {
	value Value
	set   bool
}

// Undecided is the unset Decision.
var Undecided = Decision{}

// NewDecision returns a Decision holding v. Abstain is rejected.
func NewDecision(v Value) (Decision, error) {
	if !v.IsBit() {
		return Undecided, fmt.Errorf("%w: %s", ErrAbstainDecided, v)
	}
	return Decision{value: v, set: true}, nil
}

// Value returns the decided bit and whether the decision is set.
func (d Decision) Value() (Value, bool) {
	return d.value, d.set
}

// IsSet returns true once a bit has been decided.
func (d Decision) IsSet() bool {
	return d.set
}

// Equal compares two decisions, treating all unset decisions as equal.
func (d Decision) Equal(o Decision) bool {
	if !d.set || !o.set {
		return d.set == o.set
	}
	return d.value == o.value
}

func (d Decision) String() string {
	if !d.set {
		return "undecided"
	}
	return d.value.String()
}

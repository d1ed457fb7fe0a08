package types

import "fmt"

// MessageKind distinguishes the two phases of a Ben-Or round.
type MessageKind uint8

const (
	KindVote   MessageKind = 1
	KindDecide MessageKind = 2
)

func (k MessageKind) String() string {
	switch k {
	case KindVote:
		return "vote"
	case KindDecide:
		return "decide"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Message is a protocol message. Fields are exported for inspection;
// build messages with NewVote and NewDecide.
type Message struct {
	From  NodeID
	Kind  MessageKind
	Round int
	Value Value
}

// NewVote creates a first-phase message. Votes always carry a bit.
func NewVote(from NodeID, round int, v Value) (Message, error) {
	msg := Message{From: from, Kind: KindVote, Round: round, Value: v}
	if err := msg.Validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// NewDecide creates a second-phase message. Decides may carry Abstain.
func NewDecide(from NodeID, round int, v Value) (Message, error) {
	msg := Message{From: from, Kind: KindDecide, Round: round, Value: v}
	if err := msg.Validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Validate checks the kind/round/value combination.
func (m Message) Validate() error {
	if m.Round < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRound, m.Round)
	}
	switch m.Kind {
	case KindVote:
		if !m.Value.IsBit() {
			return fmt.Errorf("%w: vote carries %s", ErrInvalidValue, m.Value)
		}
	case KindDecide:
		if !m.Value.IsValid() {
			return fmt.Errorf("%w: decide carries %s", ErrInvalidValue, m.Value)
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidKind, uint8(m.Kind))
	}
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("%s(%s r=%d v=%s)", m.Kind, m.From, m.Round, m.Value)
}

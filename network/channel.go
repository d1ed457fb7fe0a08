package network

import (
	"sync"

	"github.com/blockberries/benor/types"
	"golang.org/x/exp/slices"
)

// Status is the outcome of a Receive poll.
type Status uint8

const (
	// StatusEmpty means the mailbox had nothing queued.
	StatusEmpty Status = iota
	// StatusDelayed means a message is queued but was not delivered on this poll.
	StatusDelayed
	// StatusDelivered means the head message was popped and returned.
	StatusDelivered
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusDelayed:
		return "delayed"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Channel is a set of per-receiver FIFO mailboxes.
// It is safe for concurrent use; send and receive are serialized.
type Channel struct {
	mu        sync.Mutex
	policy    Policy
	mailboxes map[types.NodeID][]types.Message
	receivers []types.NodeID // first-send order, for deterministic snapshots

	sent      uint64
	delivered uint64
}

// NewChannel creates an empty channel using policy for delivery decisions.
// A nil policy delivers on every poll.
func NewChannel(policy Policy) *Channel {
	if policy == nil {
		policy = Always
	}
	return &Channel{
		policy:    policy,
		mailboxes: make(map[types.NodeID][]types.Message),
	}
}

// Send appends msg to the receiver's mailbox.
func (c *Channel) Send(receiver types.NodeID, msg types.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.mailboxes[receiver]; !ok {
		c.receivers = append(c.receivers, receiver)
	}
	c.mailboxes[receiver] = append(c.mailboxes[receiver], msg)
	c.sent++
}

// Receive polls the receiver's mailbox. On StatusDelivered the returned
// message has been removed from the mailbox; otherwise the mailbox is
// untouched and the message is the zero value.
func (c *Channel) Receive(receiver types.NodeID) (types.Message, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.mailboxes[receiver]
	if len(queue) == 0 {
		return types.Message{}, StatusEmpty
	}
	if !c.policy.Deliver(receiver) {
		return types.Message{}, StatusDelayed
	}

	msg := queue[0]
	// Release the slot so long runs do not pin delivered messages.
	queue[0] = types.Message{}
	c.mailboxes[receiver] = queue[1:]
	c.delivered++
	return msg, StatusDelivered
}

// Pending returns a copy of the messages queued for receiver, head first.
func (c *Channel) Pending(receiver types.NodeID) []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.mailboxes[receiver])
}

// Len returns the number of messages queued for receiver.
func (c *Channel) Len(receiver types.NodeID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mailboxes[receiver])
}

// Total returns the number of messages queued across all mailboxes.
func (c *Channel) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, q := range c.mailboxes {
		total += len(q)
	}
	return total
}

// Counters returns how many messages were ever sent and delivered.
// sent - delivered always equals Total.
func (c *Channel) Counters() (sent, delivered uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent, c.delivered
}

// Receivers returns every receiver that was ever sent a message, in first-send order.
func (c *Channel) Receivers() []types.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.receivers)
}

// Snapshot returns a copy of every non-empty mailbox.
func (c *Channel) Snapshot() map[types.NodeID][]types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := make(map[types.NodeID][]types.Message, len(c.mailboxes))
	for id, q := range c.mailboxes {
		if len(q) > 0 {
			snap[id] = slices.Clone(q)
		}
	}
	return snap
}

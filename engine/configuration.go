package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/types"
	"golang.org/x/exp/slices"
)

// Configuration is the global state of one run: the nodes, the channel
// connecting them, and the run's counters.
type Configuration struct {
	nodes   map[types.NodeID]*Node
	order   []types.NodeID
	channel *network.Channel

	observer Observer
	rng      *rand.Rand

	// Per-run counters. step is driven by the Simulator; eventCount
	// counts events applied to live nodes.
	step       uint64
	eventCount uint64
}

// NewConfiguration assembles a configuration. A nil channel delivers on
// every poll, a nil rng is seeded from the clock and a nil observer
// discards records.
func NewConfiguration(nodes []*Node, channel *network.Channel, rng *rand.Rand, observer Observer) (*Configuration, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	if channel == nil {
		channel = network.NewChannel(nil)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if observer == nil {
		observer = NopObserver{}
	}

	c := &Configuration{
		nodes:    make(map[types.NodeID]*Node, len(nodes)),
		order:    make([]types.NodeID, 0, len(nodes)),
		channel:  channel,
		observer: observer,
		rng:      rng,
	}
	for _, n := range nodes {
		if _, dup := c.nodes[n.id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.id)
		}
		c.nodes[n.id] = n
		c.order = append(c.order, n.id)
	}
	return c, nil
}

// ID labels the configuration by the number of events applied so far.
func (c *Configuration) ID() string {
	return fmt.Sprintf("C%d", c.eventCount)
}

// EventCount returns the number of events applied to live nodes.
func (c *Configuration) EventCount() uint64 {
	return c.eventCount
}

// Step returns the current scheduler step.
func (c *Configuration) Step() uint64 {
	return c.step
}

// Node looks up a node by id.
func (c *Configuration) Node(id types.NodeID) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns the nodes in creation order.
func (c *Configuration) Nodes() []*Node {
	nodes := make([]*Node, len(c.order))
	for i, id := range c.order {
		nodes[i] = c.nodes[id]
	}
	return nodes
}

// IDs returns the node ids in creation order.
func (c *Configuration) IDs() []types.NodeID {
	return slices.Clone(c.order)
}

// Size returns n.
func (c *Configuration) Size() int {
	return len(c.order)
}

// Channel returns the message channel.
func (c *Configuration) Channel() *network.Channel {
	return c.channel
}

// Send enqueues msg for a single receiver.
func (c *Configuration) Send(to types.NodeID, msg types.Message) {
	c.channel.Send(to, msg)
	c.observe(Record{Type: RecordSend, Node: msg.From, Peer: to, Message: &msg, Round: msg.Round})
}

// Broadcast sends msg from its sender to every other node, and to the
// sender itself when includeSelf is set. Returns the number of sends.
func (c *Configuration) Broadcast(msg types.Message, includeSelf bool) int {
	sent := 0
	for _, id := range c.order {
		if id == msg.From && !includeSelf {
			continue
		}
		c.Send(id, msg)
		sent++
	}
	return sent
}

// DecisionSet returns the distinct decided values, ascending.
// More than one element means agreement was violated.
func (c *Configuration) DecisionSet() []types.Value {
	var values []types.Value
	for _, id := range c.order {
		if v, ok := c.nodes[id].decision.Value(); ok && !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return values
}

// AllDecided returns true if every node, crashed or not, has decided.
func (c *Configuration) AllDecided() bool {
	for _, n := range c.nodes {
		if !n.decision.IsSet() {
			return false
		}
	}
	return true
}

// LiveDecided returns true if every live node has decided.
func (c *Configuration) LiveDecided() bool {
	for _, n := range c.nodes {
		if n.alive && !n.decision.IsSet() {
			return false
		}
	}
	return true
}

// LiveCount returns the number of nodes that have not crashed.
func (c *Configuration) LiveCount() int {
	live := 0
	for _, n := range c.nodes {
		if n.alive {
			live++
		}
	}
	return live
}

// Snapshot copies the state of every node and mailbox.
func (c *Configuration) Snapshot() Snapshot {
	nodes := make(map[types.NodeID]NodeState, len(c.nodes))
	for id, n := range c.nodes {
		nodes[id] = n.State()
	}
	return Snapshot{
		ID:        c.ID(),
		Step:      c.step,
		Order:     slices.Clone(c.order),
		Nodes:     nodes,
		Mailboxes: c.channel.Snapshot(),
	}
}

// flipCoin draws the random bit used when a round ends all-Abstain.
func (c *Configuration) flipCoin() types.Value {
	return types.RandomBit(c.rng)
}

// observe stamps rec with the run's counters and hands it to the observer.
func (c *Configuration) observe(rec Record) {
	rec.Step = c.step
	rec.Event = c.eventCount
	c.observer.Observe(rec)
}

package engine

import (
	"fmt"

	"github.com/blockberries/benor/types"
)

// Event is one delivery attempt: Target polled its mailbox and got Message,
// or nothing when Message is nil. Injected events replay future-round
// messages and never come from the channel.
type Event struct {
	Target   types.NodeID
	Message  *types.Message
	Injected bool
}

// Apply runs the event against cfg and reports whether the target advanced
// a round. Events for crashed nodes are skipped and do not count as applied
// by the configuration.
func (e Event) Apply(cfg *Configuration, handler Handler, params Params) (bool, error) {
	node, ok := cfg.Node(e.Target)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownNode, e.Target)
	}

	if !node.alive {
		cfg.observe(Record{Type: RecordSkipped, Node: e.Target, Message: e.Message, Round: node.round})
		return false, nil
	}

	if e.Injected && e.Message != nil {
		cfg.observe(Record{Type: RecordFutureInjected, Node: e.Target, Message: e.Message, Round: e.Message.Round})
	}

	advanced := handler(cfg, node, e.Message, params)
	cfg.eventCount++
	return advanced, nil
}

package engine

import (
	"fmt"

	"github.com/blockberries/benor/types"
)

// Handler runs the protocol for one event on node. msg is nil when the
// poll delivered nothing. It returns true if the node moved to a new round.
type Handler func(cfg *Configuration, node *Node, msg *types.Message, params Params) bool

var _ Handler = BenOr

// BenOr is Ben-Or's round state machine for crash faults
// ("Another Advantage of Free Choice", PODC 1983).
func BenOr(cfg *Configuration, node *Node, msg *types.Message, params Params) bool {
	// A decided node is frozen
	if d, ok := node.decision.Value(); ok {
		if msg != nil {
			cfg.observe(Record{Type: RecordIgnored, Node: node.id, Message: msg, Round: node.round, Value: d})
		}
		return false
	}
	if msg == nil {
		return false
	}

	switch {
	case msg.Round < node.round:
		cfg.observe(Record{Type: RecordStale, Node: node.id, Message: msg, Round: node.round})
		return false
	case msg.Round > node.round:
		held := node.deferMessage(*msg)
		cfg.observe(Record{Type: RecordFutureStored, Node: node.id, Message: msg, Round: msg.Round, Count: held})
		return false
	}

	switch msg.Kind {
	case types.KindVote:
		node.votes = append(node.votes, msg.Value)
		cfg.observe(Record{Type: RecordVote, Node: node.id, Message: msg, Round: node.round, Count: len(node.votes)})
	case types.KindDecide:
		node.decisions = append(node.decisions, msg.Value)
		cfg.observe(Record{Type: RecordDecide, Node: node.id, Message: msg, Round: node.round, Count: len(node.decisions)})
	default:
		return false
	}

	// At most one quorum fires per message.
	if len(node.votes) >= params.Quorum() {
		onVoteQuorum(cfg, node, params)
		return false
	}
	if len(node.decisions) >= params.Quorum() {
		return onDecideQuorum(cfg, node, params)
	}
	return false
}

// onVoteQuorum broadcasts the round's majority, or Abstain, as a Decide.
func onVoteQuorum(cfg *Configuration, node *Node, params Params) {
	value := majority(node.votes, params.N)
	cfg.observe(Record{Type: RecordVoteQuorum, Node: node.id, Round: node.round, Value: value, Count: len(node.votes)})
	node.votes = nil

	cfg.Broadcast(mustDecide(node.id, node.round, value), params.Loopback)
}

// onDecideQuorum decides a value certified by t+1 decides, or else picks the
// next round's input (a reported value, or a coin flip when every decide
// abstained) and advances. Returns true on advance.
func onDecideQuorum(cfg *Configuration, node *Node, params Params) bool {
	tally := newDecideTally(node.decisions)
	cfg.observe(Record{Type: RecordDecideQuorum, Node: node.id, Round: node.round, Count: len(node.decisions)})

	if v, ok := tally.certified(params.Certify()); ok {
		node.decide(v)
		cfg.observe(Record{Type: RecordDecision, Node: node.id, Round: node.round, Value: v, Count: tally.count(v)})
		if params.RelayDecision {
			relayDecision(cfg, node, v)
		}
		return false
	}

	if v, ok := tally.first(); ok {
		node.input = v
		cfg.observe(Record{Type: RecordAdopt, Node: node.id, Round: node.round, Value: v, Count: tally.count(v)})
	} else {
		node.input = cfg.flipCoin()
		cfg.observe(Record{Type: RecordCoin, Node: node.id, Round: node.round, Value: node.input})
	}

	node.advance()
	cfg.observe(Record{Type: RecordRoundAdvance, Node: node.id, Round: node.round})
	cfg.Broadcast(mustVote(node.id, node.round, node.input), params.Loopback)
	return true
}

// relayDecision sends the decided value as the node's vote and decide for
// the round it will not take part in.
func relayDecision(cfg *Configuration, node *Node, v types.Value) {
	next := node.round + 1
	cfg.observe(Record{Type: RecordRelay, Node: node.id, Round: next, Value: v})
	cfg.Broadcast(mustVote(node.id, next, v), false)
	cfg.Broadcast(mustDecide(node.id, next, v), false)
}

func mustVote(from types.NodeID, round int, v types.Value) types.Message {
	msg, err := types.NewVote(from, round, v)
	if err != nil {
		panic(fmt.Sprintf("CONSENSUS CRITICAL: building vote: %v", err))
	}
	return msg
}

func mustDecide(from types.NodeID, round int, v types.Value) types.Message {
	msg, err := types.NewDecide(from, round, v)
	if err != nil {
		panic(fmt.Sprintf("CONSENSUS CRITICAL: building decide: %v", err))
	}
	return msg
}

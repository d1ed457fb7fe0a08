package engine

import (
	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/types"
)

// RecordType discriminates observer records.
type RecordType string

const (
	RecordSend           RecordType = "send"
	RecordReceive        RecordType = "receive"
	RecordSkipped        RecordType = "skipped"
	RecordVote           RecordType = "vote"
	RecordDecide         RecordType = "decide"
	RecordStale          RecordType = "stale"
	RecordIgnored        RecordType = "ignored"
	RecordFutureStored   RecordType = "future_stored"
	RecordFutureInjected RecordType = "future_injected"
	RecordVoteQuorum     RecordType = "vote_quorum"
	RecordDecideQuorum   RecordType = "decide_quorum"
	RecordAdopt          RecordType = "adopt"
	RecordCoin           RecordType = "coin"
	RecordDecision       RecordType = "decision"
	RecordRoundAdvance   RecordType = "round_advance"
	RecordRelay          RecordType = "relay"
	RecordCrash          RecordType = "crash"
)

// hasValue lists the record types whose Value field is meaningful.
var hasValue = map[RecordType]bool{
	RecordIgnored:    true,
	RecordVoteQuorum: true,
	RecordAdopt:      true,
	RecordCoin:       true,
	RecordDecision:   true,
	RecordRelay:      true,
}

// Record describes one protocol transition.
type Record struct {
	// Step is the scheduler step and Event the configuration event counter
	// at the time of the record.
	Step  uint64
	Event uint64

	Type RecordType
	Node types.NodeID

	// Peer is the receiver of a send.
	Peer types.NodeID

	Message *types.Message
	Round   int
	Value   types.Value

	// Status is set on receive records.
	Status network.Status

	// Count is a collection size: votes or decides held, or buffered messages.
	Count int
}

// HasValue returns true if Value carries information for this record type.
func (r Record) HasValue() bool {
	return hasValue[r.Type]
}

// Fields flattens the record into key/value pairs, omitting unset fields.
func (r Record) Fields() map[string]any {
	f := map[string]any{
		"step":  r.Step,
		"event": r.Event,
		"type":  string(r.Type),
		"node":  string(r.Node),
	}
	if r.Peer != "" {
		f["peer"] = string(r.Peer)
	}
	if r.Message != nil {
		f["msg_from"] = string(r.Message.From)
		f["msg_kind"] = r.Message.Kind.String()
		f["msg_round"] = r.Message.Round
		f["msg_value"] = r.Message.Value.String()
	}
	if r.Round > 0 {
		f["round"] = r.Round
	}
	if r.HasValue() {
		f["value"] = r.Value.String()
	}
	if r.Type == RecordReceive {
		f["status"] = r.Status.String()
	}
	if r.Count > 0 {
		f["count"] = r.Count
	}
	return f
}

// Snapshot is the state of every node and mailbox at one point of a run.
type Snapshot struct {
	// ID is the configuration label, C<event count>
	ID    string
	Step  uint64
	Order []types.NodeID
	Nodes map[types.NodeID]NodeState

	Mailboxes map[types.NodeID][]types.Message
}

// Observer receives structured notifications from a run. Implementations
// may discard, print or persist them; the protocol never depends on them.
type Observer interface {
	// Observe is called at every meaningful transition.
	Observe(rec Record)
	// Snapshot is called every Config.SnapshotInterval steps and once at the end.
	Snapshot(snap Snapshot)
	// Final is called once when the run stops.
	Final(res *Result)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) Observe(Record) {}
func (NopObserver) Snapshot(Snapshot) {}
func (NopObserver) Final(*Result) {}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) Observe(rec Record) {
	for _, o := range m {
		o.Observe(rec)
	}
}

func (m MultiObserver) Snapshot(snap Snapshot) {
	for _, o := range m {
		o.Snapshot(snap)
	}
}

func (m MultiObserver) Final(res *Result) {
	for _, o := range m {
		o.Final(res)
	}
}

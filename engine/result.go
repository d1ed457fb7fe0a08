package engine

import "github.com/blockberries/benor/types"

// StopReason says why a run ended.
type StopReason string

const (
	StopDecided           StopReason = "decided"
	StopStepBudget        StopReason = "step_budget"
	StopScheduleExhausted StopReason = "schedule_exhausted"
	StopNoLiveNodes       StopReason = "no_live_nodes"
	StopCanceled          StopReason = "canceled"
)

// Outcome is the final state of one node.
type Outcome struct {
	Input    types.Value
	Decision types.Decision
	Round    int
	Alive    bool
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Seed   int64
	Reason StopReason

	// Steps counts scheduler steps, Events the events applied to live nodes.
	Steps  uint64
	Events uint64

	// Decisions is the set of distinct decided values, ascending.
	Decisions []types.Value
	Nodes     map[types.NodeID]Outcome

	// MaxRound is the highest round reached by any node.
	MaxRound int

	// Channel counters at the end of the run
	Sent      uint64
	Delivered uint64
	Pending   int
}

// Agreement returns true if no two nodes decided differently.
func (r *Result) Agreement() bool {
	return len(r.Decisions) <= 1
}

// Decided returns the agreed value, if any node decided and all agree.
func (r *Result) Decided() (types.Value, bool) {
	if len(r.Decisions) != 1 {
		return types.ValueAbstain, false
	}
	return r.Decisions[0], true
}

// DecidedCount returns how many nodes decided.
func (r *Result) DecidedCount() int {
	count := 0
	for _, o := range r.Nodes {
		if o.Decision.IsSet() {
			count++
		}
	}
	return count
}

func newResult(runID string, seed int64, reason StopReason, cfg *Configuration) *Result {
	res := &Result{
		RunID:     runID,
		Seed:      seed,
		Reason:    reason,
		Steps:     cfg.step,
		Events:    cfg.eventCount,
		Decisions: cfg.DecisionSet(),
		Nodes:     make(map[types.NodeID]Outcome, cfg.Size()),
		Pending:   cfg.channel.Total(),
	}
	res.Sent, res.Delivered = cfg.channel.Counters()
	for _, n := range cfg.Nodes() {
		res.Nodes[n.id] = Outcome{
			Input:    n.input,
			Decision: n.decision,
			Round:    n.round,
			Alive:    n.alive,
		}
		if n.round > res.MaxRound {
			res.MaxRound = n.round
		}
	}
	return res
}

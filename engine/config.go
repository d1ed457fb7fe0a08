package engine

import (
	"fmt"

	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/types"
	"golang.org/x/exp/slices"
)

// TerminationPolicy selects which nodes must decide before a run stops.
type TerminationPolicy uint8

const (
	// TerminateLive stops once every live node has decided.
	TerminateLive TerminationPolicy = iota
	// TerminateAll stops only once every node has decided. A node that
	// crashed undecided blocks this forever, so such runs end on the step budget.
	TerminateAll
)

// CrashPoint crashes Node just before step Step is scheduled.
type CrashPoint struct {
	Step uint64
	Node types.NodeID
}

// Config holds the setup of a simulation run
type Config struct {
	// Nodes is n. Nodes are named P1..Pn.
	Nodes int

	// FaultBound is t
	FaultBound int

	// Inputs holds the initial bit of each node in order.
	// Nil draws random inputs from the run's seed.
	Inputs []types.Value

	// Crashed nodes are down from the start and never send anything.
	Crashed []types.NodeID

	// Crashes schedules crashes during the run
	Crashes []CrashPoint

	// DeliveryProbability is the chance that polling a non-empty mailbox
	// delivers its head message.
	DeliveryProbability float64

	// Seed for the run's random source. Zero seeds from the clock.
	Seed int64

	// Schedule, when set, replaces uniform random node selection with this
	// exact sequence; the run stops when it is used up.
	Schedule []types.NodeID

	// MaxSteps is the step budget. Zero means unbounded.
	MaxSteps int

	Termination TerminationPolicy

	// SnapshotInterval emits an observer snapshot every k steps.
	// Zero emits only the final snapshot.
	SnapshotInterval int

	// Protocol switches, see Params
	Loopback      bool
	RelayDecision bool
}

// DefaultConfig returns the reference setup: three nodes tolerating one
// crash, random inputs, p = 0.7 and a budget of 150 steps.
func DefaultConfig() *Config {
	return &Config{
		Nodes:               3,
		FaultBound:          1,
		DeliveryProbability: network.DefaultDeliveryProbability,
		MaxSteps:            150,
		Termination:         TerminateLive,
		SnapshotInterval:    1,
		Loopback:            true,
		RelayDecision:       true,
	}
}

// NodeIDs returns the ids of the configured nodes in order.
func (cfg *Config) NodeIDs() []types.NodeID {
	return types.NodeNames(cfg.Nodes)
}

// Params returns the protocol parameters described by the config.
func (cfg *Config) Params() (Params, error) {
	p := Params{
		N:             cfg.Nodes,
		T:             cfg.FaultBound,
		Loopback:      cfg.Loopback,
		RelayDecision: cfg.RelayDecision,
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ValidateBasic performs basic validation of the config
func (cfg *Config) ValidateBasic() error {
	if _, err := cfg.Params(); err != nil {
		return err
	}

	if cfg.Inputs != nil {
		if len(cfg.Inputs) != cfg.Nodes {
			return fmt.Errorf("%w: %d inputs for %d nodes", ErrInvalidInput, len(cfg.Inputs), cfg.Nodes)
		}
		for i, v := range cfg.Inputs {
			if !v.IsBit() {
				return fmt.Errorf("%w: input %d is %s", ErrInvalidInput, i, v)
			}
		}
	}

	if cfg.DeliveryProbability <= 0 || cfg.DeliveryProbability > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, cfg.DeliveryProbability)
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStepBudget, cfg.MaxSteps)
	}
	if cfg.SnapshotInterval < 0 {
		return fmt.Errorf("%w: snapshot interval %d", ErrInvalidConfig, cfg.SnapshotInterval)
	}
	if cfg.Termination > TerminateAll {
		return fmt.Errorf("%w: termination policy %d", ErrInvalidConfig, cfg.Termination)
	}

	ids := cfg.NodeIDs()
	for _, id := range cfg.Crashed {
		if !slices.Contains(ids, id) {
			return fmt.Errorf("%w: crashed node %s", ErrUnknownNode, id)
		}
	}
	for _, cp := range cfg.Crashes {
		if !slices.Contains(ids, cp.Node) {
			return fmt.Errorf("%w: crash point node %s", ErrUnknownNode, cp.Node)
		}
		if cp.Step == 0 {
			return fmt.Errorf("%w: crash point for %s at step 0 (use Crashed)", ErrInvalidConfig, cp.Node)
		}
	}
	for _, id := range cfg.Schedule {
		if !slices.Contains(ids, id) {
			return fmt.Errorf("%w: scheduled node %s", ErrUnknownNode, id)
		}
	}
	return nil
}

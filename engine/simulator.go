package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Option customizes a Simulator.
type Option func(*Simulator)

// WithObserver sets the observer receiving records, snapshots and the result.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observer = o }
}

// WithLogger sets the lifecycle logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithSelector replaces the node selector derived from the config.
func WithSelector(sel Selector) Option {
	return func(s *Simulator) { s.selector = sel }
}

// WithHandler replaces the BenOr handler.
func WithHandler(h Handler) Option {
	return func(s *Simulator) { s.handler = h }
}

// WithPolicy replaces the Bernoulli delivery policy derived from the config.
func WithPolicy(p network.Policy) Option {
	return func(s *Simulator) { s.policy = p }
}

// Simulator drives one run: it repeatedly picks a node, polls its mailbox
// and applies the resulting event until a stop condition holds.
// It is not safe for concurrent use.
type Simulator struct {
	config *Config
	params Params

	cfg      *Configuration
	handler  Handler
	selector Selector
	policy   network.Policy
	observer Observer
	logger   logrus.FieldLogger

	rng   *rand.Rand
	seed  int64
	runID string

	// Crash points keyed by step
	crashes map[uint64][]types.NodeID

	started bool
	result  *Result
}

// NewSimulator validates config and builds the initial configuration.
// No message is sent until Start.
func NewSimulator(config *Config, opts ...Option) (*Simulator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	params, err := config.Params()
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		config:  config,
		params:  params,
		handler: BenOr,
		rng:     rand.New(rand.NewSource(seed)),
		seed:    seed,
		runID:   uuid.NewString(),
		crashes: make(map[uint64][]types.NodeID),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		s.logger = l
	}
	s.logger = s.logger.WithField("run_id", s.runID)
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.policy == nil {
		b, err := network.NewBernoulli(config.DeliveryProbability, s.rng)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, err)
		}
		s.policy = b
	}

	ids := config.NodeIDs()
	if s.selector == nil {
		if config.Schedule != nil {
			s.selector = NewSequenceSelector(config.Schedule)
		} else {
			s.selector = RandomSelector(ids, s.rng)
		}
	}

	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		input := types.RandomBit(s.rng)
		if config.Inputs != nil {
			input = config.Inputs[i]
		}
		alive := !slices.Contains(config.Crashed, id)
		if nodes[i], err = NewNode(id, input, alive); err != nil {
			return nil, err
		}
	}

	s.cfg, err = NewConfiguration(nodes, network.NewChannel(s.policy), s.rng, s.observer)
	if err != nil {
		return nil, err
	}

	faulty := slices.Clone(config.Crashed)
	for _, cp := range config.Crashes {
		s.crashes[cp.Step] = append(s.crashes[cp.Step], cp.Node)
		if !slices.Contains(faulty, cp.Node) {
			faulty = append(faulty, cp.Node)
		}
	}
	if len(faulty) > params.T {
		s.logger.WithFields(logrus.Fields{
			"faulty":      len(faulty),
			"fault_bound": params.T,
		}).Warn("More nodes crash than the fault bound tolerates; termination is not guaranteed")
	}

	return s, nil
}

// Start performs the primary broadcast: every live node sends its round 1
// vote to all nodes.
func (s *Simulator) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	s.logger.WithFields(logrus.Fields{
		"nodes":       s.params.N,
		"fault_bound": s.params.T,
		"seed":        s.seed,
	}).Info("Starting simulation")

	for _, n := range s.cfg.Nodes() {
		if !n.alive {
			s.cfg.observe(Record{Type: RecordCrash, Node: n.id, Round: n.round})
		}
	}
	for _, n := range s.cfg.Nodes() {
		if n.alive {
			s.cfg.Broadcast(mustVote(n.id, n.round, n.input), s.params.Loopback)
		}
	}
	if s.config.SnapshotInterval > 0 {
		s.observer.Snapshot(s.cfg.Snapshot())
	}
	return nil
}

// Step runs one scheduling step and reports whether the run is over.
// Calling Step on a finished run is a no-op.
func (s *Simulator) Step() (bool, error) {
	if s.result != nil {
		return true, nil
	}
	if !s.started {
		if err := s.Start(); err != nil {
			return false, err
		}
	}

	id, ok := s.selector.Next()
	if !ok {
		s.finish(StopScheduleExhausted)
		return true, nil
	}
	node, ok := s.cfg.Node(id)
	if !ok {
		return false, fmt.Errorf("%w: selected %s", ErrUnknownNode, id)
	}

	s.cfg.step++
	for _, crashed := range s.crashes[s.cfg.step] {
		s.crash(crashed)
	}

	msg, status := s.cfg.channel.Receive(id)
	rec := Record{Type: RecordReceive, Node: id, Round: node.round, Status: status}
	ev := Event{Target: id}
	if status == network.StatusDelivered {
		rec.Message = &msg
		ev.Message = &msg
	}
	s.cfg.observe(rec)

	advanced, err := ev.Apply(s.cfg, s.handler, s.params)
	if err != nil {
		return false, err
	}
	if advanced {
		if _, err := drainFuture(s.cfg, node, s.handler, s.params); err != nil {
			return false, err
		}
	}

	if k := s.config.SnapshotInterval; k > 0 && s.cfg.step%uint64(k) == 0 {
		s.observer.Snapshot(s.cfg.Snapshot())
	}

	if reason, done := s.checkStop(); done {
		s.finish(reason)
		return true, nil
	}
	return false, nil
}

// Run starts the simulation if needed and steps it until it stops or ctx
// is canceled. A canceled run still produces a result.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if !s.started {
		if err := s.Start(); err != nil {
			return nil, err
		}
	}
	for {
		if s.result != nil {
			return s.result, nil
		}
		if err := ctx.Err(); err != nil {
			return s.finish(StopCanceled), err
		}
		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}
}

// Crash stops a node immediately. Messages already queued for it stay in
// its mailbox; it never sends again.
func (s *Simulator) Crash(id types.NodeID) error {
	if _, ok := s.cfg.Node(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	s.crash(id)
	return nil
}

func (s *Simulator) crash(id types.NodeID) {
	node, ok := s.cfg.Node(id)
	if !ok || !node.crash() {
		return
	}
	s.cfg.observe(Record{Type: RecordCrash, Node: id, Round: node.round})
	s.logger.WithFields(logrus.Fields{
		"node":  id,
		"round": node.round,
		"step":  s.cfg.step,
	}).Info("Node crashed")
}

func (s *Simulator) checkStop() (StopReason, bool) {
	if s.cfg.LiveCount() == 0 {
		return StopNoLiveNodes, true
	}
	switch s.config.Termination {
	case TerminateAll:
		if s.cfg.AllDecided() {
			return StopDecided, true
		}
	default:
		if s.cfg.LiveDecided() {
			return StopDecided, true
		}
	}
	if s.config.MaxSteps > 0 && s.cfg.step >= uint64(s.config.MaxSteps) {
		return StopStepBudget, true
	}
	return "", false
}

func (s *Simulator) finish(reason StopReason) *Result {
	if s.result != nil {
		return s.result
	}
	s.result = newResult(s.runID, s.seed, reason, s.cfg)
	s.observer.Snapshot(s.cfg.Snapshot())
	s.observer.Final(s.result)

	entry := s.logger.WithFields(logrus.Fields{
		"reason":    reason,
		"steps":     s.result.Steps,
		"events":    s.result.Events,
		"max_round": s.result.MaxRound,
		"decisions": fmt.Sprint(s.result.Decisions),
	})
	if !s.result.Agreement() {
		entry.Error("Simulation finished without agreement")
	} else {
		entry.Info("Simulation finished")
	}
	return s.result
}

// Configuration returns the live configuration of the run.
func (s *Simulator) Configuration() *Configuration {
	return s.cfg
}

func (s *Simulator) Params() Params {
	return s.params
}

func (s *Simulator) RunID() string {
	return s.runID
}

func (s *Simulator) Seed() int64 {
	return s.seed
}

// Steps returns the number of scheduler steps taken.
func (s *Simulator) Steps() uint64 {
	return s.cfg.step
}

// Result returns the result of a finished run, or nil.
func (s *Simulator) Result() *Result {
	return s.result
}

// Metrics holds a point-in-time summary of a run
type Metrics struct {
	Step      uint64
	Events    uint64
	Live      int
	Decided   int
	MaxRound  int
	Pending   int
	Decisions []types.Value
}

// Metrics returns current run metrics
func (s *Simulator) Metrics() (*Metrics, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	m := &Metrics{
		Step:      s.cfg.step,
		Events:    s.cfg.eventCount,
		Live:      s.cfg.LiveCount(),
		Pending:   s.cfg.channel.Total(),
		Decisions: s.cfg.DecisionSet(),
	}
	for _, n := range s.cfg.Nodes() {
		if n.decision.IsSet() {
			m.Decided++
		}
		if n.round > m.MaxRound {
			m.MaxRound = n.round
		}
	}
	return m, nil
}

// Package engine implements Ben-Or's randomized binary consensus protocol
// as a discrete-event simulation.
//
// Each node runs the round state machine:
//
//	Active(r) --n-t votes--> broadcast Decide(r) --n-t decides--> Decided | Active(r+1)
//
// # Core Components
//
// Node: Per-process protocol state. Input bit, write-once decision, round
// counter, the vote and decide values collected for the current round, a
// buffer of messages addressed to future rounds, and a liveness flag.
//
// Configuration: Owns the nodes and the network.Channel for one run, plus
// the run's event counter and random source. Answers aggregate queries such
// as DecisionSet and LiveDecided.
//
// Event: One delivery attempt (target node, optional message). Applying it
// dispatches to the Handler and bumps the event counter.
//
// BenOr: The reference Handler. Collects votes until n-t arrive, broadcasts
// the strict majority (or Abstain) as a Decide, collects n-t decides, then
// either decides a value certified by t+1 decides, adopts a reported value,
// or flips a coin, and moves to the next round.
//
// Simulator: The driving loop. Selects a node, polls its mailbox, applies
// the resulting Event, replays buffered future-round messages after a round
// advance, and stops once every live node has decided, the step budget is
// spent, or the schedule runs out.
//
// # Usage Example
//
//	cfg := engine.DefaultConfig()
//	cfg.Nodes = 5
//	cfg.FaultBound = 2
//	cfg.Seed = 7
//	cfg.MaxSteps = 10000
//
//	sim, err := engine.NewSimulator(cfg, engine.WithObserver(trace.NewRecorder()))
//	if err != nil {
//	    return err
//	}
//	res, err := sim.Run(ctx)
//
// # Fault Model
//
// Nodes fail by crashing (fail-stop). Safety requires n > 2t, which is
// validated before any step runs. A crashed node never processes another
// message. A decided node never changes its decision and never sends again
// once its decision has been announced.
//
// # Thread Safety
//
// Simulator, Configuration and Node are not safe for concurrent use. The
// simulation is single-threaded by construction, and all non-determinism
// comes from the configured seed, Selector and delivery Policy, so a fixed
// seed reproduces a run exactly.
package engine

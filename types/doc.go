// Package types defines the values exchanged by the Ben-Or consensus simulator.
//
// # Core Types
//
// Value: A binary consensus value (0 or 1) or the Abstain marker carried by
// Decide messages when a vote quorum showed no strict majority.
//
// Decision: The write-once outcome of a node. It is either unset or holds
// exactly one bit; Abstain can never be decided.
//
// NodeID: The identifier of a participating process. Simulators name nodes
// P1 through Pn in creation order.
//
// Message: An immutable tagged variant {Vote, Decide} x round x value.
// Messages are only created through NewVote and NewDecide, which validate
// the combination, so every Message in flight is well formed.
//
// # Rounds
//
// Rounds are node-local and start at 1. All traffic is tagged with the round
// it belongs to and a node only acts on messages for its current round.
package types

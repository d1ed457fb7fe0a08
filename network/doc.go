// Package network models the asynchronous message substrate of the simulator.
//
// A Channel keeps one FIFO mailbox per receiver. Sending is immediate and
// never fails. Receiving is a non-blocking poll: an empty mailbox yields
// StatusEmpty, otherwise the channel's Policy decides whether the head
// message is delivered now (StatusDelivered) or stays queued for a later
// poll (StatusDelayed). Messages are never dropped, duplicated or reordered
// by the channel, so repeated polling under a policy with positive delivery
// probability eventually delivers every queued message.
//
// Policies make all non-determinism explicit. Bernoulli reproduces the
// reference model (each poll succeeds with fixed probability), Always
// delivers on every poll, and Scripted replays a recorded sequence of
// outcomes for deterministic tests.
package network

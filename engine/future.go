package engine

// drainFuture replays the messages node buffered for the round it has just
// reached, as injected events through the normal dispatch path. An injected
// message can advance the round again, so the buffer of each newly reached
// round is drained in turn. This is a loop rather than recursion: every
// batch is removed before it is applied and injected messages are never
// re-buffered, so it ends once the node reaches a round with nothing held.
// Returns the number of injected events.
func drainFuture(cfg *Configuration, node *Node, handler Handler, params Params) (int, error) {
	injected := 0
	for {
		batch := node.takeFuture(node.round)
		if len(batch) == 0 {
			return injected, nil
		}
		for i := range batch {
			ev := Event{Target: node.id, Message: &batch[i], Injected: true}
			if _, err := ev.Apply(cfg, handler, params); err != nil {
				return injected, err
			}
			injected++
		}
	}
}

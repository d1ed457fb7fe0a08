/*
Package trace keeps an ordered in-memory journal of a simulation run.

A Recorder is an engine.Observer. Every record, snapshot and the final
result are appended as an Entry carrying a unique id, a sequence number,
the scheduler step and a type discriminator. Nothing is serialized; the
journal is meant to be inspected by tests or handed to an external
renderer.

	rec := trace.NewRecorder()
	sim, _ := engine.NewSimulator(cfg, engine.WithObserver(rec))
	res, _ := sim.Run(ctx)

	r := rec.NewReader()
	for {
		e, err := r.Read()
		if err == io.EOF {
			break
		}
		...
	}
*/
package trace

package trace

import (
	"io"
	"sync"

	"github.com/blockberries/benor/engine"
	"github.com/google/uuid"
)

// Recorder journals everything a run reports. It is safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	entries []Entry
	seq     uint64
	closed  bool
	dropped int
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder returns an empty, open recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe implements engine.Observer.
func (r *Recorder) Observe(rec engine.Record) {
	r.append(rec.Step, EntryType(rec.Type), rec)
}

// Snapshot implements engine.Observer.
func (r *Recorder) Snapshot(snap engine.Snapshot) {
	r.append(snap.Step, TypeSnapshot, snap)
}

// Final implements engine.Observer.
func (r *Recorder) Final(res *engine.Result) {
	r.append(res.Steps, TypeFinal, res)
}

func (r *Recorder) append(step uint64, typ EntryType, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.dropped++
		return
	}
	r.seq++
	r.entries = append(r.entries, Entry{
		ID:      uuid.New(),
		Seq:     r.seq,
		Step:    step,
		Type:    typ,
		Payload: payload,
	})
}

// Close stops the recorder. Later notifications are counted as dropped.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRecorderClosed
	}
	r.closed = true
	return nil
}

// Dropped returns the number of notifications received after Close.
func (r *Recorder) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Len returns the number of entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns a copy of the journal.
func (r *Recorder) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByType returns the entries of the given type, in order.
func (r *Recorder) ByType(typ EntryType) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, e := range r.entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Records returns every protocol record, in order.
func (r *Recorder) Records() []engine.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []engine.Record
	for _, e := range r.entries {
		if rec, ok := e.Record(); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Snapshots returns every snapshot, in order.
func (r *Recorder) Snapshots() []engine.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []engine.Snapshot
	for _, e := range r.entries {
		if snap, ok := e.Snapshot(); ok {
			out = append(out, snap)
		}
	}
	return out
}

// Result returns the final result, or nil if the run has not finished.
func (r *Recorder) Result() *engine.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		if res, ok := r.entries[i].Result(); ok {
			return res
		}
	}
	return nil
}

// Reset empties and reopens the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.seq = 0
	r.closed = false
	r.dropped = 0
}

// NewReader returns a reader over the entries recorded so far.
func (r *Recorder) NewReader() Reader {
	return &sliceReader{entries: r.Entries()}
}

// SearchForStep returns a reader positioned at the first entry recorded at
// or after step, or false if there is none.
func (r *Recorder) SearchForStep(step uint64) (Reader, bool) {
	entries := r.Entries()
	for i, e := range entries {
		if e.Step >= step {
			return &sliceReader{entries: entries[i:]}, true
		}
	}
	return nil, false
}

type sliceReader struct {
	entries []Entry
	pos     int
	closed  bool
}

func (s *sliceReader) Read() (Entry, error) {
	if s.closed {
		return Entry{}, ErrReaderClosed
	}
	if s.pos >= len(s.entries) {
		return Entry{}, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

func (s *sliceReader) Close() error {
	if s.closed {
		return ErrReaderClosed
	}
	s.closed = true
	return nil
}

package trace

import (
	"errors"

	"github.com/blockberries/benor/engine"
	"github.com/google/uuid"
)

// Errors
var (
	ErrRecorderClosed = errors.New("recorder is closed")
	ErrReaderClosed   = errors.New("reader is closed")
)

// EntryType discriminates journal entries. Protocol records use their
// engine.RecordType; snapshots and the final result have their own types.
type EntryType string

const (
	TypeSnapshot EntryType = "snapshot"
	TypeFinal    EntryType = "final"
)

// Entry is one journal item. Payload holds an engine.Record, an
// engine.Snapshot or an *engine.Result depending on Type.
type Entry struct {
	ID      uuid.UUID
	Seq     uint64
	Step    uint64
	Type    EntryType
	Payload any
}

// Record returns the payload as a protocol record.
func (e Entry) Record() (engine.Record, bool) {
	r, ok := e.Payload.(engine.Record)
	return r, ok
}

// Snapshot returns the payload as a snapshot.
func (e Entry) Snapshot() (engine.Snapshot, bool) {
	s, ok := e.Payload.(engine.Snapshot)
	return s, ok
}

// Result returns the payload of a final entry.
func (e Entry) Result() (*engine.Result, bool) {
	r, ok := e.Payload.(*engine.Result)
	return r, ok
}

// Reader iterates over journal entries in order.
type Reader interface {
	// Read returns the next entry, or io.EOF at the end.
	Read() (Entry, error)

	Close() error
}

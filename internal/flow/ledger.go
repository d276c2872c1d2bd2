package flow

import (
	"github.com/cockroachdb/errors"
)

// SnapshotID is an opaque handle to a recorded State.
type SnapshotID int32

// NoSnapshot marks a point that was never recorded.
const NoSnapshot SnapshotID = -1

// IsValid reports whether id may refer to a recorded snapshot.
func (id SnapshotID) IsValid() bool { return id >= 0 }

// Restorer re-establishes which locals the debug-metadata generator treats as
// assigned. The code stream implements it.
type Restorer interface {
	RemoveNotDefinitelyAssigned(s State)
	AddDefinitelyAssigned(s State)
}

// Ledger records states of one method at salient points during analysis for
// later use by code generation. It is owned by a single compilation unit.
type Ledger struct {
	states []State
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{states: make([]State, 0, 16)}
}

// Record stores the unconditional view of s and returns its handle.
func (l *Ledger) Record(s State) SnapshotID {
	l.states = append(l.states, s.Unconditional())
	return SnapshotID(len(l.states) - 1) // #nosec G115 -- bounded by method size
}

// Lookup returns a recorded state. Asking for a snapshot that was never
// recorded means the pipeline ran out of order.
func (l *Ledger) Lookup(id SnapshotID) (State, error) {
	if l == nil {
		return State{}, errors.AssertionFailedf("flow: snapshot %d requested from a nil ledger", id)
	}
	if !id.IsValid() || int(id) >= len(l.states) {
		return State{}, errors.AssertionFailedf("flow: snapshot %d requested before it was recorded (%d recorded)", id, len(l.states))
	}
	return l.states[id], nil
}

// Restore replays snapshot id into dst.
func (l *Ledger) Restore(dst Restorer, id SnapshotID) error {
	s, err := l.Lookup(id)
	if err != nil {
		return err
	}
	dst.RemoveNotDefinitelyAssigned(s)
	dst.AddDefinitelyAssigned(s)
	return nil
}

// Len returns the number of recorded snapshots.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.states)
}

// Snapshots returns a copy of the recorded states in recording order.
func (l *Ledger) Snapshots() []State {
	if l == nil {
		return nil
	}
	out := make([]State, len(l.states))
	copy(out, l.states)
	return out
}

package flow

import (
	"fmt"
	"strings"

	"github.com/willf/bitset"

	"condflow/internal/symbols"
)

// Reach describes whether control can arrive at a program point.
type Reach uint8

const (
	// Reachable code executes for at least one input.
	Reachable Reach = iota
	// Unreachable code was proven dead by constant folding.
	Unreachable
	// DeadEnd follows a statement that never completes normally (return).
	DeadEnd
)

func (r Reach) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case DeadEnd:
		return "dead-end"
	default:
		return "unknown"
	}
}

// State is a snapshot of reachability and definitely assigned locals.
type State struct {
	reach    Reach
	assigned *bitset.BitSet
	cond     *condPair
}

type condPair struct {
	whenTrue  State
	whenFalse State
}

// MergeOptions tunes MergeWith.
type MergeOptions struct {
	// FakeReachable turns the join of a dead-end live branch with a suppressed
	// branch into Unreachable instead of DeadEnd.
	FakeReachable bool
}

var emptyBits = bitset.New(0)

// Initial returns the reachable entry state of a method with params assigned.
func Initial(params ...symbols.LocalID) State {
	bits := bitset.New(uint(len(params) + 1))
	for _, id := range params {
		bits.Set(uint(id))
	}
	return State{reach: Reachable, assigned: bits}
}

func (s State) bits() *bitset.BitSet {
	if s.assigned == nil {
		return emptyBits
	}
	return s.assigned
}

// Reach returns the reachability of the unconditional view.
func (s State) Reach() Reach {
	if s.cond != nil {
		return s.Unconditional().reach
	}
	return s.reach
}

// IsReachable reports whether control can arrive here.
func (s State) IsReachable() bool {
	return s.Reach() == Reachable
}

// IsConditional reports whether s carries whenTrue/whenFalse projections.
func (s State) IsConditional() bool {
	return s.cond != nil
}

// IsAssigned reports whether id is definitely assigned on every path that
// can reach s. A dead side of a conditional state does not count.
func (s State) IsAssigned(id symbols.LocalID) bool {
	if !id.IsValid() {
		return false
	}
	if s.cond != nil {
		return s.Unconditional().bits().Test(uint(id))
	}
	return s.bits().Test(uint(id))
}

// Assign returns a copy of s where id is definitely assigned.
func (s State) Assign(id symbols.LocalID) State {
	if !id.IsValid() {
		return s
	}
	if s.cond != nil {
		return Conditional(s.cond.whenTrue.Assign(id), s.cond.whenFalse.Assign(id))
	}
	if s.bits().Test(uint(id)) {
		return s
	}
	bits := s.bits().Clone()
	bits.Set(uint(id))
	return State{reach: s.reach, assigned: bits}
}

// Conditional builds a state from the projections valid after a condition
// evaluated to true and to false.
func Conditional(whenTrue, whenFalse State) State {
	return State{
		reach: Reachable,
		cond: &condPair{
			whenTrue:  whenTrue.Unconditional(),
			whenFalse: whenFalse.Unconditional(),
		},
	}
}

// Split projects s onto the true and false outcomes of the condition that
// produced it. A non-conditional state projects onto itself twice.
func (s State) Split() (whenTrue, whenFalse State) {
	if s.cond == nil {
		return s, s
	}
	return s.cond.whenTrue, s.cond.whenFalse
}

// Unconditional joins the projections of a conditional state.
func (s State) Unconditional() State {
	if s.cond == nil {
		return s
	}
	return join(s.cond.whenTrue, s.cond.whenFalse)
}

// WithUnreachable returns a copy forced to Unreachable; assignment bits are kept.
func (s State) WithUnreachable() State {
	return s.Unconditional().withReach(Unreachable)
}

// AsDeadEnd returns the state after a statement that never completes normally.
func (s State) AsDeadEnd() State {
	return s.Unconditional().withReach(DeadEnd)
}

func (s State) withReach(r Reach) State {
	return State{reach: r, assigned: s.assigned}
}

// MergeWith computes the join of s (one branch) with other (the other branch).
// A suppressed side contributes neither assignments nor reachability. When
// neither side is suppressed the result keeps the locals assigned on every
// reachable contributor.
func (s State) MergeWith(other State, selfSuppressed, otherSuppressed bool, opts MergeOptions) State {
	a, b := s.Unconditional(), other.Unconditional()
	switch {
	case selfSuppressed && otherSuppressed:
		return join(a, b)
	case otherSuppressed:
		if opts.FakeReachable && a.reach == DeadEnd {
			return b.withReach(Unreachable)
		}
		return a
	case selfSuppressed:
		if opts.FakeReachable && b.reach == DeadEnd {
			return a.withReach(Unreachable)
		}
		return b
	}
	return join(a, b)
}

func join(a, b State) State {
	ar, br := a.reach == Reachable, b.reach == Reachable
	switch {
	case ar && !br:
		return a
	case br && !ar:
		return b
	}
	reach := Reachable
	if !ar {
		reach = Unreachable
		if a.reach == DeadEnd && b.reach == DeadEnd {
			reach = DeadEnd
		}
	}
	return State{reach: reach, assigned: a.bits().Intersection(b.bits())}
}

// Equal compares the unconditional views of two states.
func (s State) Equal(other State) bool {
	a, b := s.Unconditional(), other.Unconditional()
	if a.reach != b.reach {
		return false
	}
	ab, bb := a.bits(), b.bits()
	n := ab.Count()
	return n == bb.Count() && ab.Intersection(bb).Count() == n
}

// Assigned lists the definitely assigned locals in ascending order.
func (s State) Assigned() []symbols.LocalID {
	u := s.Unconditional()
	out := make([]symbols.LocalID, 0, u.bits().Count())
	for i, ok := u.bits().NextSet(0); ok; i, ok = u.bits().NextSet(i + 1) {
		out = append(out, symbols.LocalID(i)) // #nosec G115 -- ids come from LocalID
	}
	return out
}

func (s State) String() string {
	if s.cond != nil {
		return fmt.Sprintf("cond{true: %s, false: %s}", s.cond.whenTrue, s.cond.whenFalse)
	}
	ids := s.Assigned()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s {%s}", s.reach, strings.Join(parts, " "))
}

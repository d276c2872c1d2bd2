package bytecode

import (
	"condflow/internal/flow"
	"condflow/internal/symbols"
)

// LocalRange is a pc interval [Start, End) during which a local is in scope
// and definitely assigned.
type LocalRange struct {
	Local symbols.LocalID
	Name  string
	Start int
	End   int
}

// ScopeID identifies a lexical block opened with EnterScope.
type ScopeID int

// MethodScope is the outermost scope; parameters live there.
const MethodScope ScopeID = 0

type localVar struct {
	id    symbols.LocalID
	name  string
	scope ScopeID
	open  int // index of the open range, or -1
	last  int // index of the latest range, or -1
}

type localTable struct {
	vars    map[symbols.LocalID]*localVar
	visible []*localVar
	scopes  []ScopeID
	next    ScopeID
	ranges  []LocalRange
}

func (t *localTable) init() {
	t.vars = make(map[symbols.LocalID]*localVar)
	t.scopes = []ScopeID{MethodScope}
}

func (t *localTable) current() ScopeID {
	return t.scopes[len(t.scopes)-1]
}

func (t *localTable) openRange(v *localVar, pc int) {
	if v.open >= 0 {
		return
	}
	t.ranges = append(t.ranges, LocalRange{Local: v.id, Name: v.name, Start: pc, End: -1})
	v.open = len(t.ranges) - 1
	v.last = v.open
}

func (t *localTable) closeRange(v *localVar, pc int) {
	if v.open < 0 {
		return
	}
	t.ranges[v.open].End = pc
	v.open = -1
}

func (t *localTable) recordInitialization(id symbols.LocalID, pc int) {
	if v, ok := t.vars[id]; ok && t.isVisible(v) {
		t.openRange(v, pc)
	}
}

func (t *localTable) isVisible(v *localVar) bool {
	for _, w := range t.visible {
		if w == v {
			return true
		}
	}
	return false
}

func (t *localTable) retarget(old, pc int) {
	for i := range t.ranges {
		if t.ranges[i].Start == old {
			t.ranges[i].Start = pc
		}
		if t.ranges[i].End == old {
			t.ranges[i].End = pc
		}
	}
}

func (t *localTable) closeAll(pc int) {
	for _, v := range t.visible {
		t.closeRange(v, pc)
	}
	t.visible = nil
}

func (t *localTable) finished() []LocalRange {
	out := make([]LocalRange, 0, len(t.ranges))
	for _, r := range t.ranges {
		if r.End > r.Start {
			out = append(out, r)
		}
	}
	return out
}

// EnterScope opens a lexical block for the locals declared next.
func (cs *CodeStream) EnterScope() ScopeID {
	cs.locals.next++
	cs.locals.scopes = append(cs.locals.scopes, cs.locals.next)
	return cs.locals.next
}

// ExitLocals closes the debug ranges of the locals declared in scope and
// removes them from the visible set.
func (cs *CodeStream) ExitLocals(scope ScopeID) {
	t := &cs.locals
	kept := t.visible[:0]
	for _, v := range t.visible {
		if v.scope == scope {
			t.closeRange(v, cs.Position())
			continue
		}
		kept = append(kept, v)
	}
	t.visible = kept
	if n := len(t.scopes); n > 1 && t.scopes[n-1] == scope {
		t.scopes = t.scopes[:n-1]
	}
}

// AddVisibleLocal declares id in the current scope. Its range opens at the
// first store.
func (cs *CodeStream) AddVisibleLocal(id symbols.LocalID, name string) {
	t := &cs.locals
	v := &localVar{id: id, name: name, scope: t.current(), open: -1, last: -1}
	t.vars[id] = v
	t.visible = append(t.visible, v)
}

// AddParameter declares a parameter, assigned from pc 0.
func (cs *CodeStream) AddParameter(id symbols.LocalID, name string) {
	cs.AddVisibleLocal(id, name)
	cs.locals.openRange(cs.locals.vars[id], cs.Position())
}

// RemoveNotDefinitelyAssigned closes the ranges of visible locals that s
// does not consider assigned.
func (cs *CodeStream) RemoveNotDefinitelyAssigned(s flow.State) {
	for _, v := range cs.locals.visible {
		if !s.IsAssigned(v.id) {
			cs.locals.closeRange(v, cs.Position())
		}
	}
}

// AddDefinitelyAssigned opens ranges for visible locals assigned in s.
func (cs *CodeStream) AddDefinitelyAssigned(s flow.State) {
	for _, v := range cs.locals.visible {
		if s.IsAssigned(v.id) {
			cs.locals.openRange(v, cs.Position())
		}
	}
}

// UpdateLastRecordedEndPC extends to the current position the latest range
// of every local of scope that ended at pc, so an instruction emitted after
// a block, like the jump over an else branch, is covered by it.
func (cs *CodeStream) UpdateLastRecordedEndPC(scope ScopeID, pc int) {
	t := &cs.locals
	for _, v := range t.vars {
		if v.scope != scope || v.last < 0 {
			continue
		}
		if r := &t.ranges[v.last]; r.End == pc {
			r.End = cs.Position()
		}
	}
}

// CurrentScope returns the innermost open scope.
func (cs *CodeStream) CurrentScope() ScopeID { return cs.locals.current() }

// IsLive reports whether id has an open debug range.
func (cs *CodeStream) IsLive(id symbols.LocalID) bool {
	v, ok := cs.locals.vars[id]
	return ok && v.open >= 0
}

// CloseAll ends every open range at the current position.
func (cs *CodeStream) CloseAll() {
	cs.locals.closeAll(cs.Position())
}

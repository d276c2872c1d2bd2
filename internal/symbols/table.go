package symbols

import (
	"condflow/internal/source"
	"condflow/internal/types"
)

// Local describes one local variable.
type Local struct {
	ID    LocalID
	Name  string
	Type  types.Kind
	Final bool
	Param bool
	Span  source.Span
	// Const is set for final locals with a constant initializer.
	Const types.Const
}

// Table holds the locals of one method in declaration order.
type Table struct {
	locals []Local
}

// NewTable creates an empty local table.
func NewTable() *Table {
	return &Table{locals: make([]Local, 0, 8)}
}

// Declare appends a local and returns its ID.
func (t *Table) Declare(l Local) LocalID {
	l.ID = LocalID(len(t.locals) + 1) // #nosec G115 -- local count is small
	t.locals = append(t.locals, l)
	return l.ID
}

// Get returns the local for id or nil.
func (t *Table) Get(id LocalID) *Local {
	if t == nil || !id.IsValid() || int(id) > len(t.locals) {
		return nil
	}
	return &t.locals[id-1]
}

// SetConst records the constant value of a final local.
func (t *Table) SetConst(id LocalID, c types.Const) {
	if l := t.Get(id); l != nil {
		l.Const = c
	}
}

// Len returns the number of locals.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.locals)
}

// Name returns the local name or "_".
func (t *Table) Name(id LocalID) string {
	if l := t.Get(id); l != nil {
		return l.Name
	}
	return "_"
}

// All returns locals in declaration order. The slice must not be modified.
func (t *Table) All() []Local {
	if t == nil {
		return nil
	}
	return t.locals
}

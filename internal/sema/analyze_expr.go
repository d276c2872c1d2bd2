package sema

import (
	"fmt"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/flow"
)

// expr analyses e in state. Boolean operators return a conditional state so
// that an enclosing condition can split it into its true and false outcomes:
// `!` swaps them, `&&` evaluates its right operand only when the left one is
// true, `||` only when it is false.
func (a *Analyzer) expr(e ast.Expr, state flow.State) flow.State {
	switch e := e.(type) {
	case *ast.IntLit, *ast.BoolLit:
		return state
	case *ast.Name:
		a.checkAssigned(e, state)
		return state
	case *ast.Paren:
		return a.expr(e.X, state)
	case *ast.Assign:
		state = a.expr(e.Value, state).Unconditional()
		return state.Assign(a.res.Refs[e.Target])
	case *ast.Unary:
		inner := a.expr(e.X, state)
		if e.Op != ast.OpNot || !inner.IsConditional() {
			return inner.Unconditional()
		}
		t, f := inner.Split()
		return flow.Conditional(f, t)
	case *ast.Binary:
		if e.Op.IsLogical() {
			return a.logical(e, state)
		}
		state = a.expr(e.X, state).Unconditional()
		return a.expr(e.Y, state).Unconditional()
	case *ast.Call:
		for _, arg := range e.Args {
			state = a.expr(arg, state).Unconditional()
		}
		return state
	}
	panic(fmt.Sprintf("sema: unexpected expression %T", e))
}

// logical analyses `x && y` and `x || y`. A constant left operand that
// decides the result makes the right operand unreachable.
func (a *Analyzer) logical(e *ast.Binary, state flow.State) flow.State {
	left := a.expr(e.X, state)
	lt, lf := left.Split()
	cst, isConst := a.res.ConstOf(e.X).BoolValue()
	if e.Op == ast.OpAndAnd {
		if isConst && !cst {
			lt = lt.WithUnreachable()
		}
		if isConst && cst {
			lf = lf.WithUnreachable()
		}
		rt, rf := a.expr(e.Y, lt).Split()
		return flow.Conditional(rt, lf.MergeWith(rf, false, false, flow.MergeOptions{}))
	}
	if isConst && cst {
		lf = lf.WithUnreachable()
	}
	if isConst && !cst {
		lt = lt.WithUnreachable()
	}
	rt, rf := a.expr(e.Y, lf).Split()
	return flow.Conditional(lt.MergeWith(rt, false, false, flow.MergeOptions{}), rf)
}

// checkAssigned reports a read of a local that is not definitely assigned.
// Reads in unreachable code are not checked.
func (a *Analyzer) checkAssigned(n *ast.Name, state flow.State) {
	id, ok := a.res.Refs[n]
	if !ok || !state.IsReachable() || state.IsAssigned(id) {
		return
	}
	if !a.reported.Add(n) {
		return
	}
	diag.ReportError(a.rep, diag.FlowUninitializedLocal, n.Loc,
		fmt.Sprintf("the local variable %s may not have been initialized", n.Name)).
		WithNote(a.res.Locals.Get(id).Span, "declared here").
		Emit()
}

package sema

import (
	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/flow"
)

// reportIfUnreachable returns true when s must not be analysed because
// state is not reachable. Code after a return is an error; code removed by
// constant folding is a warning. Nothing is reported when the enclosing
// construct already complained or s was reported before.
func (a *Analyzer) reportIfUnreachable(s ast.Stmt, state flow.State, complained bool) bool {
	switch state.Reach() {
	case flow.Reachable:
		return false
	case flow.DeadEnd:
		if !complained {
			a.reportUnreachableStatement(s)
		}
	case flow.Unreachable:
		if !complained && a.opts.ReportDeadCode {
			a.reportDeadCode(s)
		}
	}
	return true
}

func (a *Analyzer) reportUnreachableStatement(s ast.Stmt) {
	if !a.reported.Add(s) {
		return
	}
	diag.ReportError(a.rep, diag.FlowUnreachableStatement, s.Span(), "unreachable code").Emit()
}

func (a *Analyzer) reportDeadCode(s ast.Stmt) {
	if !a.reported.Add(s) {
		return
	}
	diag.ReportWarning(a.rep, diag.FlowDeadCode, s.Span(), "dead code").Emit()
}

// reportUnnecessaryElse flags the else arm of n whose then arm never
// completes normally. The attached fix removes the `else` keyword.
func (a *Analyzer) reportUnnecessaryElse(n *ast.If) {
	if !a.reported.Add(n.Else) {
		return
	}
	b := diag.ReportWarning(a.rep, diag.FlowUnnecessaryElse, n.Else.Span(),
		"statement unnecessarily nested within else clause; the corresponding then clause does not complete normally")
	if !n.ElseLoc.Empty() {
		b = b.WithFix("remove else", diag.FixEdit{Span: n.ElseLoc, NewText: ""})
	}
	b.Emit()
}

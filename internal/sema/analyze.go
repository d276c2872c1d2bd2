package sema

import (
	"fmt"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/flow"
	"condflow/internal/types"
)

// Analyzer runs definite-assignment and reachability analysis. One Analyzer
// may serve many methods sequentially; it is not safe for concurrent use.
type Analyzer struct {
	opts     Options
	rep      diag.Reporter
	res      *Result
	ledger   *flow.Ledger
	reported mapset.Set[ast.Node]
}

// NewAnalyzer creates an analyzer with opts.
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts, rep: opts.reporter()}
}

// Analyze threads flow state through the body of res.Method, recording
// snapshots into ledger. The returned error is an internal invariant
// violation (errors.IsAssertionFailure holds); the unit must then be
// abandoned. Ordinary findings are reported as diagnostics.
func (a *Analyzer) Analyze(res *Result, ledger *flow.Ledger) (flow.State, error) {
	if res == nil || res.Method == nil {
		return flow.State{}, errors.AssertionFailedf("sema: analysis of an unresolved method")
	}
	if ledger == nil {
		return flow.State{}, errors.AssertionFailedf("sema: method %s analysed without a ledger", res.Method.Name)
	}
	if res.Analysed {
		return flow.State{}, errors.AssertionFailedf("sema: method %s analysed twice", res.Method.Name)
	}
	a.res, a.ledger = res, ledger
	a.reported = mapset.NewThreadUnsafeSet[ast.Node]()
	defer func() { a.res, a.ledger, a.reported = nil, nil, nil }()

	m := res.Method
	state := flow.Initial(res.Params...)
	if m.Body != nil {
		a.markReachable(m.Body)
		var err error
		if state, err = a.block(m.Body, state); err != nil {
			return flow.State{}, err
		}
	}
	if m.Result != types.KindVoid && state.Reach() != flow.DeadEnd {
		diag.ReportError(a.rep, diag.FlowMissingReturn, m.NameLoc,
			fmt.Sprintf("this method must return a result of type %s", m.Result)).Emit()
	}
	res.Exit = state
	res.Analysed = true
	return state, nil
}

func (a *Analyzer) markReachable(s ast.Stmt) {
	a.res.Reachable[s] = struct{}{}
}

// block analyses statements in order. The first statement found unreachable
// is reported; the rest of the block is skipped without further reports.
// A stray `;` after the end of reachable code is tolerated.
func (a *Analyzer) block(b *ast.Block, state flow.State) (flow.State, error) {
	complained := false
	for _, s := range b.Stmts {
		if _, empty := s.(*ast.Empty); empty && !state.IsReachable() {
			continue
		}
		if a.reportIfUnreachable(s, state, complained) {
			complained = true
			continue
		}
		var err error
		if state, err = a.stmt(s, state); err != nil {
			return state, err
		}
	}
	return state, nil
}

// stmt analyses a statement reached with a reachable state.
func (a *Analyzer) stmt(s ast.Stmt, state flow.State) (flow.State, error) {
	a.markReachable(s)
	switch s := s.(type) {
	case *ast.Block:
		return a.block(s, state)
	case *ast.Empty:
		return state, nil
	case *ast.LocalDecl:
		if s.Init == nil {
			return state, nil
		}
		state = a.expr(s.Init, state).Unconditional()
		return state.Assign(a.res.Decls[s]), nil
	case *ast.ExprStmt:
		return a.expr(s.X, state).Unconditional(), nil
	case *ast.Return:
		if s.Value != nil {
			state = a.expr(s.Value, state)
		}
		return state.AsDeadEnd(), nil
	case *ast.If:
		return a.ifStmt(s, state)
	}
	return state, errors.AssertionFailedf("sema: unexpected statement %T", s)
}

// ifStmt is the branch statement state machine: condition, then, optional
// else, merge. Every step runs exactly once.
func (a *Analyzer) ifStmt(n *ast.If, state flow.State) (flow.State, error) {
	if _, dup := a.res.Branches[n]; dup {
		return state, errors.AssertionFailedf("sema: if statement at %s analysed twice", n.Loc)
	}

	state = a.expr(n.Cond, state)
	bf := BranchFlow{Const: a.res.ConstOf(n.Cond), ElseEntry: flow.NoSnapshot}
	cst, isConst := bf.ConstBool()
	optimizedTrue := isConst && cst
	optimizedFalse := isConst && !cst

	thenIn, elseIn := state.Split()
	if optimizedFalse {
		thenIn = thenIn.WithUnreachable()
	}
	if optimizedTrue {
		elseIn = elseIn.WithUnreachable()
	}

	bf.ThenEntry = a.ledger.Record(thenIn)
	thenOut, err := a.branch(n.Then, thenIn)
	if err != nil {
		return state, err
	}
	bf.ThenIsDeadEnd = !thenOut.IsReachable()

	elseOut := elseIn
	if n.Else != nil {
		if thenOut.Reach() == flow.DeadEnd && !n.IsElseIf {
			if _, chained := n.Else.(*ast.If); !chained {
				a.reportUnnecessaryElse(n)
			}
		}
		bf.ElseEntry = a.ledger.Record(elseIn)
		if elseOut, err = a.branch(n.Else, elseIn); err != nil {
			return state, err
		}
	}

	merged := thenOut.MergeWith(elseOut, optimizedFalse, optimizedTrue, flow.MergeOptions{FakeReachable: a.opts.FakeReachable})
	bf.MergeExit = a.ledger.Record(merged)
	a.res.Branches[n] = bf
	return merged, nil
}

// branch analyses one arm of an if unless it is already known unreachable.
// An empty arm removed by a constant condition is not reported.
func (a *Analyzer) branch(s ast.Stmt, in flow.State) (flow.State, error) {
	if in.Reach() == flow.Unreachable && ast.IsEmptyBlock(s) {
		return in, nil
	}
	if a.reportIfUnreachable(s, in, false) {
		return in, nil
	}
	return a.stmt(s, in)
}

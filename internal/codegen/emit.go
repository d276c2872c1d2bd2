package codegen

import (
	"github.com/cockroachdb/errors"

	"condflow/internal/ast"
	"condflow/internal/bytecode"
	"condflow/internal/flow"
	"condflow/internal/sema"
	"condflow/internal/types"
)

type generator struct {
	res    *sema.Result
	ledger *flow.Ledger
	cs     *bytecode.CodeStream
	ends   map[*ast.If]*bytecode.Label
	scopes map[*ast.Block]bytecode.ScopeID
	err    error
}

// EmitMethod generates the code of m from its analysis result. Emitting a
// method that was not analysed, or whose ledger lacks a snapshot the
// analysis referenced, is an internal error (errors.IsAssertionFailure
// holds) and no code is returned.
func EmitMethod(m *ast.Method, res *sema.Result, ledger *flow.Ledger) (*bytecode.Code, error) {
	if m == nil || res == nil || res.Method != m {
		return nil, errors.AssertionFailedf("codegen: no analysis result for method")
	}
	if !res.Analysed {
		return nil, errors.AssertionFailedf("codegen: method %s emitted before analysis", m.Name)
	}
	g := &generator{
		res:    res,
		ledger: ledger,
		cs:     bytecode.NewCodeStream(m.Name, m.Loc.File, res.Locals.Len()),
		ends:   make(map[*ast.If]*bytecode.Label),
		scopes: make(map[*ast.Block]bytecode.ScopeID),
	}
	for _, id := range res.Params {
		g.cs.AddParameter(id, res.Locals.Name(id))
	}
	if m.Body != nil {
		g.stmt(m.Body)
	}
	if m.Result == types.KindVoid && res.Exit.IsReachable() {
		g.cs.Op(bytecode.OpReturn)
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.cs.Finish()
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) restore(id flow.SnapshotID) {
	if err := g.ledger.Restore(g.cs, id); err != nil {
		g.fail(err)
	}
}

func (g *generator) stmt(s ast.Stmt) {
	if g.err != nil || !g.res.IsReachable(s) {
		return
	}
	pc := g.cs.Position()
	switch s := s.(type) {
	case *ast.Block:
		g.block(s)
		return
	case *ast.If:
		g.ifStmt(s)
		return
	case *ast.Empty:
	case *ast.LocalDecl:
		id := g.res.Decls[s]
		g.cs.AddVisibleLocal(id, s.Name)
		if s.Init != nil {
			g.expr(s.Init, true)
			g.cs.IStore(id)
		}
	case *ast.ExprStmt:
		g.expr(s.X, false)
	case *ast.Return:
		if s.Value == nil {
			g.cs.Op(bytecode.OpReturn)
			break
		}
		g.expr(s.Value, true)
		g.cs.Op(bytecode.OpIReturn)
	default:
		g.fail(errors.AssertionFailedf("codegen: unexpected statement %T", s))
		return
	}
	g.cs.RecordPositionsFrom(pc, s.Span().Start)
}

func (g *generator) block(b *ast.Block) {
	scope := g.cs.EnterScope()
	g.scopes[b] = scope
	for _, s := range b.Stmts {
		g.stmt(s)
	}
	g.cs.ExitLocals(scope)
}

// scopeOf returns the scope whose locals end where s ends.
func (g *generator) scopeOf(s ast.Stmt) bytecode.ScopeID {
	if b, ok := s.(*ast.Block); ok {
		if scope, ok := g.scopes[b]; ok {
			return scope
		}
	}
	return g.cs.CurrentScope()
}

// branchChainTo redirects to l the jumps that leave s through an end label
// placed at the current position, so they do not land on a GOTO to l.
func (g *generator) branchChainTo(s ast.Stmt, l *bytecode.Label) {
	switch s := s.(type) {
	case *ast.Block:
		if n := len(s.Stmts); n > 0 {
			g.branchChainTo(s.Stmts[n-1], l)
		}
	case *ast.If:
		if end, ok := g.ends[s]; ok && end.Position() == g.cs.Position() {
			l.BecomeDelegateFor(end)
		}
	}
}

package codegen

import (
	"github.com/cockroachdb/errors"

	"condflow/internal/ast"
	"condflow/internal/bytecode"
)

// ifStmt emits a conditional statement from its analysis summary. An arm
// that is empty or that a constant condition rules out gets neither code
// nor a label.
func (g *generator) ifStmt(n *ast.If) {
	bf, ok := g.res.Branch(n)
	if !ok {
		g.fail(errors.AssertionFailedf("codegen: if statement at %s was not analysed", n.Loc))
		return
	}
	pc := g.cs.Position()
	cst, isConst := bf.ConstBool()
	hasThen := !(isConst && !cst) && n.Then != nil && !ast.IsEmptyBlock(n.Then)
	hasElse := !(isConst && cst) && n.Else != nil && !ast.IsEmptyBlock(n.Else)

	var end *bytecode.Label
	switch {
	case hasThen && hasElse:
		falseLabel, endLabel := g.cs.NewLabel(), g.cs.NewLabel()
		end = endLabel
		g.optimizedBoolean(n.Cond, nil, falseLabel)
		g.restore(bf.ThenEntry)
		g.stmt(n.Then)
		if !bf.ThenIsDeadEnd {
			g.branchChainTo(n.Then, endLabel)
			at := g.cs.Position()
			g.cs.Goto(endLabel)
			g.cs.UpdateLastRecordedEndPC(g.scopeOf(n.Then), at)
		}
		g.cs.Place(falseLabel)
		g.restore(bf.ElseEntry)
		g.stmt(n.Else)
	case hasThen:
		end = g.cs.NewLabel()
		g.optimizedBoolean(n.Cond, nil, end)
		g.restore(bf.ThenEntry)
		g.stmt(n.Then)
	case hasElse:
		end = g.cs.NewLabel()
		g.optimizedBoolean(n.Cond, end, nil)
		g.restore(bf.ElseEntry)
		g.stmt(n.Else)
	default:
		g.expr(n.Cond, false)
	}
	if end != nil {
		g.cs.Place(end)
		g.ends[n] = end
	}
	g.restore(bf.MergeExit)
	g.cs.RecordPositionsFrom(pc, n.Loc.Start)
}

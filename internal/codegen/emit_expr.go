package codegen

import (
	"github.com/cockroachdb/errors"

	"condflow/internal/ast"
	"condflow/internal/bytecode"
	"condflow/internal/types"
)

var arithOps = map[ast.BinaryOp]bytecode.Opcode{
	ast.OpAdd: bytecode.OpIAdd,
	ast.OpSub: bytecode.OpISub,
	ast.OpMul: bytecode.OpIMul,
	ast.OpDiv: bytecode.OpIDiv,
	ast.OpRem: bytecode.OpIRem,
}

var compareOps = map[ast.BinaryOp]bytecode.Opcode{
	ast.OpLt: bytecode.OpIfICmpLt,
	ast.OpLe: bytecode.OpIfICmpLe,
	ast.OpGt: bytecode.OpIfICmpGt,
	ast.OpGe: bytecode.OpIfICmpGe,
	ast.OpEq: bytecode.OpIfICmpEq,
	ast.OpNe: bytecode.OpIfICmpNe,
}

func (g *generator) constant(c types.Const) {
	switch c.Kind {
	case types.KindInt:
		g.cs.IConst(c.Int)
	case types.KindBool:
		if c.Bool {
			g.cs.IConst(1)
		} else {
			g.cs.IConst(0)
		}
	}
}

// expr emits e. When valueRequired is false only the side effects of e are
// kept. Folded constants never have side effects.
func (g *generator) expr(e ast.Expr, valueRequired bool) {
	if g.err != nil {
		return
	}
	if c := g.res.ConstOf(e); c.IsConstant() {
		if valueRequired {
			g.constant(c)
		}
		return
	}
	switch e := e.(type) {
	case *ast.Name:
		if valueRequired {
			g.cs.ILoad(g.res.Refs[e])
		}
	case *ast.Paren:
		g.expr(e.X, valueRequired)
	case *ast.Assign:
		g.expr(e.Value, true)
		if valueRequired {
			g.cs.Op(bytecode.OpDup)
		}
		g.cs.IStore(g.res.Refs[e.Target])
	case *ast.Unary:
		if e.Op == ast.OpNeg {
			g.expr(e.X, valueRequired)
			if valueRequired {
				g.cs.Op(bytecode.OpINeg)
			}
			return
		}
		g.boolean(e, valueRequired)
	case *ast.Binary:
		if e.Op.IsArithmetic() {
			g.arith(e, valueRequired)
			return
		}
		g.boolean(e, valueRequired)
	case *ast.Call:
		g.call(e, valueRequired)
	case *ast.IntLit:
		if valueRequired {
			g.cs.IConst(e.Value)
		}
	case *ast.BoolLit:
		if valueRequired {
			g.constant(types.BoolConst(e.Value))
		}
	default:
		g.fail(errors.AssertionFailedf("codegen: unexpected expression %T", e))
	}
}

func (g *generator) arith(e *ast.Binary, valueRequired bool) {
	// Division may trap, so it is kept even when the value is unused.
	if !valueRequired && e.Op != ast.OpDiv && e.Op != ast.OpRem {
		g.expr(e.X, false)
		g.expr(e.Y, false)
		return
	}
	g.expr(e.X, true)
	g.expr(e.Y, true)
	g.cs.Op(arithOps[e.Op])
	if !valueRequired {
		g.cs.Op(bytecode.OpPop)
	}
}

func (g *generator) call(e *ast.Call, valueRequired bool) {
	callee, ok := g.res.Calls[e]
	if !ok {
		g.fail(errors.AssertionFailedf("codegen: call to %s at %s is unresolved", e.Name, e.Loc))
		return
	}
	for _, arg := range e.Args {
		g.expr(arg, true)
	}
	ref := bytecode.MethodRef{Name: callee.Name, Args: len(callee.Params), Returns: callee.Result != types.KindVoid}
	g.cs.Invoke(ref)
	if ref.Returns && !valueRequired {
		g.cs.Op(bytecode.OpPop)
	}
}

// boolean emits a non-constant boolean operator. A required value is
// materialised as 1 or 0 through a pair of jumps.
func (g *generator) boolean(e ast.Expr, valueRequired bool) {
	if !valueRequired {
		g.optimizedBoolean(e, nil, nil)
		return
	}
	falseLabel, endLabel := g.cs.NewLabel(), g.cs.NewLabel()
	g.optimizedBoolean(e, nil, falseLabel)
	g.cs.IConst(1)
	g.cs.Goto(endLabel)
	g.cs.Place(falseLabel)
	g.cs.AdjustStack(-1)
	g.cs.IConst(0)
	g.cs.Place(endLabel)
}

// optimizedBoolean emits e as control flow: it jumps to whenTrue when e
// holds and to whenFalse when it does not. At most one label is given; the
// other outcome falls through. With no label only side effects are kept.
func (g *generator) optimizedBoolean(e ast.Expr, whenTrue, whenFalse *bytecode.Label) {
	if g.err != nil {
		return
	}
	if v, ok := g.res.ConstOf(e).BoolValue(); ok {
		switch {
		case v && whenTrue != nil:
			g.cs.Goto(whenTrue)
		case !v && whenFalse != nil:
			g.cs.Goto(whenFalse)
		}
		return
	}
	switch e := e.(type) {
	case *ast.Paren:
		g.optimizedBoolean(e.X, whenTrue, whenFalse)
		return
	case *ast.Unary:
		if e.Op == ast.OpNot {
			g.optimizedBoolean(e.X, whenFalse, whenTrue)
			return
		}
	case *ast.Binary:
		switch {
		case e.Op == ast.OpAndAnd:
			g.andAnd(e, whenTrue, whenFalse)
			return
		case e.Op == ast.OpOrOr:
			g.orOr(e, whenTrue, whenFalse)
			return
		case e.Op.IsComparison():
			g.compare(e, whenTrue, whenFalse)
			return
		}
	}
	if whenTrue == nil && whenFalse == nil {
		g.expr(e, false)
		return
	}
	g.expr(e, true)
	if whenTrue != nil {
		g.cs.Jump(bytecode.OpIfNe, whenTrue)
		return
	}
	g.cs.Jump(bytecode.OpIfEq, whenFalse)
}

func (g *generator) compare(e *ast.Binary, whenTrue, whenFalse *bytecode.Label) {
	if whenTrue == nil && whenFalse == nil {
		g.expr(e.X, false)
		g.expr(e.Y, false)
		return
	}
	g.expr(e.X, true)
	g.expr(e.Y, true)
	op := compareOps[e.Op]
	if whenTrue != nil {
		g.cs.Jump(op, whenTrue)
		return
	}
	g.cs.Jump(op.Negate(), whenFalse)
}

// andAnd evaluates the right operand only when the left one holds. A
// constant true left operand contributes no code.
func (g *generator) andAnd(e *ast.Binary, whenTrue, whenFalse *bytecode.Label) {
	if v, ok := g.res.ConstOf(e.X).BoolValue(); ok && v {
		g.optimizedBoolean(e.Y, whenTrue, whenFalse)
		return
	}
	if whenTrue == nil && whenFalse != nil {
		g.optimizedBoolean(e.X, nil, whenFalse)
		g.optimizedBoolean(e.Y, nil, whenFalse)
		return
	}
	skip := g.cs.NewLabel()
	g.optimizedBoolean(e.X, nil, skip)
	g.optimizedBoolean(e.Y, whenTrue, nil)
	g.cs.Place(skip)
}

// orOr evaluates the right operand only when the left one fails. A
// constant false left operand contributes no code.
func (g *generator) orOr(e *ast.Binary, whenTrue, whenFalse *bytecode.Label) {
	if v, ok := g.res.ConstOf(e.X).BoolValue(); ok && !v {
		g.optimizedBoolean(e.Y, whenTrue, whenFalse)
		return
	}
	if whenFalse == nil && whenTrue != nil {
		g.optimizedBoolean(e.X, whenTrue, nil)
		g.optimizedBoolean(e.Y, whenTrue, nil)
		return
	}
	skip := g.cs.NewLabel()
	g.optimizedBoolean(e.X, skip, nil)
	g.optimizedBoolean(e.Y, nil, whenFalse)
	g.cs.Place(skip)
}

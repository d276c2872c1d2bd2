package sema

import (
	"condflow/internal/ast"
	"condflow/internal/types"
)

// constExpr folds e using the constants already recorded for its operands.
// Division by a constant zero is left unfolded so it fails at run time.
func (r *resolver) constExpr(e ast.Expr) types.Const {
	switch e := e.(type) {
	case *ast.IntLit:
		return types.IntConst(e.Value)
	case *ast.BoolLit:
		return types.BoolConst(e.Value)
	case *ast.Name:
		if id, ok := r.res.Refs[e]; ok {
			return r.res.Locals.Get(id).Const
		}
	case *ast.Paren:
		return r.res.ConstOf(e.X)
	case *ast.Unary:
		return foldUnary(e.Op, r.res.ConstOf(e.X))
	case *ast.Binary:
		return foldBinary(e.Op, r.res.ConstOf(e.X), r.res.ConstOf(e.Y))
	}
	return types.NotAConstant
}

func foldUnary(op ast.UnaryOp, x types.Const) types.Const {
	switch {
	case op == ast.OpNot && x.Kind == types.KindBool:
		return types.BoolConst(!x.Bool)
	case op == ast.OpNeg && x.Kind == types.KindInt:
		return types.IntConst(-x.Int)
	}
	return types.NotAConstant
}

// foldBinary folds op over x and y. `false && e` and `true || e` fold even
// when e is not constant.
func foldBinary(op ast.BinaryOp, x, y types.Const) types.Const {
	switch op {
	case ast.OpAndAnd:
		if v, ok := x.BoolValue(); ok {
			if !v {
				return types.BoolConst(false)
			}
			if _, ok := y.BoolValue(); ok {
				return y
			}
		}
		return types.NotAConstant
	case ast.OpOrOr:
		if v, ok := x.BoolValue(); ok {
			if v {
				return types.BoolConst(true)
			}
			if _, ok := y.BoolValue(); ok {
				return y
			}
		}
		return types.NotAConstant
	}
	if !x.IsConstant() || x.Kind != y.Kind {
		return types.NotAConstant
	}
	if x.Kind == types.KindBool {
		switch op {
		case ast.OpEq:
			return types.BoolConst(x.Bool == y.Bool)
		case ast.OpNe:
			return types.BoolConst(x.Bool != y.Bool)
		}
		return types.NotAConstant
	}
	a, b := x.Int, y.Int
	switch op {
	case ast.OpAdd:
		return types.IntConst(a + b)
	case ast.OpSub:
		return types.IntConst(a - b)
	case ast.OpMul:
		return types.IntConst(a * b)
	case ast.OpDiv:
		if b == 0 {
			return types.NotAConstant
		}
		return types.IntConst(a / b)
	case ast.OpRem:
		if b == 0 {
			return types.NotAConstant
		}
		return types.IntConst(a % b)
	case ast.OpLt:
		return types.BoolConst(a < b)
	case ast.OpLe:
		return types.BoolConst(a <= b)
	case ast.OpGt:
		return types.BoolConst(a > b)
	case ast.OpGe:
		return types.BoolConst(a >= b)
	case ast.OpEq:
		return types.BoolConst(a == b)
	case ast.OpNe:
		return types.BoolConst(a != b)
	}
	return types.NotAConstant
}

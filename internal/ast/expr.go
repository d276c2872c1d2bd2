package ast

import (
	"condflow/internal/source"
)

type UnaryOp uint8

const (
	OpNot UnaryOp = iota + 1
	OpNeg
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	}
	return "?"
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpRem
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAndAnd
	OpOrOr
)

var binaryOpText = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpRem:    "%",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpEq:     "==",
	OpNe:     "!=",
	OpAndAnd: "&&",
	OpOrOr:   "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) && binaryOpText[op] != "" {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports whether op compares two operands.
func (op BinaryOp) IsComparison() bool {
	return op >= OpLt && op <= OpNe
}

// IsArithmetic reports whether op is an int arithmetic operator.
func (op BinaryOp) IsArithmetic() bool {
	return op >= OpAdd && op <= OpRem
}

// IsLogical reports whether op is a short-circuit operator.
func (op BinaryOp) IsLogical() bool {
	return op == OpAndAnd || op == OpOrOr
}

type (
	// IntLit is an int literal.
	IntLit struct {
		Loc   source.Span
		Value int32
	}

	// BoolLit is `true` or `false`.
	BoolLit struct {
		Loc   source.Span
		Value bool
	}

	// Name reads a local variable.
	Name struct {
		Loc  source.Span
		Name string
	}

	// Assign stores Value into the local named by Target.
	Assign struct {
		Loc    source.Span
		Target *Name
		Value  Expr
	}

	Unary struct {
		Loc source.Span
		Op  UnaryOp
		X   Expr
	}

	Binary struct {
		Loc source.Span
		Op  BinaryOp
		X   Expr
		Y   Expr
	}

	// Call invokes another method of the same file.
	Call struct {
		Loc     source.Span
		Name    string
		NameLoc source.Span
		Args    []Expr
	}

	Paren struct {
		Loc source.Span
		X   Expr
	}
)

func (e *IntLit) Span() source.Span  { return e.Loc }
func (e *BoolLit) Span() source.Span { return e.Loc }
func (e *Name) Span() source.Span    { return e.Loc }
func (e *Assign) Span() source.Span  { return e.Loc }
func (e *Unary) Span() source.Span   { return e.Loc }
func (e *Binary) Span() source.Span  { return e.Loc }
func (e *Call) Span() source.Span    { return e.Loc }
func (e *Paren) Span() source.Span   { return e.Loc }

func (*IntLit) exprNode()  {}
func (*BoolLit) exprNode() {}
func (*Name) exprNode()    {}
func (*Assign) exprNode()  {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}
func (*Call) exprNode()    {}
func (*Paren) exprNode()   {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}

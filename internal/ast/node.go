package ast

import (
	"condflow/internal/source"
	"condflow/internal/types"
)

// Node is implemented by every tree node.
type Node interface {
	Span() source.Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// File is one parsed source file.
type File struct {
	ID      source.FileID
	Methods []*Method
}

// Param is a method parameter.
type Param struct {
	Loc     source.Span
	Type    types.Kind
	Name    string
	NameLoc source.Span
}

// Method is a method declaration; it is one compilation unit.
type Method struct {
	Loc     source.Span
	Static  bool
	Result  types.Kind
	Name    string
	NameLoc source.Span
	Params  []Param
	Body    *Block
}

func (m *Method) Span() source.Span { return m.Loc }

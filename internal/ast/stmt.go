package ast

import (
	"condflow/internal/source"
	"condflow/internal/types"
)

type (
	Block struct {
		Loc   source.Span
		Stmts []Stmt
	}

	// Empty is the `;` statement.
	Empty struct {
		Loc source.Span
	}

	// LocalDecl declares a local: `[final] int x [= e];`.
	LocalDecl struct {
		Loc     source.Span
		Final   bool
		Type    types.Kind
		Name    string
		NameLoc source.Span
		Init    Expr
	}

	ExprStmt struct {
		Loc source.Span
		X   Expr
	}

	Return struct {
		Loc   source.Span
		Value Expr
	}

	// If is the conditional statement. Then is always present.
	// IsElseIf is set by the parser when the node is the else-arm of an
	// enclosing If, i.e. part of an `else if` chain.
	If struct {
		Loc      source.Span
		Cond     Expr
		Then     Stmt
		Else     Stmt
		ElseLoc  source.Span // the `else` keyword
		IsElseIf bool
	}
)

func (s *Block) Span() source.Span     { return s.Loc }
func (s *Empty) Span() source.Span     { return s.Loc }
func (s *LocalDecl) Span() source.Span { return s.Loc }
func (s *ExprStmt) Span() source.Span  { return s.Loc }
func (s *Return) Span() source.Span    { return s.Loc }
func (s *If) Span() source.Span        { return s.Loc }

func (*Block) stmtNode()     {}
func (*Empty) stmtNode()     {}
func (*LocalDecl) stmtNode() {}
func (*ExprStmt) stmtNode()  {}
func (*Return) stmtNode()    {}
func (*If) stmtNode()        {}

// IsEmptyBlock reports whether s does nothing and declares nothing:
// `;` or `{}`.
func IsEmptyBlock(s Stmt) bool {
	switch s := s.(type) {
	case *Empty:
		return true
	case *Block:
		return len(s.Stmts) == 0
	}
	return false
}

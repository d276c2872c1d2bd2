package sema

import (
	"condflow/internal/ast"
	"condflow/internal/flow"
	"condflow/internal/symbols"
	"condflow/internal/types"
)

// BranchFlow summarises the analysis of one if statement. It is stored once,
// when analysis of the statement finishes.
type BranchFlow struct {
	// Const is the folded value of the condition, or types.NotAConstant.
	Const types.Const
	// ThenIsDeadEnd is set when control never falls out of the then branch.
	ThenIsDeadEnd bool
	ThenEntry     flow.SnapshotID
	// ElseEntry is flow.NoSnapshot when there is no else branch.
	ElseEntry flow.SnapshotID
	MergeExit flow.SnapshotID
}

// ConstBool returns the folded condition value, if any.
func (b BranchFlow) ConstBool() (value, ok bool) {
	return b.Const.BoolValue()
}

// Result holds what resolution and analysis learned about one method.
type Result struct {
	Method *ast.Method
	Locals *symbols.Table
	Params []symbols.LocalID

	Types  map[ast.Expr]types.Kind
	Consts map[ast.Expr]types.Const
	Refs   map[*ast.Name]symbols.LocalID
	Decls  map[*ast.LocalDecl]symbols.LocalID
	Calls  map[*ast.Call]*ast.Method

	// Reachable holds the statements analysed with a reachable state. Code is
	// generated only for these.
	Reachable map[ast.Stmt]struct{}
	Branches  map[*ast.If]BranchFlow
	// Exit is the state at the end of the method body.
	Exit     flow.State
	Analysed bool
}

func newResult(m *ast.Method) *Result {
	return &Result{
		Method:    m,
		Locals:    symbols.NewTable(),
		Types:     make(map[ast.Expr]types.Kind),
		Consts:    make(map[ast.Expr]types.Const),
		Refs:      make(map[*ast.Name]symbols.LocalID),
		Decls:     make(map[*ast.LocalDecl]symbols.LocalID),
		Calls:     make(map[*ast.Call]*ast.Method),
		Reachable: make(map[ast.Stmt]struct{}),
		Branches:  make(map[*ast.If]BranchFlow),
	}
}

// TypeOf returns the resolved type of e.
func (r *Result) TypeOf(e ast.Expr) types.Kind {
	return r.Types[e]
}

// ConstOf returns the folded value of e or types.NotAConstant.
func (r *Result) ConstOf(e ast.Expr) types.Const {
	return r.Consts[e]
}

// IsReachable reports whether s was analysed with a reachable state.
func (r *Result) IsReachable(s ast.Stmt) bool {
	_, ok := r.Reachable[s]
	return ok
}

// Branch returns the analysis summary of n.
func (r *Result) Branch(n *ast.If) (BranchFlow, bool) {
	b, ok := r.Branches[n]
	return b, ok
}

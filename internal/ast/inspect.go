package ast

import "fmt"

// Inspect traverses the tree rooted at n in depth-first order. It calls f(n)
// and, when f returns true, visits the children of n. Unlike go/ast.Inspect
// no trailing f(nil) call is made.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Method:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *Empty, *IntLit, *BoolLit, *Name:
	case *LocalDecl:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *ExprStmt:
		Inspect(n.X, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *If:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *Assign:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *Unary:
		Inspect(n.X, f)
	case *Binary:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *Call:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *Paren:
		Inspect(n.X, f)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}

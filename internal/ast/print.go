package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes n in source form. Nested statements are indented by two
// spaces per level; the branches of an If are indented by two levels under
// the `if (...)` line, with `else` on a line of its own.
func Print(w io.Writer, n Node, indent int) error {
	var b strings.Builder
	printNode(&b, n, indent)
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders n in source form.
func String(n Node) string {
	var b strings.Builder
	printNode(&b, n, 0)
	return b.String()
}

func printIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteString("  ")
	}
}

func printNode(b *strings.Builder, n Node, indent int) {
	switch n := n.(type) {
	case Expr:
		printExpr(b, n)
	case Stmt:
		printStmt(b, n, indent)
	case *Method:
		printIndent(b, indent)
		if n.Static {
			b.WriteString("static ")
		}
		fmt.Fprintf(b, "%s %s(", n.Result, n.Name)
		for i, p := range n.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s %s", p.Type, p.Name)
		}
		b.WriteString(") ")
		if n.Body != nil {
			printBlock(b, n.Body, indent)
		}
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

func printStmt(b *strings.Builder, s Stmt, indent int) {
	switch s := s.(type) {
	case *Block:
		printIndent(b, indent)
		printBlock(b, s, indent)
	case *Empty:
		printIndent(b, indent)
		b.WriteByte(';')
	case *LocalDecl:
		printIndent(b, indent)
		if s.Final {
			b.WriteString("final ")
		}
		fmt.Fprintf(b, "%s %s", s.Type, s.Name)
		if s.Init != nil {
			b.WriteString(" = ")
			printExpr(b, s.Init)
		}
		b.WriteByte(';')
	case *ExprStmt:
		printIndent(b, indent)
		printExpr(b, s.X)
		b.WriteByte(';')
	case *Return:
		printIndent(b, indent)
		b.WriteString("return")
		if s.Value != nil {
			b.WriteByte(' ')
			printExpr(b, s.Value)
		}
		b.WriteByte(';')
	case *If:
		printIndent(b, indent)
		b.WriteString("if (")
		printExpr(b, s.Cond)
		b.WriteString(")\n")
		printStmt(b, s.Then, indent+2)
		if s.Else != nil {
			b.WriteByte('\n')
			printIndent(b, indent)
			b.WriteString("else\n")
			printStmt(b, s.Else, indent+2)
		}
	default:
		fmt.Fprintf(b, "<%T>", s)
	}
}

func printBlock(b *strings.Builder, blk *Block, indent int) {
	b.WriteString("{\n")
	for _, s := range blk.Stmts {
		printStmt(b, s, indent+1)
		b.WriteByte('\n')
	}
	printIndent(b, indent)
	b.WriteByte('}')
}

func printExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *IntLit:
		fmt.Fprintf(b, "%d", e.Value)
	case *BoolLit:
		fmt.Fprintf(b, "%t", e.Value)
	case *Name:
		b.WriteString(e.Name)
	case *Assign:
		b.WriteString(e.Target.Name)
		b.WriteString(" = ")
		printExpr(b, e.Value)
	case *Unary:
		b.WriteString(e.Op.String())
		printExpr(b, e.X)
	case *Binary:
		printExpr(b, e.X)
		fmt.Fprintf(b, " %s ", e.Op)
		printExpr(b, e.Y)
	case *Call:
		b.WriteString(e.Name)
		b.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printExpr(b, a)
		}
		b.WriteByte(')')
	case *Paren:
		b.WriteByte('(')
		printExpr(b, e.X)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

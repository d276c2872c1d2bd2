package syntax

import (
	"strconv"

	"condflow/internal/ast"
	"condflow/internal/diag"
)

// Binary operator precedence; higher binds tighter.
const (
	precLogicalOr      = 1
	precLogicalAnd     = 2
	precEquality       = 3
	precComparison     = 4
	precAdditive       = 5
	precMultiplicative = 6
)

func binaryOp(k Kind) (ast.BinaryOp, int) {
	switch k {
	case OrOr:
		return ast.OpOrOr, precLogicalOr
	case AndAnd:
		return ast.OpAndAnd, precLogicalAnd
	case EqEq:
		return ast.OpEq, precEquality
	case BangEq:
		return ast.OpNe, precEquality
	case Lt:
		return ast.OpLt, precComparison
	case LtEq:
		return ast.OpLe, precComparison
	case Gt:
		return ast.OpGt, precComparison
	case GtEq:
		return ast.OpGe, precComparison
	case Plus:
		return ast.OpAdd, precAdditive
	case Minus:
		return ast.OpSub, precAdditive
	case Star:
		return ast.OpMul, precMultiplicative
	case Slash:
		return ast.OpDiv, precMultiplicative
	case Percent:
		return ast.OpRem, precMultiplicative
	}
	return 0, -1
}

// parseExpr parses an expression; it returns nil after reporting an error.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

// parseAssign handles the right-associative `=`. The target must be a local
// name, optionally parenthesised.
func (p *Parser) parseAssign() ast.Expr {
	lhs := p.parseBinary(precLogicalOr)
	if lhs == nil {
		return nil
	}
	if !p.at(Assign) {
		return lhs
	}
	eq := p.advance()
	target, ok := ast.Unparen(lhs).(*ast.Name)
	if !ok {
		p.report(diag.SynUnexpectedToken, diag.SevError, eq.Span, "left side of assignment must be a local variable")
		return nil
	}
	rhs := p.parseAssign()
	if rhs == nil {
		return nil
	}
	return &ast.Assign{Loc: lhs.Span().Cover(rhs.Span()), Target: target, Value: rhs}
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	for {
		op, prec := binaryOp(p.peek().Kind)
		if prec < minPrec {
			return lhs
		}
		p.advance()
		rhs := p.parseBinary(prec + 1)
		if rhs == nil {
			return nil
		}
		lhs = &ast.Binary{Loc: lhs.Span().Cover(rhs.Span()), Op: op, X: lhs, Y: rhs}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case Bang:
		p.advance()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &ast.Unary{Loc: tok.Span.Cover(x.Span()), Op: ast.OpNot, X: x}
	case Minus:
		p.advance()
		if lit := p.peek(); lit.Kind == IntLit && lit.Text == "2147483648" {
			p.advance()
			return &ast.IntLit{Loc: tok.Span.Cover(lit.Span), Value: -2147483648}
		}
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &ast.Unary{Loc: tok.Span.Cover(x.Span()), Op: ast.OpNeg, X: x}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case IntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 32)
		if err != nil {
			p.report(diag.SynBadNumber, diag.SevError, tok.Span, "integer literal out of range: "+tok.Text)
			return nil
		}
		return &ast.IntLit{Loc: tok.Span, Value: int32(v)}
	case KwTrue, KwFalse:
		p.advance()
		return &ast.BoolLit{Loc: tok.Span, Value: tok.Kind == KwTrue}
	case Ident:
		p.advance()
		if p.at(LParen) {
			return p.parseCall(tok)
		}
		return &ast.Name{Loc: tok.Span, Name: tok.Text}
	case LParen:
		p.advance()
		x := p.parseExpr()
		if x == nil {
			return nil
		}
		closeTok, ok := p.expect(RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return nil
		}
		return &ast.Paren{Loc: tok.Span.Cover(closeTok.Span), X: x}
	case Invalid:
		// already reported by the lexer
		p.advance()
		return nil
	}
	p.err(diag.SynExpectExpr, "expected expression, got "+describe(tok))
	return nil
}

func (p *Parser) parseCall(name Token) ast.Expr {
	p.advance()
	call := &ast.Call{Name: name.Text, NameLoc: name.Span}
	if !p.at(RParen) {
		for {
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if _, ok := p.eat(Comma); !ok {
				break
			}
		}
	}
	closeTok, ok := p.expect(RParen, diag.SynUnclosedParen, "expected ')' after arguments")
	if !ok {
		return nil
	}
	call.Loc = name.Span.Cover(closeTok.Span)
	return call
}

package syntax

import (
	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/types"
)

func (p *Parser) parseBlock() *ast.Block {
	open := p.advance()
	blk := &ast.Block{Loc: open.Span}
	for !p.atOr(RBrace, EOF) {
		if s := p.parseStmt(); s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
	}
	if closeTok, ok := p.eat(RBrace); ok {
		blk.Loc = blk.Loc.Cover(closeTok.Span)
	} else {
		p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '{'")
		blk.Loc = blk.Loc.Cover(p.lastSpan)
	}
	return blk
}

// parseStmt returns nil after a syntax error; the input has then been
// resynchronised past the broken statement.
func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()
	switch tok.Kind {
	case LBrace:
		return p.parseBlock()
	case Semicolon:
		p.advance()
		return &ast.Empty{Loc: tok.Span}
	case KwFinal, KwInt, KwBoolean:
		return p.recover(p.parseLocalDecl())
	case KwIf:
		return p.recover(p.parseIf(false))
	case KwReturn:
		return p.recover(p.parseReturn())
	case KwElse:
		p.err(diag.SynUnexpectedToken, "'else' without 'if'")
		p.advance()
		return nil
	}
	x := p.parseExpr()
	if x == nil {
		p.resyncStmt()
		return nil
	}
	semi, ok := p.expectSemicolon()
	if !ok {
		p.resyncStmt()
		return nil
	}
	return &ast.ExprStmt{Loc: x.Span().Cover(semi.Span), X: x}
}

func (p *Parser) recover(s ast.Stmt) ast.Stmt {
	if s == nil {
		p.resyncStmt()
	}
	return s
}

// resyncStmt skips to just past the next `;`, or to the enclosing `}`.
func (p *Parser) resyncStmt() {
	p.resyncUntil(Semicolon)
	p.eat(Semicolon)
}

func (p *Parser) expectSemicolon() (Token, bool) {
	return p.expect(Semicolon, diag.SynExpectSemicolon, "expected ';'")
}

func (p *Parser) parseLocalDecl() ast.Stmt {
	start := p.peek().Span
	d := &ast.LocalDecl{}
	if _, ok := p.eat(KwFinal); ok {
		d.Final = true
	}
	typ, typLoc, ok := p.parseType()
	if !ok {
		return nil
	}
	if typ == types.KindVoid {
		p.report(diag.SynExpectType, diag.SevError, typLoc, "local variable cannot have type void")
		return nil
	}
	d.Type = typ
	name, ok := p.parseIdent()
	if !ok {
		return nil
	}
	d.Name, d.NameLoc = name.Text, name.Span
	if _, ok := p.eat(Assign); ok {
		if d.Init = p.parseExpr(); d.Init == nil {
			return nil
		}
	}
	semi, ok := p.expectSemicolon()
	if !ok {
		return nil
	}
	d.Loc = start.Cover(semi.Span)
	return d
}

func (p *Parser) parseReturn() ast.Stmt {
	kw := p.advance()
	r := &ast.Return{Loc: kw.Span}
	if !p.at(Semicolon) {
		if r.Value = p.parseExpr(); r.Value == nil {
			return nil
		}
	}
	semi, ok := p.expectSemicolon()
	if !ok {
		return nil
	}
	r.Loc = r.Loc.Cover(semi.Span)
	return r
}

// parseIf parses `if (cond) then [else stmt]`. An `else if` is parsed as an
// If in the else arm with IsElseIf set.
func (p *Parser) parseIf(isElseIf bool) ast.Stmt {
	kw := p.advance()
	if _, ok := p.expect(LParen, diag.SynUnexpectedToken, "expected '(' after 'if'"); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(RParen, diag.SynUnclosedParen, "expected ')' after condition"); !ok {
		return nil
	}
	n := &ast.If{Cond: cond, IsElseIf: isElseIf}
	n.Then = p.parseBranch()
	n.Loc = kw.Span.Cover(n.Then.Span())
	elseTok, ok := p.eat(KwElse)
	if !ok {
		return n
	}
	n.ElseLoc = elseTok.Span
	if p.at(KwIf) {
		if n.Else = p.recover(p.parseIf(true)); n.Else == nil {
			return n
		}
	} else {
		n.Else = p.parseBranch()
	}
	n.Loc = n.Loc.Cover(n.Else.Span())
	return n
}

// parseBranch parses the statement of an if arm. A declaration is not a
// statement in that position. A broken arm is replaced by an Empty so the
// If itself survives.
func (p *Parser) parseBranch() ast.Stmt {
	if p.atOr(KwFinal, KwInt, KwBoolean) {
		p.err(diag.SynUnexpectedToken, "declaration not allowed here")
		p.resyncStmt()
		return &ast.Empty{Loc: p.lastSpan}
	}
	if p.atOr(RBrace, EOF) {
		p.err(diag.SynExpectExpr, "expected statement, got "+describe(p.peek()))
		return &ast.Empty{Loc: p.diagSpan()}
	}
	if s := p.parseStmt(); s != nil {
		return s
	}
	return &ast.Empty{Loc: p.lastSpan}
}

package syntax

import (
	"slices"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/source"
	"condflow/internal/types"
)

type Options struct {
	// MaxErrors stops reporting after this many syntax errors; 0 means no limit.
	MaxErrors uint
	Reporter  diag.Reporter
}

// Parser holds the state for one file.
type Parser struct {
	lx       *Lexer
	file     *source.File
	opts     Options
	errors   uint
	lastSpan source.Span
}

// ParseFile parses every method of f.
func ParseFile(f *source.File, opts Options) *ast.File {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	p := &Parser{
		file: f,
		opts: opts,
	}
	p.lx = NewLexer(f, diagCounter{p})
	p.lastSpan = p.lx.EmptySpan()
	return p.parseFile()
}

// ParseMethod parses src as a single method declaration held in a virtual
// file. It is a convenience for tests and tools.
func ParseMethod(fs *source.FileSet, name string, src string, rep diag.Reporter) *ast.Method {
	id := fs.AddVirtual(name, []byte(src))
	f := ParseFile(fs.Get(id), Options{Reporter: rep})
	if len(f.Methods) == 0 {
		return nil
	}
	return f.Methods[0]
}

// diagCounter forwards lexer diagnostics through the parser so they count
// toward MaxErrors.
type diagCounter struct{ p *Parser }

func (d diagCounter) Report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	d.p.report(code, sev, sp, msg)
}

func (p *Parser) peek() Token { return p.lx.Peek() }

func (p *Parser) at(k Kind) bool { return p.lx.Peek().Kind == k }

func (p *Parser) atOr(kinds ...Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) advance() Token {
	tok := p.lx.Next()
	if tok.Kind != EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k Kind) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return Token{}, false
}

// diagSpan points at the next token, or just past the last consumed token
// when the input ended.
func (p *Parser) diagSpan() source.Span {
	peek := p.peek()
	if peek.Kind == EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) expect(k Kind, code diag.Code, msg string) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.report(code, diag.SevError, p.diagSpan(), msg)
	return Token{Kind: Invalid, Span: p.diagSpan()}, false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errors++
	}
	if p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
}

// resyncUntil skips tokens until one of stop (not consumed) or EOF, keeping
// track of brace nesting so a `}` of an inner block does not stop it.
func (p *Parser) resyncUntil(stop ...Kind) {
	depth := 0
	for !p.at(EOF) {
		k := p.peek().Kind
		if depth == 0 && slices.Contains(stop, k) {
			return
		}
		switch k {
		case LBrace:
			depth++
		case RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{ID: p.file.ID}
	for !p.at(EOF) {
		m, ok := p.parseMethod()
		if ok {
			f.Methods = append(f.Methods, m)
			continue
		}
		p.resyncTop()
	}
	return f
}

// resyncTop skips to the start of the next method declaration.
func (p *Parser) resyncTop() {
	for !p.at(EOF) {
		if p.atOr(KwStatic, KwVoid, KwInt, KwBoolean) {
			return
		}
		if p.at(LBrace) {
			p.advance()
			p.resyncUntil()
			p.eat(RBrace)
			continue
		}
		p.advance()
	}
}

func (p *Parser) parseType() (types.Kind, source.Span, bool) {
	tok := p.peek()
	switch tok.Kind {
	case KwVoid:
		p.advance()
		return types.KindVoid, tok.Span, true
	case KwInt:
		p.advance()
		return types.KindInt, tok.Span, true
	case KwBoolean:
		p.advance()
		return types.KindBool, tok.Span, true
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(tok))
	return types.KindInvalid, tok.Span, false
}

func (p *Parser) parseIdent() (Token, bool) {
	if p.at(Ident) {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdent, "expected identifier, got "+describe(p.peek()))
	return Token{}, false
}

func (p *Parser) parseMethod() (*ast.Method, bool) {
	start := p.peek().Span
	m := &ast.Method{}
	if _, ok := p.eat(KwStatic); ok {
		m.Static = true
	}
	result, _, ok := p.parseType()
	if !ok {
		return nil, false
	}
	m.Result = result
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	m.Name, m.NameLoc = name.Text, name.Span
	if _, ok := p.expect(LParen, diag.SynUnexpectedToken, "expected '(' after method name"); !ok {
		return nil, false
	}
	if !p.at(RParen) {
		for {
			param, ok := p.parseParam()
			if !ok {
				return nil, false
			}
			m.Params = append(m.Params, param)
			if _, ok := p.eat(Comma); !ok {
				break
			}
		}
	}
	if _, ok := p.expect(RParen, diag.SynUnclosedParen, "expected ')' after parameters"); !ok {
		return nil, false
	}
	if !p.at(LBrace) {
		p.err(diag.SynUnexpectedToken, "expected method body")
		return nil, false
	}
	m.Body = p.parseBlock()
	m.Loc = start.Cover(m.Body.Loc)
	return m, true
}

func (p *Parser) parseParam() (ast.Param, bool) {
	typ, typLoc, ok := p.parseType()
	if !ok {
		return ast.Param{}, false
	}
	if typ == types.KindVoid {
		p.report(diag.SynExpectType, diag.SevError, typLoc, "parameter cannot have type void")
	}
	name, ok := p.parseIdent()
	if !ok {
		return ast.Param{}, false
	}
	return ast.Param{Loc: typLoc.Cover(name.Span), Type: typ, Name: name.Text, NameLoc: name.Span}, true
}

func describe(t Token) string {
	if t.Kind == EOF {
		return "end of file"
	}
	return quoteText(t.Text)
}

package syntax

import (
	"condflow/internal/diag"
	"condflow/internal/source"
)

// Lexer produces tokens with one token of lookahead.
type Lexer struct {
	file   *source.File
	cursor Cursor
	rep    diag.Reporter
	look   *Token
}

// NewLexer creates a lexer over f. rep may be nil.
func NewLexer(f *source.File, rep diag.Reporter) *Lexer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Lexer{file: f, cursor: NewCursor(f), rep: rep}
}

// Next returns the next significant token. After the end of input it keeps
// returning EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.skipTrivia()
	if lx.cursor.EOF() {
		return Token{Kind: EOF, Span: lx.EmptySpan()}
	}
	ch := lx.cursor.Peek()
	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	default:
		return lx.scanOperator()
	}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		t := lx.Next()
		lx.look = &t
	}
	return *lx.look
}

// EmptySpan is a zero-width span at the current offset.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case ' ', '\t', '\n', '\r':
			lx.cursor.Bump()
			continue
		case '/':
			b0, b1, ok := lx.cursor.Peek2()
			if !ok || b0 != '/' || (b1 != '/' && b1 != '*') {
				return
			}
			if b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
			lx.skipBlockComment()
			continue
		}
		return
	}
}

func (lx *Lexer) skipBlockComment() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return
		}
		lx.cursor.Bump()
	}
	diag.ReportError(lx.rep, diag.SynUnexpectedToken, lx.cursor.SpanFrom(start), "unterminated block comment").Emit()
}

func (lx *Lexer) scanIdentOrKeyword() Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if k, ok := LookupKeyword(text); ok {
		return Token{Kind: k, Span: sp, Text: text}
	}
	return Token{Kind: Ident, Span: sp, Text: text}
}

// scanNumber scans a decimal literal. Range checking happens in the parser
// because `-2147483648` is only valid under a unary minus.
func (lx *Lexer) scanNumber() Token {
	start := lx.cursor.Mark()
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if isIdentContinue(lx.cursor.Peek()) {
		for isIdentContinue(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		diag.ReportError(lx.rep, diag.SynBadNumber, sp, "malformed number literal").Emit()
		return Token{Kind: Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	sp := lx.cursor.SpanFrom(start)
	return Token{Kind: IntLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) scanOperator() Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Bump()
	kind := Invalid
	switch ch {
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '{':
		kind = LBrace
	case '}':
		kind = RBrace
	case ';':
		kind = Semicolon
	case ',':
		kind = Comma
	case '+':
		kind = Plus
	case '-':
		kind = Minus
	case '*':
		kind = Star
	case '/':
		kind = Slash
	case '%':
		kind = Percent
	case '=':
		kind = Assign
		if lx.cursor.Eat('=') {
			kind = EqEq
		}
	case '!':
		kind = Bang
		if lx.cursor.Eat('=') {
			kind = BangEq
		}
	case '<':
		kind = Lt
		if lx.cursor.Eat('=') {
			kind = LtEq
		}
	case '>':
		kind = Gt
		if lx.cursor.Eat('=') {
			kind = GtEq
		}
	case '&':
		if lx.cursor.Eat('&') {
			kind = AndAnd
		}
	case '|':
		if lx.cursor.Eat('|') {
			kind = OrOr
		}
	}
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kind == Invalid {
		diag.ReportError(lx.rep, diag.SynUnknownChar, sp, "unknown character "+quoteText(text)).Emit()
	}
	return Token{Kind: kind, Span: sp, Text: text}
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDec(b)
}

func isDec(b byte) bool { return '0' <= b && b <= '9' }

func quoteText(s string) string {
	return "'" + s + "'"
}

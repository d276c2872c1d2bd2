package syntax

import (
	"testing"

	"condflow/internal/diag"
	"condflow/internal/source"
)

func lexAll(t *testing.T, src string) ([]Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("lex.java", []byte(src))
	bag := diag.NewBag(10)
	lx := NewLexer(fs.Get(id), diag.BagReporter{Bag: bag})
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, bag
		}
	}
}

func TestLexerKinds(t *testing.T) {
	toks, bag := lexAll(t, "if (a <= 10 && !b) x = y != 3; else return;")
	want := []Kind{
		KwIf, LParen, Ident, LtEq, IntLit, AndAnd, Bang, Ident, RParen,
		Ident, Assign, Ident, BangEq, IntLit, Semicolon, KwElse, KwReturn, Semicolon, EOF,
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestLexerSpans(t *testing.T) {
	toks, _ := lexAll(t, "  final\tx")
	if toks[0].Span.Start != 2 || toks[0].Span.End != 7 || toks[0].Text != "final" {
		t.Fatalf("unexpected first token %+v", toks[0])
	}
	if toks[1].Span.Start != 8 || toks[1].Text != "x" {
		t.Fatalf("unexpected second token %+v", toks[1])
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"a & b", diag.SynUnknownChar},
		{"12ab", diag.SynBadNumber},
		{"/* open", diag.SynUnexpectedToken},
	}
	for _, tt := range tests {
		_, bag := lexAll(t, tt.src)
		items := bag.Items()
		if len(items) != 1 || items[0].Code != tt.code {
			t.Errorf("%q: got %v, want one %s", tt.src, items, tt.code.ID())
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.java", []byte("a b"))
	lx := NewLexer(fs.Get(id), nil)
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" {
		t.Fatal("peek moved the lexer")
	}
	if lx.Next().Text != "a" || lx.Next().Text != "b" || lx.Next().Kind != EOF || lx.Next().Kind != EOF {
		t.Fatal("unexpected token sequence")
	}
}

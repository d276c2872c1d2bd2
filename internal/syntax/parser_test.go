package syntax

import (
	"strings"
	"testing"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/source"
)

func parse(t *testing.T, src string) (*ast.File, *source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.java", []byte(src))
	bag := diag.NewBag(100)
	f := ParseFile(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return f, fs, bag
}

func parseOK(t *testing.T, src string) (*ast.File, *source.FileSet) {
	t.Helper()
	f, fs, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return f, fs
}

func TestParseMethodHeader(t *testing.T) {
	f, _ := parseOK(t, "static int f(int a, boolean b) { return a; }\nvoid g() {}")
	if len(f.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(f.Methods))
	}
	m := f.Methods[0]
	if !m.Static || m.Name != "f" || len(m.Params) != 2 {
		t.Fatalf("unexpected header: %+v", m)
	}
	if m.Params[1].Name != "b" || m.Params[1].Type.String() != "boolean" {
		t.Fatalf("unexpected param: %+v", m.Params[1])
	}
	if f.Methods[1].Static || len(f.Methods[1].Body.Stmts) != 0 {
		t.Fatalf("unexpected second method: %+v", f.Methods[1])
	}
}

func TestParseElseIfChain(t *testing.T) {
	src := "void f(boolean a, boolean b) { if (a) g(); else if (b) h(); else ; }"
	f, fs := parseOK(t, src)
	outer, ok := f.Methods[0].Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", f.Methods[0].Body.Stmts[0])
	}
	if outer.IsElseIf {
		t.Fatal("outer if must not be marked as else-if")
	}
	if got := fs.Text(outer.ElseLoc); got != "else" {
		t.Fatalf("ElseLoc covers %q", got)
	}
	inner, ok := outer.Else.(*ast.If)
	if !ok {
		t.Fatalf("expected nested If, got %T", outer.Else)
	}
	if !inner.IsElseIf {
		t.Fatal("else-arm if must be marked as else-if")
	}
	if _, ok := inner.Else.(*ast.Empty); !ok {
		t.Fatalf("expected empty else, got %T", inner.Else)
	}
	if got := fs.Text(outer.Loc); got != "if (a) g(); else if (b) h(); else ;" {
		t.Fatalf("If span covers %q", got)
	}
}

func TestParsePrecedence(t *testing.T) {
	f, _ := parseOK(t, "void f(boolean a, boolean b, boolean c, int x) { a = b || c && x + 1 * 2 < 3; }")
	stmt := f.Methods[0].Body.Stmts[0].(*ast.ExprStmt)
	if got := ast.String(stmt); got != "a = b || c && x + 1 * 2 < 3;" {
		t.Fatalf("printed %q", got)
	}
	as := stmt.X.(*ast.Assign)
	or := as.Value.(*ast.Binary)
	if or.Op != ast.OpOrOr {
		t.Fatalf("top operator %s, want ||", or.Op)
	}
	and := or.Y.(*ast.Binary)
	if and.Op != ast.OpAndAnd {
		t.Fatalf("right of || is %s, want &&", and.Op)
	}
	lt := and.Y.(*ast.Binary)
	if lt.Op != ast.OpLt {
		t.Fatalf("right of && is %s, want <", lt.Op)
	}
	add := lt.X.(*ast.Binary)
	if add.Op != ast.OpAdd || add.Y.(*ast.Binary).Op != ast.OpMul {
		t.Fatalf("unexpected arithmetic tree %s", ast.String(add))
	}
}

func TestParseMinInt(t *testing.T) {
	f, _ := parseOK(t, "int f() { return -2147483648; }")
	ret := f.Methods[0].Body.Stmts[0].(*ast.Return)
	lit, ok := ret.Value.(*ast.IntLit)
	if !ok || lit.Value != -2147483648 {
		t.Fatalf("unexpected literal %#v", ret.Value)
	}
}

func TestParseCommentsSkipped(t *testing.T) {
	f, _ := parseOK(t, "// header\nvoid f() { /* nothing */ ; }")
	if len(f.Methods[0].Body.Stmts) != 1 {
		t.Fatalf("expected one statement")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "missing semicolon",
			src:  "void f() { g() h(); }",
			want: []string{"SYN2003"},
		},
		{
			name: "else without if",
			src:  "void f() { else g(); }",
			want: []string{"SYN2001"},
		},
		{
			name: "declaration in branch",
			src:  "void f(boolean b) { if (b) int x = 1; }",
			want: []string{"SYN2001"},
		},
		{
			name: "literal overflow",
			src:  "int f() { return 2147483648; }",
			want: []string{"SYN2009"},
		},
		{
			name: "unknown char",
			src:  "void f() { # }",
			want: []string{"SYN2002"},
		},
		{
			name: "bad assignment target",
			src:  "void f() { 1 = 2; }",
			want: []string{"SYN2001"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fs, bag := parse(t, tt.src)
			got := diag.FormatShortDiagnostics(bag.Items(), fs, false)
			for _, code := range tt.want {
				if !strings.Contains(got, code) {
					t.Fatalf("expected %s in:\n%s", code, got)
				}
			}
		})
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	f, _, bag := parse(t, "void f() { g() h(); k(); }\nvoid m() { n(); }")
	if !bag.HasErrors() {
		t.Fatal("expected an error")
	}
	if len(f.Methods) != 2 {
		t.Fatalf("expected both methods to survive, got %d", len(f.Methods))
	}
	body := f.Methods[0].Body.Stmts
	if len(body) != 1 || ast.String(body[0]) != "k();" {
		t.Fatalf("unexpected recovered body: %d statements", len(body))
	}
}

func TestParseMethodHelper(t *testing.T) {
	fs := source.NewFileSet()
	m := ParseMethod(fs, "m.java", "void f() { return; }", nil)
	if m == nil || m.Name != "f" {
		t.Fatalf("unexpected method %#v", m)
	}
}

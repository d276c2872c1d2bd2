package sema

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/flow"
)

func TestAnalyzeDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "unnecessary else",
			src:  "void f(boolean x) { int y; if (x) { return; } else { y = 1; } }",
			want: []string{"FLW4003"},
		},
		{
			name: "else if chain tolerated",
			src:  "void f(boolean x, boolean z) { int y; if (x) { return; } else if (z) { y = 1; } }",
			want: []string{},
		},
		{
			name: "else if chain ending in dead ends",
			src:  "void g() {}\nvoid f(boolean x, boolean z) { if (x) return; else if (z) return; else g(); }",
			want: []string{},
		},
		{
			name: "both branches return",
			src:  "int f(boolean b) { if (b) return 1; else return 2; }",
			want: []string{"FLW4003"},
		},
		{
			name: "constant true else is dead",
			src:  "void g() {}\nvoid f() { int y; if (true) { y = 1; } else { y = 2; } g(); }",
			want: []string{"FLW4002"},
		},
		{
			name: "constant false then is dead",
			src:  "void g() {}\nvoid f() { if (false) { g(); } else { g(); } }",
			want: []string{"FLW4002"},
		},
		{
			name: "final constant condition",
			src:  "void g() {}\nvoid f() { final boolean DEBUG = false; if (DEBUG) g(); }",
			want: []string{"FLW4002"},
		},
		{
			name: "empty dead then block",
			src:  "void f() { if (false) {} }",
			want: []string{},
		},
		{
			name: "empty dead then statement",
			src:  "void f() { if (false) ; }",
			want: []string{},
		},
		{
			name: "empty dead else",
			src:  "void g() {}\nvoid f() { if (true) g(); else ; }",
			want: []string{},
		},
		{
			name: "non-empty dead arm still reported",
			src:  "void g() {}\nvoid f() { if (false) { g(); } else ; }",
			want: []string{"FLW4002"},
		},
		{
			name: "code after return",
			src:  "void g() {}\nvoid f() { return; g(); g(); }",
			want: []string{"FLW4001"},
		},
		{
			name: "stray semicolon after return",
			src:  "void f() { return; ; }",
			want: []string{},
		},
		{
			name: "fake reachable after if true return",
			src:  "void g() {}\nvoid f() { if (true) { return; } g(); }",
			want: []string{"FLW4002"},
		},
		{
			name: "assigned on both branches",
			src:  "int f(boolean b) { int x; if (b) x = 1; else x = 2; return x; }",
			want: []string{},
		},
		{
			name: "assigned on one branch",
			src:  "int f(boolean b) { int x; if (b) x = 1; return x; }",
			want: []string{"FLW4004"},
		},
		{
			name: "assigned in constant true branch",
			src:  "int f() { int x; if (true) x = 1; return x; }",
			want: []string{},
		},
		{
			name: "and assigns on true outcome",
			src:  "int f(boolean b) { int x; if (b && (x = 1) > 0) return x; return 0; }",
			want: []string{},
		},
		{
			name: "or does not assign on true outcome",
			src:  "int f(boolean b) { int x; if (b || (x = 1) > 0) return x; return 0; }",
			want: []string{"FLW4004"},
		},
		{
			name: "not swaps outcomes",
			src:  "int f(boolean b) { int x; if (!(b || (x = 1) > 0)) return x; return 0; }",
			want: []string{},
		},
		{
			name: "missing return",
			src:  "int f(boolean b) { if (b) return 1; }",
			want: []string{"FLW4005"},
		},
		{
			name: "if true return still completes normally",
			src:  "int f() { if (true) return 1; }",
			want: []string{"FLW4005"},
		},
		{
			name: "empty then",
			src:  "void f(boolean x) { if (x) {} }",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyse(t, tt.src, DefaultOptions())
			for name, u := range a.units {
				if u.err != nil {
					t.Fatalf("%s: unexpected internal error: %v", name, u.err)
				}
			}
			if diff := cmp.Diff(tt.want, a.codes()); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s\n%s", diff, a.short())
			}
		})
	}
}

func TestFakeReachableDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.FakeReachable = false
	a := analyse(t, "void g() {}\nvoid f() { if (true) { return; } g(); }", opts)
	if diff := cmp.Diff([]string{"FLW4001"}, a.codes()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	a = analyse(t, "int f() { if (true) return 1; }", opts)
	if got := a.codes(); len(got) != 0 {
		t.Fatalf("expected no diagnostics, got %v", got)
	}
}

func TestReportDeadCodeDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ReportDeadCode = false
	a := analyse(t, "void g() {}\nvoid f() { if (false) g(); if (true) return; g(); }", opts)
	if got := a.codes(); len(got) != 0 {
		t.Fatalf("expected no diagnostics, got %v", got)
	}
	f := a.units["f"].res
	if f.IsReachable(a.stmtText(t, "f", "g();")) {
		t.Fatal("dead statement must not be marked reachable")
	}
}

func TestDeadCodeWarningPosition(t *testing.T) {
	a := analyse(t, "void g() {}\nvoid f() {\n  if (true) g();\n  else { g(); }\n}", DefaultOptions())
	want := "warning FLW4002 test.java:4:8 dead code"
	if got := a.short(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnnecessaryElseFix(t *testing.T) {
	a := analyse(t, "void f(boolean x) { if (x) return; else { x = false; } }", DefaultOptions())
	items := a.bag.Items()
	if len(items) != 1 || items[0].Code != diag.FlowUnnecessaryElse {
		t.Fatalf("unexpected diagnostics: %s", a.short())
	}
	if items[0].Severity != diag.SevWarning {
		t.Fatalf("severity %s, want warning", items[0].Severity)
	}
	if len(items[0].Fixes) != 1 || len(items[0].Fixes[0].Edits) != 1 {
		t.Fatalf("expected one fix with one edit, got %+v", items[0].Fixes)
	}
	if got := a.fs.Text(items[0].Fixes[0].Edits[0].Span); got != "else" {
		t.Fatalf("fix edits %q, want the else keyword", got)
	}
	if got := a.fs.Text(items[0].Primary); got != "{ x = false; }" {
		t.Fatalf("diagnostic points at %q", got)
	}
}

func TestBranchFlowSummary(t *testing.T) {
	a := analyse(t, "void g(int v) {}\nvoid f(boolean b) { int x; if (b) x = 1; else x = 2; g(x); }", DefaultOptions())
	u := a.units["f"]
	n := a.firstIf(t, "f")
	bf, ok := u.res.Branch(n)
	if !ok {
		t.Fatal("missing branch summary")
	}
	want := BranchFlow{ThenEntry: 0, ElseEntry: 1, MergeExit: 2}
	if diff := cmp.Diff(want, bf); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if u.ledger.Len() != 3 {
		t.Fatalf("ledger has %d snapshots, want 3", u.ledger.Len())
	}
	x := u.res.Decls[a.stmtText(t, "f", "int x;").(*ast.LocalDecl)]
	thenIn, _ := u.ledger.Lookup(bf.ThenEntry)
	merged, _ := u.ledger.Lookup(bf.MergeExit)
	if thenIn.IsAssigned(x) {
		t.Error("x must not be assigned on then entry")
	}
	if !merged.IsAssigned(x) {
		t.Error("x must be assigned after the merge")
	}
	if !u.res.Exit.IsReachable() {
		t.Error("method end must be reachable")
	}
}

func TestBranchFlowWithoutElse(t *testing.T) {
	a := analyse(t, "void f(boolean b) { if (b) return; }", DefaultOptions())
	u := a.units["f"]
	bf, _ := u.res.Branch(a.firstIf(t, "f"))
	if bf.ElseEntry != flow.NoSnapshot {
		t.Fatalf("else entry %d recorded without an else branch", bf.ElseEntry)
	}
	if !bf.ThenIsDeadEnd {
		t.Fatal("then branch ending in return must be a dead end")
	}
	if u.ledger.Len() != 2 {
		t.Fatalf("ledger has %d snapshots, want 2", u.ledger.Len())
	}
}

func TestBranchFlowConstant(t *testing.T) {
	a := analyse(t, "void g() {}\nvoid f() { if (true || false) g(); else g(); }", DefaultOptions())
	u := a.units["f"]
	n := a.firstIf(t, "f")
	bf, _ := u.res.Branch(n)
	if v, ok := bf.ConstBool(); !ok || !v {
		t.Fatalf("condition should fold to true, got %s", bf.Const)
	}
	if !u.res.IsReachable(n.Then) {
		t.Error("then branch must be reachable")
	}
	if u.res.IsReachable(n.Else) {
		t.Error("else branch must not be reachable")
	}
}

func TestAnalyzeTwiceIsInternalError(t *testing.T) {
	a := analyse(t, "void f(boolean b) { if (b) return; }", DefaultOptions())
	u := a.units["f"]
	_, err := NewAnalyzer(DefaultOptions()).Analyze(u.res, u.ledger)
	if err == nil || !errors.IsAssertionFailure(err) {
		t.Fatalf("expected assertion failure, got %v", err)
	}
}

func TestSameIfTwiceIsInternalError(t *testing.T) {
	a := analyse(t, "void f(boolean b) { if (b) ; }", DefaultOptions())
	m := a.units["f"].res.Method
	m.Body.Stmts = append(m.Body.Stmts, m.Body.Stmts[0])

	res := Resolve(m, CollectMethods(a.file, nil), nil)
	_, err := NewAnalyzer(DefaultOptions()).Analyze(res, flow.NewLedger())
	if err == nil || !errors.IsAssertionFailure(err) {
		t.Fatalf("expected assertion failure, got %v", err)
	}
	if res.Analysed {
		t.Fatal("aborted analysis must not mark the method analysed")
	}
}

func TestAnalyzeWithoutLedger(t *testing.T) {
	a := analyse(t, "void f() {}", DefaultOptions())
	res := Resolve(a.units["f"].res.Method, nil, nil)
	if _, err := NewAnalyzer(DefaultOptions()).Analyze(res, nil); !errors.IsAssertionFailure(err) {
		t.Fatalf("expected assertion failure, got %v", err)
	}
}

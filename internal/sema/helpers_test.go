package sema

import (
	"testing"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/flow"
	"condflow/internal/source"
	"condflow/internal/syntax"
)

type unit struct {
	res    *Result
	ledger *flow.Ledger
	err    error
}

type analysed struct {
	fs    *source.FileSet
	file  *ast.File
	bag   *diag.Bag
	units map[string]unit
}

// analyse parses src, resolves and analyses every method with opts.
func analyse(t *testing.T, src string, opts Options) *analysed {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.java", []byte(src))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	f := syntax.ParseFile(fs.Get(id), syntax.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("syntax errors:\n%s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	opts.Reporter = rep
	out := &analysed{fs: fs, file: f, bag: bag, units: make(map[string]unit)}
	methods := CollectMethods(f, rep)
	for _, m := range f.Methods {
		res := Resolve(m, methods, rep)
		ledger := flow.NewLedger()
		_, err := NewAnalyzer(opts).Analyze(res, ledger)
		out.units[m.Name] = unit{res: res, ledger: ledger, err: err}
	}
	return out
}

// codes returns the diagnostic code IDs in source order.
func (a *analysed) codes() []string {
	a.bag.Sort()
	out := make([]string, 0, a.bag.Len())
	for _, d := range a.bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func (a *analysed) short() string {
	return diag.FormatShortDiagnostics(a.bag.Items(), a.fs, false)
}

// firstIf returns the first if statement of method name in source order.
func (a *analysed) firstIf(t *testing.T, name string) *ast.If {
	t.Helper()
	var found *ast.If
	ast.Inspect(a.units[name].res.Method, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if n, ok := n.(*ast.If); ok {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		t.Fatalf("no if statement in %s", name)
	}
	return found
}

// stmtText finds the statement whose printed form is text.
func (a *analysed) stmtText(t *testing.T, name, text string) ast.Stmt {
	t.Helper()
	var found ast.Stmt
	ast.Inspect(a.units[name].res.Method, func(n ast.Node) bool {
		if s, ok := n.(ast.Stmt); ok && found == nil && ast.String(s) == text {
			found = s
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("statement %q not found in %s", text, name)
	}
	return found
}

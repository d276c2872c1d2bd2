package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cockroach "github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"condflow/internal/diag"
	"condflow/internal/observ"
)

const mainSrc = `void g() {}
void f() { if (true) { return; } g(); }
int h(boolean b) { int x; if (b) x = 1; return x; }
`

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func codes(r *Result) []string {
	var out []string
	for _, d := range r.Diagnostics() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.java", mainSrc)
	writeFile(t, dir, "notes.txt", "not a source file")

	res, err := Compile(context.Background(), []string{dir}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 1 {
		t.Fatalf("compiled %d files", len(res.Files))
	}
	if diff := cmp.Diff([]string{"FLW4002", "FLW4004"}, codes(res)); diff != "" {
		t.Errorf("codes (-want +got):\n%s", diff)
	}
	fr := res.Files[0]
	for _, tt := range []struct {
		method   string
		wantCode bool
		dead     int
	}{
		{"g", true, 0},
		{"f", true, 1},
		{"h", false, 0},
	} {
		u := fr.Unit(tt.method)
		if u == nil {
			t.Fatalf("no unit for %s", tt.method)
		}
		if (u.Code != nil) != tt.wantCode {
			t.Errorf("%s: code = %v, want code %v", tt.method, u.Code != nil, tt.wantCode)
		}
		if u.DeadStatements != tt.dead {
			t.Errorf("%s: dead statements = %d, want %d", tt.method, u.DeadStatements, tt.dead)
		}
		if u.Result != nil || u.Ledger != nil {
			t.Errorf("%s: analysis kept without KeepAnalysis", tt.method)
		}
	}
	if !res.HasErrors() || res.Aborted() != 0 {
		t.Errorf("HasErrors = %v, Aborted = %d", res.HasErrors(), res.Aborted())
	}
}

func TestCompile_SyntaxErrorsSkipAnalysis(t *testing.T) {
	res, err := CompileSource(context.Background(), "Bad.java", []byte("void f() { int x = ; }\nint g() { }\n"), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range codes(res) {
		if !strings.HasPrefix(code, "SYN") {
			t.Errorf("unexpected %s in a file with syntax errors", code)
		}
	}
	if len(res.Files[0].Units) != 0 {
		t.Errorf("compiled %d units", len(res.Files[0].Units))
	}
}

func TestCompile_DuplicateMethod(t *testing.T) {
	res, err := CompileSource(context.Background(), "Dup.java", []byte("void f() {}\nvoid f() {}\n"), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"SEM3009"}, codes(res)); diff != "" {
		t.Errorf("codes (-want +got):\n%s", diff)
	}
	if len(res.Files[0].Units) != 1 {
		t.Errorf("compiled %d units", len(res.Files[0].Units))
	}
}

func TestCompile_Options(t *testing.T) {
	src := []byte(mainSrc + "void k(int a) { int unused; if (false) { k(a); } }\n")
	tests := []struct {
		name string
		opts func(*Options)
		want []string
		sev  []diag.Severity
	}{
		{
			name: "defaults",
			opts: func(*Options) {},
			want: []string{"FLW4002", "FLW4004", "FLW4002"},
			sev:  []diag.Severity{diag.SevWarning, diag.SevError, diag.SevWarning},
		},
		{
			name: "no dead code",
			opts: func(o *Options) { o.ReportDeadCode = false },
			want: []string{"FLW4004"},
			sev:  []diag.Severity{diag.SevError},
		},
		{
			name: "warnings as errors",
			opts: func(o *Options) { o.WarningsAsErrors = true },
			want: []string{"FLW4002", "FLW4004", "FLW4002"},
			sev:  []diag.Severity{diag.SevError, diag.SevError, diag.SevError},
		},
		{
			name: "limit",
			opts: func(o *Options) { o.MaxDiagnostics = 1 },
			want: []string{"FLW4002"},
			sev:  []diag.Severity{diag.SevWarning},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.opts(&opts)
			res, err := CompileSource(context.Background(), "Opt.java", src, opts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, codes(res)); diff != "" {
				t.Errorf("codes (-want +got):\n%s", diff)
			}
			var sev []diag.Severity
			for _, d := range res.Diagnostics() {
				sev = append(sev, d.Severity)
			}
			if diff := cmp.Diff(tt.sev, sev); diff != "" {
				t.Errorf("severities (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_JobsDoNotChangeOutput(t *testing.T) {
	var outputs []string
	for _, jobs := range []int{1, 4} {
		opts := DefaultOptions()
		opts.Jobs = jobs
		res, err := CompileSource(context.Background(), "Main.java", []byte(mainSrc), opts)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, diag.FormatShortDiagnostics(res.Diagnostics(), res.FileSet, true))
	}
	if outputs[0] != outputs[1] {
		t.Fatalf("jobs=1:\n%s\njobs=4:\n%s", outputs[0], outputs[1])
	}
}

func TestCompile_KeepAnalysis(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepAnalysis = true
	opts.Cache = NewCache(1 << 20)
	res, err := CompileSource(context.Background(), "Main.java", []byte(mainSrc), opts)
	if err != nil {
		t.Fatal(err)
	}
	u := res.Files[0].Unit("f")
	if u.Result == nil || !u.Result.Analysed || u.Ledger == nil || u.Ledger.Len() == 0 {
		t.Fatalf("analysis not kept: %+v", u)
	}
	if opts.Cache.Len() != 0 {
		t.Fatalf("KeepAnalysis populated the cache")
	}
}

// compileBoth compiles src once without a cache and once through opts.
func compileBoth(t *testing.T, src string, opts Options) (fresh, cached *Result) {
	t.Helper()
	var err error
	fresh, err = CompileSource(context.Background(), "Main.java", []byte(src), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	cached, err = CompileSource(context.Background(), "Main.java", []byte(src), opts)
	if err != nil {
		t.Fatal(err)
	}
	return fresh, cached
}

func assertSameOutput(t *testing.T, fresh, cached *Result) {
	t.Helper()
	want := diag.FormatShortDiagnostics(fresh.Diagnostics(), fresh.FileSet, true)
	got := diag.FormatShortDiagnostics(cached.Diagnostics(), cached.FileSet, true)
	if want != got {
		t.Errorf("diagnostics differ:\nfresh:\n%s\ncached:\n%s", want, got)
	}
	for i, u := range fresh.Files[0].Units {
		if diff := cmp.Diff(u.Code, cached.Files[0].Units[i].Code, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s code (-fresh +cached):\n%s", u.Method.Name, diff)
		}
	}
}

func TestCompile_MemoryCache(t *testing.T) {
	metrics := observ.NewMetrics()
	opts := DefaultOptions()
	opts.Cache = NewCache(1 << 20)
	opts.Metrics = metrics

	if _, err := CompileSource(context.Background(), "Main.java", []byte(mainSrc), opts); err != nil {
		t.Fatal(err)
	}
	if opts.Cache.Len() != 3 {
		t.Fatalf("cache holds %d units", opts.Cache.Len())
	}

	// the methods move down two lines; spans must follow them
	shifted := "\n\n" + mainSrc
	fresh, cached := compileBoth(t, shifted, opts)
	for _, u := range cached.Files[0].Units {
		if !u.Cached {
			t.Errorf("%s not served from the cache", u.Method.Name)
		}
	}
	assertSameOutput(t, fresh, cached)
	if got := metrics.CacheHits.Get(); got != 3 {
		t.Errorf("cache hits = %d", got)
	}
	if got := metrics.CacheMisses.Get(); got != 3 {
		t.Errorf("cache misses = %d", got)
	}

	// a changed callee signature invalidates its callers
	changed := strings.Replace(mainSrc, "void g() {}", "void g(int a) {}", 1)
	res, err := CompileSource(context.Background(), "Main.java", []byte(changed), opts)
	if err != nil {
		t.Fatal(err)
	}
	if u := res.Files[0].Unit("f"); u.Cached {
		t.Error("f served from the cache after g changed")
	}
}

func TestCompile_DiskCache(t *testing.T) {
	dir := t.TempDir()
	first, err := NewDiskCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.DiskCache = first
	if _, err := CompileSource(context.Background(), "Main.java", []byte(mainSrc), opts); err != nil {
		t.Fatal(err)
	}

	second, err := NewDiskCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	opts.DiskCache = second
	opts.Cache = NewCache(1 << 20)
	fresh, cached := compileBoth(t, mainSrc, opts)
	for _, u := range cached.Files[0].Units {
		if !u.Cached {
			t.Errorf("%s not served from disk", u.Method.Name)
		}
	}
	assertSameOutput(t, fresh, cached)
	if opts.Cache.Len() != 3 {
		t.Errorf("disk hits not promoted to memory: %d", opts.Cache.Len())
	}

	if err := second.DropAll(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "units"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d entries survived DropAll", len(entries))
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile(context.Background(), []string{filepath.Join(t.TempDir(), "missing.java")}, DefaultOptions()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing path: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CompileSource(ctx, "Main.java", []byte(mainSrc), DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v", err)
	}
}

func TestAbortKeepsOtherUnits(t *testing.T) {
	c := newCompiler(DefaultOptions())
	res, err := CompileSource(context.Background(), "Main.java", []byte(mainSrc), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	u := res.Files[0].Unit("f")
	c.abort(context.Background(), u, cockroach.AssertionFailedf("snapshot %d not recorded", 7))

	if !u.Aborted || u.Code != nil || !cockroach.IsAssertionFailure(u.Err) {
		t.Fatalf("unit not aborted: %+v", u)
	}
	items := u.bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.Internal || last.Severity != diag.SevError || last.Primary != u.Method.NameLoc {
		t.Fatalf("abort diagnostic = %+v", last)
	}
	if res.Files[0].Unit("g").Code == nil {
		t.Fatal("abort touched another unit")
	}
	if c.metrics.Aborted.Get() != 1 {
		t.Fatalf("aborted counter = %d", c.metrics.Aborted.Get())
	}
}

package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"condflow/internal/diag"
	"condflow/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/src/Test.java", []byte("void f() { return; g(); }\n"))
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevError, diag.FlowUnreachableStatement, source.Span{File: fileID, Start: 19, End: 23}, "unreachable code").Emit()

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "absolute", mode: PathModeAbsolute, contains: "/home/user/project/src/Test.java:1:20"},
		{name: "relative", mode: PathModeRelative, contains: "src/Test.java:1:20"},
		{name: "basename", mode: PathModeBasename, contains: "Test.java:1:20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR FLW4001: unreachable code"} {
				if !strings.Contains(out, want) {
					t.Errorf("output lacks %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "Test.java", want: "Test.java:1:1"},
		{path: "/very/long/absolute/path/to/some/nested/directory/Test.java", want: "\nTest.java:1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual(tt.path, []byte("int x;\n"))
			bag := diag.NewBag(1)
			diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevWarning, diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 3}, "warning").Emit()
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			if !strings.Contains("\n"+buf.String(), tt.want) {
				t.Errorf("output lacks %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	src := "void f() {\n\treturn;\n\tg(1, 2);\n}\n"
	id := fs.AddVirtual("Test.java", []byte(src))
	start := uint32(strings.Index(src, "g(1")) // #nosec G115 -- test input
	bag := diag.NewBag(1)
	diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevError, diag.FlowUnreachableStatement, source.Span{File: id, Start: start, End: start + 8}, "unreachable code").Emit()

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	want := "Test.java:3:2: ERROR FLW4001: unreachable code\n" +
		"2 | \treturn;\n" +
		"3 | \tg(1, 2);\n" +
		"  | \t^~~~~~~~\n" +
		"4 | }\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestCaretWideRunes(t *testing.T) {
	pad, mark := caret("s = \"日本\"; x", 4, 12)
	if pad != "    " {
		t.Fatalf("pad = %q", pad)
	}
	if mark != "^~~~~~" {
		t.Fatalf("mark = %q, want six cells", mark)
	}
	if _, mark := caret("abc", 3, 3); mark != "^" {
		t.Fatalf("empty span mark = %q", mark)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	src := "int f(boolean b) { int x; if (b) x = 1; return x; }\n"
	id := fs.AddVirtual("Test.java", []byte(src))
	use := uint32(strings.LastIndex(src, "x;")) // #nosec G115 -- test input
	decl := uint32(strings.Index(src, "x;"))    // #nosec G115 -- test input

	bag := diag.NewBag(1)
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.FlowUninitializedLocal, source.Span{File: id, Start: use, End: use + 1},
		"the local variable x may not have been initialized").
		WithNote(source.Span{File: id, Start: decl, End: decl + 1}, "declared here").
		WithFix("initialize x", diag.FixEdit{Span: source.Span{File: id, Start: decl + 1, End: decl + 1}, NewText: " = 0"}).
		Emit()

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, want := range []string{
		"note: Test.java:1:24: declared here",
		"fix #1: initialize x",
		`apply=" = 0"`,
		"preview:",
		"- int f(boolean b) { int x; if (b) x = 1; return x; }",
		"+ int f(boolean b) { int x = 0; if (b) x = 1; return x; }",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte("x\n"))
	bag := diag.NewBag(1)
	diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevWarning, diag.FlowDeadCode, source.Span{File: id, Start: 0, End: 1}, "dead code").Emit()

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes: %q", colored.String())
	}
}

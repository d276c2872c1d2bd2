package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"condflow/internal/diag"
	"condflow/internal/source"
)

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	src := "void f(boolean x) {\n  if (x) { return; } else { g(); }\n}\n"
	id := fs.AddVirtual("dir/Test.java", []byte(src))

	elseSpan := source.Span{File: id, Start: 41, End: 45}
	bag := diag.NewBag(4)
	diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.FlowUnnecessaryElse, elseSpan, "unnecessary else").
		WithNote(source.Span{File: id, Start: 31, End: 38}, "the then branch always returns").
		WithFix("remove else", diag.FixEdit{Span: elseSpan, NewText: ""}).
		Emit()
	diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevError, diag.FlowMissingReturn, source.Span{File: id, Start: 5, End: 6}, "second").Emit()

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		Max:              1,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var got DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	want := DiagnosticsOutput{
		Count: 1,
		Diagnostics: []DiagnosticJSON{{
			Severity: "WARNING",
			Code:     "FLW4003",
			Message:  "unnecessary else",
			Location: LocationJSON{File: "Test.java", StartByte: 41, EndByte: 45, StartLine: 2, StartCol: 22, EndLine: 2, EndCol: 26},
			Notes: []NoteJSON{{
				Message:  "the then branch always returns",
				Location: LocationJSON{File: "Test.java", StartByte: 31, EndByte: 38, StartLine: 2, StartCol: 12, EndLine: 2, EndCol: 19},
			}},
			Fixes: []FixJSON{{
				Title: "remove else",
				Edits: []FixEditJSON{{
					Location:    LocationJSON{File: "Test.java", StartByte: 41, EndByte: 45, StartLine: 2, StartCol: 22, EndLine: 2, EndCol: 26},
					OldText:     "else",
					BeforeLines: []string{"  if (x) { return; } else { g(); }"},
					AfterLines:  []string{"  if (x) { return; }  { g(); }"},
				}},
			}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_NoPositions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte("x"))
	bag := diag.NewBag(1)
	diag.NewReportBuilder(diag.BagReporter{Bag: bag}, diag.SevError, diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 1}, "unexpected").Emit()

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 || loc.File != "Test.java" {
		t.Fatalf("location = %+v", loc)
	}
	if out.Diagnostics[0].Notes != nil || out.Diagnostics[0].Fixes != nil {
		t.Fatalf("notes or fixes included without being asked for")
	}
}

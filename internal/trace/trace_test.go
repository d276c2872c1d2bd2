package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "unit", "debug"} {
		l, err := ParseLevel(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Fatalf("ParseLevel(%q) = %s", name, l)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("ParseLevel accepted an unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		want  []Scope
	}{
		{LevelOff, nil},
		{LevelError, []Scope{ScopeDriver, ScopePass, ScopeUnit}},
		{LevelPhase, []Scope{ScopeDriver, ScopePass}},
		{LevelUnit, []Scope{ScopeDriver, ScopePass, ScopeUnit}},
		{LevelDebug, []Scope{ScopeDriver, ScopePass, ScopeUnit, ScopeNode}},
	}
	for _, tt := range tests {
		var got []Scope
		for s := ScopeDriver; s <= ScopeNode; s++ {
			if tt.level.ShouldEmit(s) {
				got = append(got, s)
			}
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.level, diff)
		}
	}
}

func TestStreamTracer(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelUnit, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "analyse")
	_, unit := Start(ctx, ScopeUnit, "unit:Main.java#max")
	unit.WithExtra("labels", "2").End("ok")
	Point(ctx, ScopeNode, "stmt", "dropped at unit level")
	pass.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"→ analyse", "→ unit:Main.java#max", "← unit:Main.java#max (ok)", "← analyse"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
	if !strings.HasSuffix(lines[2], "{labels=2}") {
		t.Errorf("extra missing: %q", lines[2])
	}
	if unit.parentID != pass.ID() {
		t.Errorf("unit parent = %d, want %d", unit.parentID, pass.ID())
	}
}

func TestRingTracer(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: name})
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if diff := cmp.Diff([]string{"c", "d", "e"}, names); diff != "" {
		t.Fatalf("snapshot (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("dumped %d lines", n)
	}
	if !strings.Contains(buf.String(), `"name":"e"`) {
		t.Fatalf("dump lacks the newest event:\n%s", buf.String())
	}
}

func TestNew(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff: %v, enabled=%v", err, tr.Enabled())
	}

	tr, err = New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*RingTracer); !ok {
		t.Fatalf("LevelError tracer is %T, want a ring", tr)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "compile", 0).End("")
	d, ok := tr.(Dumper)
	if !ok {
		t.Fatalf("ModeBoth tracer %T cannot dump", tr)
	}
	var dump bytes.Buffer
	if err := d.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if dump.String() != buf.String() {
		t.Fatalf("ring and stream disagree:\n%s\n---\n%s", dump.String(), buf.String())
	}
}

func TestDisabledSpan(t *testing.T) {
	s := Begin(Nop, ScopeDriver, "x", 0)
	if s.ID() != 0 || s.End("") != 0 {
		t.Fatal("span of a disabled tracer is live")
	}
	s.WithExtra("k", "v")
	if ParentSpan(WithSpan(context.Background(), s)) != 0 {
		t.Fatal("disabled span became a parent")
	}
}

package bytecode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"condflow/internal/flow"
	"condflow/internal/source"
)

func TestLocalRanges(t *testing.T) {
	cs := NewCodeStream("m", 0, 2)
	cs.AddParameter(1, "a")
	scope := cs.EnterScope()
	cs.AddVisibleLocal(2, "x")
	cs.IConst(1) // 0
	cs.IStore(2) // 5
	cs.ILoad(2)  // 7
	cs.Op(OpPop) // 9
	cs.ExitLocals(scope)
	cs.Op(OpReturn) // 10
	code := finish(t, cs)

	want := []LocalRange{
		{Local: 1, Name: "a", Start: 0, End: 11},
		{Local: 2, Name: "x", Start: 7, End: 10},
	}
	if diff := cmp.Diff(want, code.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalRanges_EmptyDropped(t *testing.T) {
	cs := NewCodeStream("m", 0, 1)
	scope := cs.EnterScope()
	cs.AddVisibleLocal(1, "x")
	cs.IConst(1)
	cs.IStore(1)
	cs.ExitLocals(scope)
	cs.Op(OpReturn)
	code := finish(t, cs)
	if len(code.Locals) != 0 {
		t.Fatalf("locals = %v, want none", code.Locals)
	}
}

func TestLocalRanges_Restore(t *testing.T) {
	cs := NewCodeStream("m", 0, 2)
	cs.AddParameter(1, "a")
	cs.AddVisibleLocal(2, "x")
	cs.IConst(1)
	cs.IStore(2)
	if !cs.IsLive(2) {
		t.Fatal("x not live after store")
	}

	ledger := flow.NewLedger()
	before := ledger.Record(flow.Initial(1))
	after := ledger.Record(flow.Initial(1).Assign(2))

	cs.Op(OpNop)
	if err := ledger.Restore(cs, before); err != nil {
		t.Fatal(err)
	}
	if cs.IsLive(2) || !cs.IsLive(1) {
		t.Fatalf("after restoring the entry state: a live=%v x live=%v", cs.IsLive(1), cs.IsLive(2))
	}
	cs.Op(OpNop)
	if err := ledger.Restore(cs, after); err != nil {
		t.Fatal(err)
	}
	if !cs.IsLive(2) {
		t.Fatal("x not live after restoring the assigned state")
	}
	cs.Op(OpReturn)
	code := finish(t, cs)

	want := []LocalRange{
		{Local: 1, Name: "a", Start: 0, End: 10},
		{Local: 2, Name: "x", Start: 7, End: 8},
		{Local: 2, Name: "x", Start: 9, End: 10},
	}
	if diff := cmp.Diff(want, code.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalRanges_FollowDroppedGoto(t *testing.T) {
	cs := NewCodeStream("m", 0, 1)
	end := cs.NewLabel()
	scope := cs.EnterScope()
	cs.AddVisibleLocal(1, "x")
	cs.IConst(1)
	cs.IStore(1)
	cs.ILoad(1)
	cs.Op(OpPop)
	cs.Goto(end)
	cs.ExitLocals(scope)
	cs.Place(end)
	cs.Op(OpReturn)
	code := finish(t, cs)

	want := []LocalRange{{Local: 1, Name: "x", Start: 7, End: 10}}
	if diff := cmp.Diff(want, code.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateLastRecordedEndPC(t *testing.T) {
	cs := NewCodeStream("m", 0, 1)
	end := cs.NewLabel()
	scope := cs.EnterScope()
	cs.AddVisibleLocal(1, "x")
	cs.IConst(1)
	cs.IStore(1)
	cs.ExitLocals(scope)
	closed := cs.Position()
	cs.Op(OpNop)
	cs.Goto(end)
	cs.UpdateLastRecordedEndPC(scope, closed)
	cs.Op(OpNop)
	cs.Place(end)
	cs.Op(OpReturn)
	code := finish(t, cs)

	want := []LocalRange{{Local: 1, Name: "x", Start: 7, End: 11}}
	if diff := cmp.Diff(want, code.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestPositions(t *testing.T) {
	cs := NewCodeStream("m", 0, 0)
	end := cs.NewLabel()
	start := cs.Position()
	cs.IConst(1)
	inner := cs.Position()
	cs.IConst(2)
	cs.Op(OpIAdd)
	cs.RecordPositionsFrom(inner, 20)
	cs.Op(OpPop)
	cs.Goto(end)
	cs.RecordPositionsFrom(start, 10)
	cs.RecordPositionsFrom(cs.Position(), 99)
	cs.Place(end)
	cs.Op(OpReturn)
	code := finish(t, cs)

	want := []PositionEntry{
		{StartPC: 5, EndPC: 11, SourceStart: 20},
		{StartPC: 0, EndPC: 12, SourceStart: 10},
	}
	if diff := cmp.Diff(want, code.Positions); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	for _, tt := range []struct {
		pc   int
		want uint32
		ok   bool
	}{
		{0, 10, true},
		{6, 20, true},
		{11, 10, true},
		{12, 0, false},
	} {
		got, ok := code.SourceAt(tt.pc)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SourceAt(%d) = %d, %v; want %d, %v", tt.pc, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDisassemble(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("m.java", []byte("int m(int a) {\n  return a;\n}\n"))
	cs := NewCodeStream("m", file, 1)
	cs.AddParameter(1, "a")
	start := cs.Position()
	cs.ILoad(1)
	cs.Op(OpIReturn)
	cs.RecordPositionsFrom(start, 17)
	code := finish(t, cs)

	var buf bytes.Buffer
	if err := Disassemble(&buf, code, fs); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"method m: stack=1 locals=1 labels=0",
		"     0: iload 0",
		"     2: ireturn",
		"slot 0 [0, 3)",
		"[0, 3) 2:3",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("listing lacks %q:\n%s", want, buf.String())
		}
	}
}

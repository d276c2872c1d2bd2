package bytecode

import (
	"encoding/binary"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"condflow/internal/source"
	"condflow/internal/symbols"
)

// MethodRef is a constant pool entry naming an invoked method.
type MethodRef struct {
	Name    string
	Args    int
	Returns bool
}

// Code is the finished output of one CodeStream.
type Code struct {
	Method    string
	File      source.FileID
	Bytes     []byte
	MaxStack  int
	MaxLocals int
	Labels    int
	Pool      []MethodRef
	Positions []PositionEntry
	Locals    []LocalRange
}

// CodeStream accumulates the instructions of one method. It is owned by a
// single compilation unit.
type CodeStream struct {
	method    string
	file      source.FileID
	code      []byte
	starts    []int // pc of every instruction, ascending
	stack     int
	maxStack  int
	maxLocals int
	labels    []*Label
	placed    []*Label
	pool      []MethodRef
	positions []PositionEntry
	locals    localTable
	err       error
}

// NewCodeStream creates an empty stream for method with maxLocals slots.
func NewCodeStream(method string, file source.FileID, maxLocals int) *CodeStream {
	cs := &CodeStream{
		method:    method,
		file:      file,
		code:      make([]byte, 0, 64),
		maxLocals: maxLocals,
	}
	cs.locals.init()
	return cs
}

// Position is the pc of the next instruction.
func (cs *CodeStream) Position() int { return len(cs.code) }

// LabelCount returns how many labels were allocated so far.
func (cs *CodeStream) LabelCount() int { return len(cs.labels) }

// Err returns the first encoding error.
func (cs *CodeStream) Err() error { return cs.err }

func (cs *CodeStream) fail(err error) {
	if cs.err == nil {
		cs.err = err
	}
}

// NewLabel allocates an unplaced label.
func (cs *CodeStream) NewLabel() *Label {
	l := &Label{cs: cs, id: len(cs.labels) + 1, pos: notPlaced}
	cs.labels = append(cs.labels, l)
	return l
}

func (cs *CodeStream) emit(op Opcode, operand ...byte) int {
	pc := len(cs.code)
	cs.starts = append(cs.starts, pc)
	cs.code = append(cs.code, byte(op))
	cs.code = append(cs.code, operand...)
	cs.adjustStack(opTable[op].stack)
	return pc
}

func (cs *CodeStream) adjustStack(delta int) {
	cs.stack += delta
	if cs.stack < 0 {
		cs.fail(errors.AssertionFailedf("bytecode: %s: operand stack underflow at pc %d", cs.method, len(cs.code)))
		cs.stack = 0
	}
	if cs.stack > cs.maxStack {
		cs.maxStack = cs.stack
	}
}

// AdjustStack corrects the tracked stack depth where control flow merges
// values pushed on two paths, as in a materialised boolean.
func (cs *CodeStream) AdjustStack(delta int) { cs.adjustStack(delta) }

func (cs *CodeStream) IConst(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v)) // #nosec G115 -- two's complement encoding
	cs.emit(OpIConst, buf[:]...)
}

func (cs *CodeStream) ILoad(id symbols.LocalID) {
	cs.emit(OpILoad, cs.slot(id))
}

// IStore stores into id and opens its debug range if it was closed.
func (cs *CodeStream) IStore(id symbols.LocalID) {
	cs.emit(OpIStore, cs.slot(id))
	cs.locals.recordInitialization(id, cs.Position())
}

func (cs *CodeStream) slot(id symbols.LocalID) byte {
	s, err := safecast.Conv[uint8](id.Slot())
	if err != nil || !id.IsValid() {
		cs.fail(errors.Newf("bytecode: %s: local %d does not fit a slot operand", cs.method, id))
		return 0
	}
	return s
}

// Op emits an instruction without operands.
func (cs *CodeStream) Op(op Opcode) {
	if op.Size() != 1 {
		cs.fail(errors.AssertionFailedf("bytecode: %s needs an operand", op))
		return
	}
	cs.emit(op)
}

// Invoke calls the pool entry for ref, adding it on first use.
func (cs *CodeStream) Invoke(ref MethodRef) {
	idx := -1
	for i, r := range cs.pool {
		if r == ref {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = len(cs.pool)
		cs.pool = append(cs.pool, ref)
	}
	operand, err := safecast.Conv[uint16](idx)
	if err != nil {
		cs.fail(errors.Newf("bytecode: %s: constant pool overflow", cs.method))
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], operand)
	cs.emit(OpInvoke, buf[:]...)
	delta := -ref.Args
	if ref.Returns {
		delta++
	}
	cs.adjustStack(delta)
}

// Goto emits an unconditional jump to l.
func (cs *CodeStream) Goto(l *Label) {
	cs.Jump(OpGoto, l)
}

// Jump emits a jump instruction targeting l.
func (cs *CodeStream) Jump(op Opcode, l *Label) {
	if !op.IsJump() {
		cs.fail(errors.AssertionFailedf("bytecode: %s is not a jump", op))
		return
	}
	l = l.target()
	if l.cs != cs {
		cs.fail(errors.AssertionFailedf("bytecode: label L%d belongs to another stream", l.id))
		return
	}
	pc := cs.emit(op, 0, 0)
	if l.IsPlaced() {
		cs.patch(pc, l.pos)
		return
	}
	l.refs = append(l.refs, pc)
}

func (cs *CodeStream) patch(jumpPC, target int) {
	off, err := safecast.Conv[int16](target - jumpPC)
	if err != nil {
		cs.fail(errors.Newf("bytecode: %s: jump from %d to %d exceeds 16-bit offset", cs.method, jumpPC, target))
		return
	}
	binary.BigEndian.PutUint16(cs.code[jumpPC+1:], uint16(off)) // #nosec G115 -- two's complement encoding
}

// Place fixes l at the current position and patches every jump to it.
// When the last instruction is a GOTO to l it is dropped, and labels,
// debug ranges and positions recorded at the old position move with it.
func (cs *CodeStream) Place(l *Label) {
	if l.cs != cs {
		cs.fail(errors.AssertionFailedf("bytecode: label L%d belongs to another stream", l.id))
		return
	}
	if l.IsPlaced() {
		cs.fail(errors.AssertionFailedf("bytecode: label L%d placed twice", l.id))
		return
	}
	l.pos = cs.Position()
	if n := len(l.refs); n > 0 && cs.endsWithGotoTo(l) {
		old := l.pos
		l.refs = l.refs[:n-1]
		cs.code = cs.code[:old-OpGoto.Size()]
		cs.starts = cs.starts[:len(cs.starts)-1]
		l.pos = cs.Position()
		for _, other := range cs.placed {
			if other.pos == old {
				other.pos = l.pos
				for _, ref := range other.refs {
					cs.patch(ref, other.pos)
				}
			}
		}
		cs.locals.retarget(old, l.pos)
		cs.trimPositions(l.pos)
	}
	for _, ref := range l.refs {
		cs.patch(ref, l.pos)
	}
	cs.placed = append(cs.placed, l)
}

func (cs *CodeStream) endsWithGotoTo(l *Label) bool {
	if len(cs.starts) == 0 || len(l.refs) == 0 {
		return false
	}
	last := cs.starts[len(cs.starts)-1]
	return Opcode(cs.code[last]) == OpGoto && l.refs[len(l.refs)-1] == last
}

// Finish closes all debug ranges and returns the method code.
func (cs *CodeStream) Finish() (*Code, error) {
	cs.locals.closeAll(cs.Position())
	for _, l := range cs.labels {
		if len(l.refs) > 0 && !l.IsPlaced() {
			cs.fail(errors.AssertionFailedf("bytecode: label L%d has jumps but was never placed", l.id))
		}
	}
	if cs.err != nil {
		return nil, cs.err
	}
	return &Code{
		Method:    cs.method,
		File:      cs.file,
		Bytes:     cs.code,
		MaxStack:  cs.maxStack,
		MaxLocals: cs.maxLocals,
		Labels:    len(cs.labels),
		Pool:      cs.pool,
		Positions: cs.positions,
		Locals:    cs.locals.finished(),
	}, nil
}

package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"condflow/internal/source"
)

// Instruction is one decoded instruction.
type Instruction struct {
	PC      int
	Op      Opcode
	Operand int32 // constant, slot, pool index or absolute jump target
}

func (in Instruction) String() string {
	switch {
	case in.Op.Size() == 1:
		return in.Op.String()
	case in.Op == OpInvoke:
		return fmt.Sprintf("%s #%d", in.Op, in.Operand)
	default:
		return fmt.Sprintf("%s %d", in.Op, in.Operand)
	}
}

// Decode splits code into instructions, resolving jump offsets to absolute
// targets.
func Decode(code []byte) ([]Instruction, error) {
	var out []Instruction
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		if op >= opCount {
			return out, errors.Newf("bytecode: invalid opcode %#x at pc %d", code[pc], pc)
		}
		if pc+op.Size() > len(code) {
			return out, errors.Newf("bytecode: truncated %s at pc %d", op, pc)
		}
		in := Instruction{PC: pc, Op: op}
		operand := code[pc+1 : pc+op.Size()]
		switch {
		case op.IsJump():
			in.Operand = int32(pc) + int32(int16(binary.BigEndian.Uint16(operand))) // #nosec G115 -- offsets are signed 16-bit
		case op == OpIConst:
			in.Operand = int32(binary.BigEndian.Uint32(operand)) // #nosec G115 -- two's complement encoding
		case op == OpInvoke:
			in.Operand = int32(binary.BigEndian.Uint16(operand))
		case op == OpILoad || op == OpIStore:
			in.Operand = int32(operand[0])
		}
		out = append(out, in)
		pc += op.Size()
	}
	return out, nil
}

// Disassemble writes a listing of code. Positions are shown as line:col
// when fs is not nil.
func Disassemble(w io.Writer, code *Code, fs *source.FileSet) error {
	insns, err := Decode(code.Bytes)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "method %s: stack=%d locals=%d labels=%d\n", code.Method, code.MaxStack, code.MaxLocals, code.Labels); err != nil {
		return err
	}
	for _, in := range insns {
		if _, err := fmt.Fprintf(w, "  %4d: %s\n", in.PC, in); err != nil {
			return err
		}
	}
	if len(code.Pool) > 0 {
		fmt.Fprintln(w, "pool:")
		for i, ref := range code.Pool {
			ret := "void"
			if ref.Returns {
				ret = "int"
			}
			fmt.Fprintf(w, "  #%d %s/%d %s\n", i, ref.Name, ref.Args, ret)
		}
	}
	if len(code.Locals) > 0 {
		fmt.Fprintln(w, "locals:")
		for _, r := range code.Locals {
			fmt.Fprintf(w, "  %-8s slot %d [%d, %d)\n", r.Name, r.Local.Slot(), r.Start, r.End)
		}
	}
	if len(code.Positions) > 0 {
		fmt.Fprintln(w, "positions:")
		for _, p := range code.Positions {
			where := fmt.Sprintf("@%d", p.SourceStart)
			if fs != nil {
				lc, _ := fs.Resolve(source.Span{File: code.File, Start: p.SourceStart, End: p.SourceStart})
				where = fmt.Sprintf("%d:%d", lc.Line, lc.Col)
			}
			fmt.Fprintf(w, "  [%d, %d) %s\n", p.StartPC, p.EndPC, where)
		}
	}
	return nil
}

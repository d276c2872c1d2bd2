package bytecode

// Opcode is a single instruction opcode.
type Opcode byte

const (
	OpNop Opcode = iota
	OpIConst
	OpILoad
	OpIStore
	OpIAdd
	OpISub
	OpIMul
	OpIDiv
	OpIRem
	OpINeg
	OpDup
	OpPop
	OpInvoke
	OpIReturn
	OpReturn
	OpGoto
	OpIfEq
	OpIfNe
	OpIfICmpEq
	OpIfICmpNe
	OpIfICmpLt
	OpIfICmpGe
	OpIfICmpGt
	OpIfICmpLe

	opCount
)

type opInfo struct {
	name    string
	operand int // operand bytes
	stack   int // stack effect; OpInvoke is computed per call site
}

var opTable = [opCount]opInfo{
	OpNop:      {"nop", 0, 0},
	OpIConst:   {"iconst", 4, 1},
	OpILoad:    {"iload", 1, 1},
	OpIStore:   {"istore", 1, -1},
	OpIAdd:     {"iadd", 0, -1},
	OpISub:     {"isub", 0, -1},
	OpIMul:     {"imul", 0, -1},
	OpIDiv:     {"idiv", 0, -1},
	OpIRem:     {"irem", 0, -1},
	OpINeg:     {"ineg", 0, 0},
	OpDup:      {"dup", 0, 1},
	OpPop:      {"pop", 0, -1},
	OpInvoke:   {"invoke", 2, 0},
	OpIReturn:  {"ireturn", 0, -1},
	OpReturn:   {"return", 0, 0},
	OpGoto:     {"goto", 2, 0},
	OpIfEq:     {"ifeq", 2, -1},
	OpIfNe:     {"ifne", 2, -1},
	OpIfICmpEq: {"if_icmpeq", 2, -2},
	OpIfICmpNe: {"if_icmpne", 2, -2},
	OpIfICmpLt: {"if_icmplt", 2, -2},
	OpIfICmpGe: {"if_icmpge", 2, -2},
	OpIfICmpGt: {"if_icmpgt", 2, -2},
	OpIfICmpLe: {"if_icmple", 2, -2},
}

func (op Opcode) String() string {
	if op < opCount {
		return opTable[op].name
	}
	return "invalid"
}

// Size is the encoded length of an instruction with opcode op.
func (op Opcode) Size() int {
	if op < opCount {
		return 1 + opTable[op].operand
	}
	return 1
}

// IsJump reports whether op takes a branch offset.
func (op Opcode) IsJump() bool {
	return op >= OpGoto && op <= OpIfICmpLe
}

// IsConditionalJump reports whether op branches on a popped value.
func (op Opcode) IsConditionalJump() bool {
	return op > OpGoto && op <= OpIfICmpLe
}

// Negate returns the conditional jump taken exactly when op is not.
func (op Opcode) Negate() Opcode {
	switch op {
	case OpIfEq:
		return OpIfNe
	case OpIfNe:
		return OpIfEq
	case OpIfICmpEq:
		return OpIfICmpNe
	case OpIfICmpNe:
		return OpIfICmpEq
	case OpIfICmpLt:
		return OpIfICmpGe
	case OpIfICmpGe:
		return OpIfICmpLt
	case OpIfICmpGt:
		return OpIfICmpLe
	case OpIfICmpLe:
		return OpIfICmpGt
	}
	return op
}

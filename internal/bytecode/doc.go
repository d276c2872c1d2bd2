// Package bytecode is a small stack-machine instruction stream with forward
// labels, a pc-to-source table and local variable debug ranges.
//
// Jump operands are signed 16-bit offsets relative to the jump opcode,
// stored big endian. A label keeps the positions of the jumps that refer to
// it until it is placed, then patches them. Placing a label directly after a
// GOTO to that label removes the GOTO.
package bytecode

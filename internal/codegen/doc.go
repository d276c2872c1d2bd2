// Package codegen lowers analysed methods to bytecode.
//
// Emission reads only what analysis left in sema.Result and flow.Ledger:
// statements not marked reachable produce no code, constant conditions
// select a single arm at compile time, and boolean conditions are compiled
// into jumps without materialising a value whenever a jump will do.
package codegen

// Package flow models definite-assignment and reachability facts at a program
// point and the per-method ledger of recorded snapshots.
//
// A State is a value: every operation returns a new State and never touches
// the receiver's bit set, so a State can be recorded in a Ledger and read back
// during code generation without defensive copies.
//
// Conditions produce conditional states: a pair of projections that hold when
// the condition evaluates to true and to false. Split exposes the pair;
// Unconditional joins it back.
//
// Join points use MergeWith. A side that constant folding proved dead is
// "suppressed" and contributes nothing. MergeOptions.FakeReachable keeps the
// join of `if (true) { return; }` from being a dead end so that following
// statements are reported as dead code rather than as unreachable.
package flow

// Package sema resolves method bodies and runs definite-assignment and
// reachability analysis over them.
//
// Resolution binds names to locals, computes expression types and folds
// constants. Analysis threads a flow.State through the statements, records
// snapshots for code generation in a flow.Ledger and summarises every if
// statement in a BranchFlow. Both passes write into a Result that code
// generation later reads and never mutates.
package sema

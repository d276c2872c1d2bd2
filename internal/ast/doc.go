// Package ast defines the syntax tree of method bodies.
//
// The node set is closed: Expr and Stmt are sealed interfaces and every pass
// (resolution, flow analysis, code generation) dispatches with an exhaustive
// type switch. Nodes carry only syntax. Bindings, types, constants and flow
// summaries live in side tables owned by the pass that computed them.
package ast

// Package syntax turns source text into ast trees.
//
// The accepted language is a small Java-like subset: a file is a sequence of
// methods, each `[static] void|int|boolean name(params) { ... }`, whose
// bodies contain blocks, local declarations, expression statements, returns
// and if/else statements. Errors are reported to a diag.Reporter and the
// parser resynchronises at `;` or `}` so one file yields all its syntax
// errors in a single run.
package syntax

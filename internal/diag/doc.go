// Package diag defines the diagnostic model shared by every compiler phase.
//
// Producers (parser, resolver, flow analysis, code generation) report through
// a Reporter and never format or print anything themselves. Rendering lives
// in internal/diagfmt; the driver owns one Bag per source file.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier with a stable string form (see codes.go).
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding points at.
//   - Notes – optional secondary spans.
//   - Fixes – optional text edits, e.g. dropping an unnecessary `else`.
//
// Diagnostics are accumulated and never used as control flow: a phase keeps
// going after reporting so that one run surfaces every issue. Pipeline
// invariant violations are not diagnostics; they travel as errors and are
// converted into a single Internal diagnostic by the driver.
package diag

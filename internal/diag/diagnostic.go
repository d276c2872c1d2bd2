package diag

import (
	"condflow/internal/source"
)

// Note points at a secondary location, e.g. the declaration of a local
// that is read before assignment.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces the text under Span with NewText. An empty NewText
// deletes the span (the unnecessary-else fix).
type FixEdit struct {
	Span    source.Span
	NewText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding of a compilation phase, anchored at Primary.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// NewError builds an error without going through a Reporter; the driver
// uses it for problems found before a file has a reporter (I/O).
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Primary: primary, Message: msg}
}

// IsError reports whether d blocks code generation.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}

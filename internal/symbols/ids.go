package symbols

// LocalID identifies a local variable (parameter or declared local) of one
// method. IDs are dense and start at 1; the slot is ID-1.
type LocalID uint32

// NoLocalID marks the absence of a local reference.
const NoLocalID LocalID = 0

// IsValid reports whether the ID refers to a declared local.
func (id LocalID) IsValid() bool { return id != NoLocalID }

// Slot returns the zero-based frame slot of the local.
func (id LocalID) Slot() int { return int(id) - 1 }

// MethodID identifies a method inside one source file. IDs start at 1.
type MethodID uint32

// NoMethodID marks an unresolved call target.
const NoMethodID MethodID = 0

// IsValid reports whether the ID refers to a method.
func (id MethodID) IsValid() bool { return id != NoMethodID }

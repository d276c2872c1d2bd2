package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelError              // only dumped when a unit aborts
	LevelPhase              // driver and pass boundaries
	LevelUnit               // per-method spans
	LevelDebug              // everything
)

var levelNames = [...]string{
	LevelOff:   "off",
	LevelError: "error",
	LevelPhase: "phase",
	LevelUnit:  "unit",
	LevelDebug: "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil // #nosec G115 -- bounded by levelNames
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|unit|debug)", s)
}

// ShouldEmit reports whether events of scope are recorded at level l.
// LevelError records like LevelUnit; New keeps those events in a ring.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelError, LevelUnit:
		return scope <= ScopeUnit
	case LevelDebug:
		return true
	}
	return false
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole invocation
	ScopePass                    // parse, resolve, analyse, emit over a file
	ScopeUnit                    // one method
	ScopeNode                    // one statement
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeNode:
		return "node"
	}
	return "unknown"
}

package types

import "fmt"

// Kind enumerates the value types of the source language.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// IsValue reports whether a value of kind k can be stored in a local.
func (k Kind) IsValue() bool {
	return k == KindInt || k == KindBool
}

// Const is a compile-time constant value. The zero Const is "not a constant".
type Const struct {
	Kind Kind
	Int  int32
	Bool bool
}

// NotAConstant is returned for expressions that do not fold.
var NotAConstant = Const{}

// IntConst builds an int constant.
func IntConst(v int32) Const { return Const{Kind: KindInt, Int: v} }

// BoolConst builds a boolean constant.
func BoolConst(v bool) Const { return Const{Kind: KindBool, Bool: v} }

// IsConstant reports whether c carries a value.
func (c Const) IsConstant() bool { return c.Kind != KindInvalid }

// BoolValue returns the boolean value and whether c is a boolean constant.
func (c Const) BoolValue() (value, ok bool) {
	if c.Kind != KindBool {
		return false, false
	}
	return c.Bool, true
}

func (c Const) String() string {
	switch c.Kind {
	case KindInt:
		return fmt.Sprintf("%d", c.Int)
	case KindBool:
		return fmt.Sprintf("%t", c.Bool)
	default:
		return "<not a constant>"
	}
}

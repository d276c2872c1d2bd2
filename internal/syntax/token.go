package syntax

import "condflow/internal/source"

// Kind is the category of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit

	KwStatic
	KwVoid
	KwInt
	KwBoolean
	KwFinal
	KwIf
	KwElse
	KwReturn
	KwTrue
	KwFalse

	LParen
	RParen
	LBrace
	RBrace
	Semicolon
	Comma
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Lt
	LtEq
	Gt
	GtEq
	EqEq
	BangEq
	AndAnd
	OrOr
)

var kindText = [...]string{
	Invalid:   "invalid",
	EOF:       "end of file",
	Ident:     "identifier",
	IntLit:    "int literal",
	KwStatic:  "static",
	KwVoid:    "void",
	KwInt:     "int",
	KwBoolean: "boolean",
	KwFinal:   "final",
	KwIf:      "if",
	KwElse:    "else",
	KwReturn:  "return",
	KwTrue:    "true",
	KwFalse:   "false",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	Semicolon: ";",
	Comma:     ",",
	Assign:    "=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	Bang:      "!",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	EqEq:      "==",
	BangEq:    "!=",
	AndAnd:    "&&",
	OrOr:      "||",
}

func (k Kind) String() string {
	if int(k) < len(kindText) {
		return kindText[k]
	}
	return "?"
}

var keywords = map[string]Kind{
	"static":  KwStatic,
	"void":    KwVoid,
	"int":     KwInt,
	"boolean": KwBoolean,
	"final":   KwFinal,
	"if":      KwIf,
	"else":    KwElse,
	"return":  KwReturn,
	"true":    KwTrue,
	"false":   KwFalse,
}

// LookupKeyword returns the keyword kind for s. Keywords are case-sensitive.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}

// Token is a single significant token; whitespace and comments are skipped.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsTypeKeyword reports whether the token starts a type.
func (t Token) IsTypeKeyword() bool {
	return t.Kind == KwVoid || t.Kind == KwInt || t.Kind == KwBoolean
}

package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические и синтаксические
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnknownChar     Code = 2002
	SynExpectSemicolon Code = 2003
	SynExpectType      Code = 2004
	SynExpectIdent     Code = 2005
	SynExpectExpr      Code = 2006
	SynUnclosedBrace   Code = 2007
	SynUnclosedParen   Code = 2008
	SynBadNumber       Code = 2009

	// Семантические
	SemaInfo              Code = 3000
	SemaUnresolvedName    Code = 3001
	SemaDuplicateLocal    Code = 3002
	SemaConditionNotBool  Code = 3003
	SemaTypeMismatch      Code = 3004
	SemaUnknownMethod     Code = 3005
	SemaArityMismatch     Code = 3006
	SemaAssignToFinal     Code = 3007
	SemaVoidValue         Code = 3008
	SemaDuplicateMethod   Code = 3009
	SemaReturnValue       Code = 3010
	SemaDivisionByZero    Code = 3011
	SemaNotAStatement     Code = 3012
	SemaDuplicateParam    Code = 3013
	SemaInvalidAssignment Code = 3014

	// Анализ потока
	FlowInfo                 Code = 4000
	FlowUnreachableStatement Code = 4001
	FlowDeadCode             Code = 4002
	FlowUnnecessaryElse      Code = 4003
	FlowUninitializedLocal   Code = 4004
	FlowMissingReturn        Code = 4005

	IOLoadFileError Code = 5001

	GenCodeTooLarge Code = 6001

	// Internal marks a compilation unit aborted on a pipeline invariant violation.
	Internal Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	SynInfo:                  "Syntax information",
	SynUnexpectedToken:       "Unexpected token",
	SynUnknownChar:           "Unknown character",
	SynExpectSemicolon:       "Expected semicolon",
	SynExpectType:            "Expected type",
	SynExpectIdent:           "Expected identifier",
	SynExpectExpr:            "Expected expression",
	SynUnclosedBrace:         "Unclosed brace",
	SynUnclosedParen:         "Unclosed parenthesis",
	SynBadNumber:             "Malformed number literal",
	SemaInfo:                 "Semantic information",
	SemaUnresolvedName:       "Unresolved name",
	SemaDuplicateLocal:       "Duplicate local variable",
	SemaConditionNotBool:     "Condition is not boolean",
	SemaTypeMismatch:         "Type mismatch",
	SemaUnknownMethod:        "Unknown method",
	SemaArityMismatch:        "Wrong number of arguments",
	SemaAssignToFinal:        "Assignment to final local",
	SemaVoidValue:            "Void value used",
	SemaDuplicateMethod:      "Duplicate method",
	SemaReturnValue:          "Invalid return value",
	SemaDivisionByZero:       "Division by constant zero",
	SemaNotAStatement:        "Expression is not a statement",
	SemaDuplicateParam:       "Duplicate parameter",
	SemaInvalidAssignment:    "Invalid assignment target",
	FlowInfo:                 "Flow analysis information",
	FlowUnreachableStatement: "Unreachable statement",
	FlowDeadCode:             "Dead code",
	FlowUnnecessaryElse:      "Unnecessary else",
	FlowUninitializedLocal:   "Local may not have been initialized",
	FlowMissingReturn:        "Missing return statement",
	IOLoadFileError:          "I/O error",
	GenCodeTooLarge:          "Method code too large",
	Internal:                 "Internal compiler error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("FLW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 9000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

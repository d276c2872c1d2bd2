package sema

import (
	"fmt"

	"condflow/internal/ast"
	"condflow/internal/diag"
)

// MethodTable indexes the methods of one file by name.
type MethodTable map[string]*ast.Method

// CollectMethods builds the method table of f. A second method with the same
// name is reported and left out of the table.
func CollectMethods(f *ast.File, rep diag.Reporter) MethodTable {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	table := make(MethodTable, len(f.Methods))
	for _, m := range f.Methods {
		if prev, dup := table[m.Name]; dup {
			diag.ReportError(rep, diag.SemaDuplicateMethod, m.NameLoc,
				fmt.Sprintf("duplicate method %s", m.Name)).
				WithNote(prev.NameLoc, "previous declaration is here").
				Emit()
			continue
		}
		table[m.Name] = m
	}
	return table
}

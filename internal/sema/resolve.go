package sema

import (
	"fmt"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/source"
	"condflow/internal/symbols"
	"condflow/internal/types"
)

// Resolve binds names, types expressions and folds constants in m. It always
// returns a Result; errors are reported to rep.
func Resolve(m *ast.Method, methods MethodTable, rep diag.Reporter) *Result {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	r := &resolver{
		res:         newResult(m),
		methods:     methods,
		rep:         rep,
		initialized: make(map[symbols.LocalID]bool),
	}
	r.pushScope()
	for _, p := range m.Params {
		if _, dup := r.lookup(p.Name); dup {
			r.errorf(diag.SemaDuplicateParam, p.NameLoc, "duplicate parameter %s", p.Name)
			continue
		}
		id := r.declare(symbols.Local{Name: p.Name, Type: p.Type, Param: true, Span: p.NameLoc})
		r.res.Params = append(r.res.Params, id)
	}
	if m.Body != nil {
		r.block(m.Body)
	}
	r.popScope()
	return r.res
}

type resolver struct {
	res     *Result
	methods MethodTable
	rep     diag.Reporter
	scopes  []map[string]symbols.LocalID

	// initialized holds locals declared with an initializer; blank finals
	// may still be assigned.
	initialized map[symbols.LocalID]bool
}

func (r *resolver) pushScope() {
	r.scopes = append(r.scopes, make(map[string]symbols.LocalID))
}

func (r *resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) lookup(name string) (symbols.LocalID, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if id, ok := r.scopes[i][name]; ok {
			return id, true
		}
	}
	return symbols.NoLocalID, false
}

func (r *resolver) declare(l symbols.Local) symbols.LocalID {
	id := r.res.Locals.Declare(l)
	r.scopes[len(r.scopes)-1][l.Name] = id
	return id
}

func (r *resolver) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(r.rep, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (r *resolver) block(b *ast.Block) {
	r.pushScope()
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	r.popScope()
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		r.block(s)
	case *ast.Empty:
	case *ast.LocalDecl:
		r.localDecl(s)
	case *ast.ExprStmt:
		switch ast.Unparen(s.X).(type) {
		case *ast.Assign, *ast.Call:
		default:
			r.errorf(diag.SemaNotAStatement, s.X.Span(), "not a statement")
		}
		r.expr(s.X, true)
	case *ast.Return:
		r.ret(s)
	case *ast.If:
		r.ifStmt(s)
	default:
		panic(fmt.Sprintf("sema: unexpected statement %T", s))
	}
}

func (r *resolver) localDecl(d *ast.LocalDecl) {
	var c types.Const
	if d.Init != nil {
		t := r.expr(d.Init, false)
		r.expectType(d.Init, t, d.Type)
		c = r.res.ConstOf(d.Init)
	}
	if prev, dup := r.lookup(d.Name); dup {
		diag.ReportError(r.rep, diag.SemaDuplicateLocal, d.NameLoc,
			fmt.Sprintf("duplicate local variable %s", d.Name)).
			WithNote(r.res.Locals.Get(prev).Span, "previous declaration is here").
			Emit()
	}
	id := r.declare(symbols.Local{Name: d.Name, Type: d.Type, Final: d.Final, Span: d.NameLoc})
	r.res.Decls[d] = id
	if d.Init != nil {
		r.initialized[id] = true
	}
	if d.Final && c.IsConstant() && c.Kind == d.Type {
		r.res.Locals.SetConst(id, c)
	}
}

func (r *resolver) ret(s *ast.Return) {
	want := r.res.Method.Result
	switch {
	case s.Value == nil && want != types.KindVoid:
		r.errorf(diag.SemaReturnValue, s.Loc, "missing return value of type %s", want)
	case s.Value != nil && want == types.KindVoid:
		r.expr(s.Value, false)
		r.errorf(diag.SemaReturnValue, s.Value.Span(), "void method cannot return a value")
	case s.Value != nil:
		t := r.expr(s.Value, false)
		r.expectType(s.Value, t, want)
	}
}

// ifStmt checks that the condition is boolean, then resolves the branches.
// Each branch gets its own scope.
func (r *resolver) ifStmt(s *ast.If) {
	t := r.expr(s.Cond, false)
	if t != types.KindInvalid && t != types.KindBool {
		r.errorf(diag.SemaConditionNotBool, s.Cond.Span(), "type mismatch: cannot convert from %s to boolean", t)
	}
	r.branch(s.Then)
	if s.Else != nil {
		r.branch(s.Else)
	}
}

func (r *resolver) branch(s ast.Stmt) {
	r.pushScope()
	r.stmt(s)
	r.popScope()
}

func (r *resolver) expectType(e ast.Expr, got, want types.Kind) {
	if got == types.KindInvalid || want == types.KindInvalid || got == want {
		return
	}
	if got == types.KindVoid {
		r.errorf(diag.SemaVoidValue, e.Span(), "void value used as %s", want)
		return
	}
	r.errorf(diag.SemaTypeMismatch, e.Span(), "type mismatch: cannot convert from %s to %s", got, want)
}

// expr resolves e and returns its type. voidOK permits a void call, which is
// only legal as an expression statement.
func (r *resolver) expr(e ast.Expr, voidOK bool) types.Kind {
	t := r.typeExpr(e)
	if t == types.KindVoid && !voidOK {
		r.errorf(diag.SemaVoidValue, e.Span(), "void value cannot be used here")
		t = types.KindInvalid
	}
	r.res.Types[e] = t
	if c := r.constExpr(e); c.IsConstant() {
		r.res.Consts[e] = c
	}
	return t
}

func (r *resolver) typeExpr(e ast.Expr) types.Kind {
	switch e := e.(type) {
	case *ast.IntLit:
		return types.KindInt
	case *ast.BoolLit:
		return types.KindBool
	case *ast.Name:
		id, ok := r.lookup(e.Name)
		if !ok {
			r.errorf(diag.SemaUnresolvedName, e.Loc, "%s cannot be resolved to a variable", e.Name)
			return types.KindInvalid
		}
		r.res.Refs[e] = id
		return r.res.Locals.Get(id).Type
	case *ast.Paren:
		return r.expr(e.X, true)
	case *ast.Assign:
		return r.assign(e)
	case *ast.Unary:
		return r.unary(e)
	case *ast.Binary:
		return r.binary(e)
	case *ast.Call:
		return r.call(e)
	}
	panic(fmt.Sprintf("sema: unexpected expression %T", e))
}

func (r *resolver) assign(e *ast.Assign) types.Kind {
	target := r.expr(e.Target, false)
	value := r.expr(e.Value, false)
	if id, ok := r.res.Refs[e.Target]; ok {
		if l := r.res.Locals.Get(id); l.Final && (l.Param || r.initialized[id]) {
			r.errorf(diag.SemaAssignToFinal, e.Target.Loc, "the final local variable %s cannot be assigned", l.Name)
		}
	}
	r.expectType(e.Value, value, target)
	return target
}

func (r *resolver) unary(e *ast.Unary) types.Kind {
	t := r.expr(e.X, false)
	want := types.KindInt
	if e.Op == ast.OpNot {
		want = types.KindBool
	}
	if t != types.KindInvalid && t != want {
		r.errorf(diag.SemaTypeMismatch, e.Loc, "operator %s is undefined for the argument type %s", e.Op, t)
		return types.KindInvalid
	}
	return want
}

func (r *resolver) binary(e *ast.Binary) types.Kind {
	x := r.expr(e.X, false)
	y := r.expr(e.Y, false)
	if x == types.KindInvalid || y == types.KindInvalid {
		if e.Op.IsArithmetic() {
			return types.KindInt
		}
		return types.KindBool
	}
	var operand, result types.Kind
	switch {
	case e.Op.IsArithmetic():
		operand, result = types.KindInt, types.KindInt
	case e.Op.IsLogical():
		operand, result = types.KindBool, types.KindBool
	case e.Op == ast.OpEq || e.Op == ast.OpNe:
		operand, result = x, types.KindBool
	default:
		operand, result = types.KindInt, types.KindBool
	}
	if x != operand || y != operand {
		r.errorf(diag.SemaTypeMismatch, e.Loc, "operator %s is undefined for the argument types %s, %s", e.Op, x, y)
		return types.KindInvalid
	}
	if (e.Op == ast.OpDiv || e.Op == ast.OpRem) && isZero(r.res.ConstOf(e.Y)) {
		diag.ReportWarning(r.rep, diag.SemaDivisionByZero, e.Y.Span(), "division by zero").Emit()
	}
	return result
}

func isZero(c types.Const) bool {
	return c.Kind == types.KindInt && c.Int == 0
}

func (r *resolver) call(e *ast.Call) types.Kind {
	argTypes := make([]types.Kind, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = r.expr(a, false)
	}
	m, ok := r.methods[e.Name]
	if !ok {
		r.errorf(diag.SemaUnknownMethod, e.NameLoc, "the method %s is undefined", e.Name)
		return types.KindInvalid
	}
	r.res.Calls[e] = m
	if len(m.Params) != len(e.Args) {
		diag.ReportError(r.rep, diag.SemaArityMismatch, e.Loc,
			fmt.Sprintf("method %s expects %d argument(s), got %d", m.Name, len(m.Params), len(e.Args))).
			WithNote(m.NameLoc, "declared here").
			Emit()
		return m.Result
	}
	for i, p := range m.Params {
		r.expectType(e.Args[i], argTypes[i], p.Type)
	}
	return m.Result
}

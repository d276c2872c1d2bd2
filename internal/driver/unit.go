package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"condflow/internal/ast"
	"condflow/internal/bytecode"
	"condflow/internal/codegen"
	"condflow/internal/diag"
	"condflow/internal/flow"
	"condflow/internal/sema"
	"condflow/internal/trace"
)

// Unit is one compiled method.
type Unit struct {
	Method *ast.Method
	// Code is nil when the method has errors or the unit was aborted.
	Code *bytecode.Code
	// Result and Ledger are kept only with Options.KeepAnalysis.
	Result *sema.Result
	Ledger *flow.Ledger
	// DeadStatements counts the statements no code was generated for.
	DeadStatements int

	Cached  bool
	Aborted bool
	// Err is the internal error that aborted the unit.
	Err error

	bag *diag.Bag
}

func (c *compiler) compileUnit(ctx context.Context, j job) {
	start := time.Now()
	defer c.metrics.ObserveMethod(start)
	c.metrics.Methods.Inc()

	u := j.unit
	file := c.fs.Get(j.file.ID)
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit:"+filepath.Base(file.Path)+"#"+u.Method.Name)
	detail := "ok"
	defer func() {
		if r := recover(); r != nil {
			c.abort(ctx, u, errors.AssertionFailedf("panic: %v", r))
		}
		if u.Aborted {
			detail = "aborted"
		}
		if u.Code != nil {
			span.WithExtra("labels", strconv.Itoa(u.Code.Labels)).
				WithExtra("bytes", strconv.Itoa(len(u.Code.Bytes)))
		}
		span.End(detail)
	}()

	if !c.opts.cached() {
		c.build(ctx, j)
		return
	}
	key := unitKey(file, u.Method, j.methods, c.opts)
	if c.lookup(ctx, key, u) {
		c.metrics.CacheHits.Inc()
		detail = "cached"
		return
	}
	c.metrics.CacheMisses.Inc()
	c.build(ctx, j)
	if !u.Aborted {
		c.store(ctx, key, u)
	}
}

// build runs resolve, analysis and emission for one method.
func (c *compiler) build(ctx context.Context, j job) {
	u := j.unit
	rep := diag.BagReporter{Bag: u.bag}

	done := c.timer.Track("resolve")
	res := sema.Resolve(u.Method, j.methods, rep)
	done()

	ledger := flow.NewLedger()
	az := sema.NewAnalyzer(sema.Options{
		Reporter:       rep,
		FakeReachable:  c.opts.FakeReachable,
		ReportDeadCode: c.opts.ReportDeadCode,
	})
	done = c.timer.Track("analyse")
	_, err := az.Analyze(res, ledger)
	done()
	if err != nil {
		c.abort(ctx, u, err)
		return
	}
	u.DeadStatements = countDead(ctx, u.Method, res)
	c.metrics.DeadStatements.Add(u.DeadStatements)
	if c.opts.KeepAnalysis {
		u.Result, u.Ledger = res, ledger
	}
	if u.bag.HasErrors() {
		return
	}

	done = c.timer.Track("emit")
	code, err := codegen.EmitMethod(u.Method, res, ledger)
	done()
	switch {
	case errors.IsAssertionFailure(err):
		c.abort(ctx, u, err)
	case err != nil:
		diag.ReportError(rep, diag.GenCodeTooLarge, u.Method.NameLoc,
			fmt.Sprintf("code of method %s is too large: %v", u.Method.Name, err)).Emit()
	default:
		u.Code = code
		c.metrics.Labels.Add(code.Labels)
		c.metrics.Bytes.Add(len(code.Bytes))
	}
}

// abort abandons u after an internal invariant violation. Other units are
// not affected.
func (c *compiler) abort(ctx context.Context, u *Unit, err error) {
	u.Aborted, u.Err, u.Code = true, err, nil
	c.metrics.Aborted.Inc()
	trace.Point(ctx, trace.ScopeUnit, "abort", err.Error())
	diag.ReportError(diag.BagReporter{Bag: u.bag}, diag.Internal, u.Method.NameLoc,
		fmt.Sprintf("internal compiler error in method %s: %v", u.Method.Name, err)).Emit()
}

func (c *compiler) lookup(ctx context.Context, key uint64, u *Unit) bool {
	file, base := u.Method.Loc.File, u.Method.Loc.Start
	var payload UnitPayload
	if c.opts.Cache.get(key, &payload) {
		return payloadToUnit(&payload, u, file, base) == nil
	}
	found, err := c.opts.DiskCache.Get(key, &payload)
	if err != nil {
		trace.Point(ctx, trace.ScopeUnit, "disk cache", err.Error())
		return false
	}
	if !found {
		return false
	}
	c.opts.Cache.put(key, &payload)
	return payloadToUnit(&payload, u, file, base) == nil
}

func (c *compiler) store(ctx context.Context, key uint64, u *Unit) {
	payload := unitToPayload(u, u.Method.Loc.Start)
	c.opts.Cache.put(key, payload)
	if err := c.opts.DiskCache.Put(key, payload); err != nil {
		trace.Point(ctx, trace.ScopeUnit, "disk cache", err.Error())
	}
}

// countDead counts statements left unmarked by the analysis; each one is a
// debug-level trace point.
func countDead(ctx context.Context, m *ast.Method, res *sema.Result) int {
	if m.Body == nil {
		return 0
	}
	dead := 0
	ast.Inspect(m.Body, func(n ast.Node) bool {
		if s, ok := n.(ast.Stmt); ok && !res.IsReachable(s) {
			dead++
			sp := s.Span()
			trace.Point(ctx, trace.ScopeNode, "dead", fmt.Sprintf("%s@%d..%d", m.Name, sp.Start, sp.End))
		}
		return true
	})
	return dead
}

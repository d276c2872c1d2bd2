package sema

import "condflow/internal/diag"

// Options configures the analysis pass.
type Options struct {
	Reporter diag.Reporter
	// FakeReachable keeps code after `if (true) { return; }` nominally
	// reachable: it is reported as dead code rather than as an unreachable
	// statement.
	FakeReachable bool
	// ReportDeadCode enables warnings for branches removed by constant
	// folding.
	ReportDeadCode bool
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Reporter:       diag.NopReporter{},
		FakeReachable:  true,
		ReportDeadCode: true,
	}
}

func (o Options) reporter() diag.Reporter {
	if o.Reporter == nil {
		return diag.NopReporter{}
	}
	return o.Reporter
}

package driver

import (
	"runtime"

	"condflow/internal/observ"
)

// Options configures one Compile call.
type Options struct {
	// FakeReachable and ReportDeadCode are passed to the analysis pass.
	FakeReachable  bool
	ReportDeadCode bool

	// MaxDiagnostics limits the diagnostics kept per file; 0 means no limit.
	MaxDiagnostics   int
	WarningsAsErrors bool

	// Jobs bounds the number of methods compiled at once; 0 uses GOMAXPROCS.
	Jobs int

	// KeepAnalysis retains the analysis result and ledger of every unit.
	// Units are then never served from a cache.
	KeepAnalysis bool

	Cache     *Cache
	DiskCache *DiskCache
	Timer     *observ.Timer
	Metrics   *observ.Metrics
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		FakeReachable:  true,
		ReportDeadCode: true,
	}
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

func (o Options) cached() bool {
	return !o.KeepAnalysis && (o.Cache != nil || o.DiskCache != nil)
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"condflow/internal/driver"
	"condflow/internal/observ"
)

const defaultCacheSizeMB = 32

// settings are the compile options after merging flag defaults,
// condflow.toml and explicitly set flags, in that order.
type settings struct {
	FakeReachable    bool
	ReportDeadCode   bool
	WarningsAsErrors bool
	MaxDiagnostics   int
	Jobs             int
	Cache            bool
	CacheSizeMB      int
	DiskCache        bool
	CacheDir         string

	Quiet       bool
	Timings     bool
	MetricsPath string
}

type flagGetter interface {
	GetBool(name string) (bool, error)
	GetInt(name string) (int, error)
	GetString(name string) (string, error)
	Changed(name string) bool
}

func readSettings(flags flagGetter, cfg *loadedConfig) (settings, error) {
	var s settings
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"fake-reachable", &s.FakeReachable},
		{"dead-code", &s.ReportDeadCode},
		{"warnings-as-errors", &s.WarningsAsErrors},
		{"cache", &s.Cache},
		{"disk-cache", &s.DiskCache},
		{"quiet", &s.Quiet},
		{"timings", &s.Timings},
	} {
		v, err := flags.GetBool(f.name)
		if err != nil {
			return settings{}, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	var err error
	if s.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return settings{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.Jobs, err = flags.GetInt("jobs"); err != nil {
		return settings{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if s.MetricsPath, err = flags.GetString("metrics"); err != nil {
		return settings{}, fmt.Errorf("failed to get metrics flag: %w", err)
	}
	s.CacheSizeMB = defaultCacheSizeMB

	if cfg == nil {
		return s, nil
	}
	c := cfg.Config
	if cfg.isSet("flow", "fake_reachable") && !flags.Changed("fake-reachable") {
		s.FakeReachable = c.Flow.FakeReachable
	}
	if cfg.isSet("flow", "report_dead_code") && !flags.Changed("dead-code") {
		s.ReportDeadCode = c.Flow.ReportDeadCode
	}
	if cfg.isSet("diagnostics", "max") && !flags.Changed("max-diagnostics") {
		s.MaxDiagnostics = c.Diagnostics.Max
	}
	if cfg.isSet("diagnostics", "warnings_as_errors") && !flags.Changed("warnings-as-errors") {
		s.WarningsAsErrors = c.Diagnostics.WarningsAsErrors
	}
	if cfg.isSet("build", "jobs") && !flags.Changed("jobs") {
		s.Jobs = c.Build.Jobs
	}
	if cfg.isSet("build", "cache") && !flags.Changed("cache") {
		s.Cache = c.Build.Cache
	}
	if cfg.isSet("build", "disk_cache") && !flags.Changed("disk-cache") {
		s.DiskCache = c.Build.DiskCache
	}
	if c.Build.CacheSize > 0 {
		s.CacheSizeMB = c.Build.CacheSize
	}
	s.CacheDir = c.Build.CacheDir
	return s, nil
}

func (s settings) driverOptions() (driver.Options, error) {
	opts := driver.DefaultOptions()
	opts.FakeReachable = s.FakeReachable
	opts.ReportDeadCode = s.ReportDeadCode
	opts.WarningsAsErrors = s.WarningsAsErrors
	opts.MaxDiagnostics = s.MaxDiagnostics
	opts.Jobs = s.Jobs
	if s.Cache {
		opts.Cache = driver.NewCache(s.CacheSizeMB << 20)
	}
	if s.DiskCache {
		var err error
		if s.CacheDir != "" {
			opts.DiskCache, err = driver.NewDiskCache(s.CacheDir)
		} else {
			opts.DiskCache, err = driver.OpenDiskCache("condflow")
		}
		if err != nil {
			return driver.Options{}, fmt.Errorf("failed to open disk cache: %w", err)
		}
	}
	if s.Timings {
		opts.Timer = observ.NewTimer()
	}
	if s.MetricsPath != "" {
		opts.Metrics = observ.NewMetrics()
	}
	return opts, nil
}

// compileArgs merges the configuration and compiles args. A single "-"
// reads the source from stdin.
func compileArgs(cmd *cobra.Command, args []string, keepAnalysis bool) (*driver.Result, settings, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := loadConfig(configPath, ".")
	if err != nil {
		return nil, settings{}, err
	}
	s, err := readSettings(cmd.Root().PersistentFlags(), cfg)
	if err != nil {
		return nil, settings{}, err
	}
	opts, err := s.driverOptions()
	if err != nil {
		return nil, settings{}, err
	}
	opts.KeepAnalysis = keepAnalysis

	var res *driver.Result
	if len(args) == 1 && args[0] == "-" {
		src, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return nil, s, fmt.Errorf("failed to read stdin: %w", readErr)
		}
		res, err = driver.CompileSource(cmd.Context(), "<stdin>", src, opts)
	} else {
		res, err = driver.Compile(cmd.Context(), args, opts)
	}
	if err != nil {
		return nil, s, fmt.Errorf("compilation failed: %w", err)
	}

	if res.Aborted() > 0 {
		dumpTrace(cmd)
	}
	if s.Timings && !s.Quiet {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}
	if s.MetricsPath != "" {
		if err := writeMetrics(cmd, s.MetricsPath, opts.Metrics); err != nil {
			return nil, s, err
		}
	}
	return res, s, nil
}

func writeMetrics(cmd *cobra.Command, path string, m *observ.Metrics) error {
	if path == "-" {
		m.WritePrometheus(cmd.ErrOrStderr())
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	m.WritePrometheus(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// exitStatus maps a result to the process exit status.
func exitStatus(res *driver.Result) error {
	if res.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"condflow/internal/prof"
	"condflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "condflow",
	Short:         "Flow analysis and branch emission for a small Java-like language",
	Long:          `condflow checks definite assignment and reachability of if/else code and emits stack-machine bytecode for it`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, cleanup)
		return setupProfiling(cmd)
	},
}

// cleanups run after the command, in reverse order, whatever its outcome.
var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// exitError carries a process exit status without an error message: the
// command has already reported what went wrong.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func init() {
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")
	pf.String("metrics", "", "write Prometheus metrics to this file (- for stderr)")
	pf.String("config", "", "path to condflow.toml (default: search upwards from the working directory)")
	pf.Int("jobs", 0, "max methods compiled in parallel (0=auto)")

	pf.Bool("fake-reachable", true, "report code after a constant-true return as dead rather than unreachable")
	pf.Bool("dead-code", true, "warn about branches removed by constant conditions")
	pf.Bool("warnings-as-errors", false, "treat warnings as errors")
	pf.Bool("cache", false, "cache compiled methods in memory")
	pf.Bool("disk-cache", false, "persist compiled methods between runs")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|unit|debug)")
	pf.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the trace ring")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
}

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	err := rootCmd.Execute()
	runCleanups()
	if err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

// setupColor applies --color to every coloured writer of the process.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	enabled, err := resolveColor(mode, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	color.NoColor = !enabled
	return nil
}

func setupProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	cpuPath, err := pf.GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memPath, err := pf.GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	p, err := prof.Start(cpuPath, memPath)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() {
		if err := p.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
	})
	return nil
}

func resolveColor(mode string, tty bool) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return tty, nil
	}
	return false, fmt.Errorf("unknown color value: %s (expected auto|on|off)", mode)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

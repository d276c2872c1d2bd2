package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"condflow/internal/bytecode"
	"condflow/internal/diag"
	"condflow/internal/driver"
	"condflow/internal/source"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] <file.java|directory|->...",
	Short: "Compile methods and print their bytecode",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().String("method", "", "only print the method with this name")
	emitCmd.Flags().Bool("summary", false, "print a table of code sizes instead of listings")
}

func runEmit(cmd *cobra.Command, args []string) error {
	method, err := cmd.Flags().GetString("method")
	if err != nil {
		return fmt.Errorf("failed to get method flag: %w", err)
	}
	summary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return fmt.Errorf("failed to get summary flag: %w", err)
	}

	res, s, err := compileArgs(cmd, args, false)
	if err != nil {
		return err
	}
	if !s.Quiet {
		if out := diag.FormatShortDiagnostics(res.Diagnostics(), res.FileSet, false); out != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), out)
		}
	}
	w := cmd.OutOrStdout()
	if summary {
		renderEmitSummary(w, res, method)
	} else if err := renderListings(w, res, method); err != nil {
		return err
	}
	return exitStatus(res)
}

// selectedUnits returns the units of every file, filtered by method name
// when one is given.
func selectedUnits(res *driver.Result, method string) []fileUnit {
	var out []fileUnit
	for _, f := range res.Files {
		for _, u := range f.Units {
			if method == "" || u.Method.Name == method {
				out = append(out, fileUnit{file: f, unit: u})
			}
		}
	}
	return out
}

type fileUnit struct {
	file *driver.FileResult
	unit *driver.Unit
}

func renderListings(w io.Writer, res *driver.Result, method string) error {
	for i, fu := range selectedUnits(res, method) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if fu.unit.Code == nil {
			fmt.Fprintf(w, "method %s: no code (%s)\n", fu.unit.Method.Name, noCodeReason(fu.unit))
			continue
		}
		if err := bytecode.Disassemble(w, fu.unit.Code, res.FileSet); err != nil {
			return fmt.Errorf("failed to disassemble %s: %w", fu.unit.Method.Name, err)
		}
	}
	return nil
}

func noCodeReason(u *driver.Unit) string {
	if u.Aborted {
		return "aborted"
	}
	return "has errors"
}

func renderEmitSummary(w io.Writer, res *driver.Result, method string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Method", "Bytes", "Stack", "Locals", "Labels", "Dead", "Cached"})
	for _, fu := range selectedUnits(res, method) {
		u := fu.unit
		row := []string{relPath(res.FileSet, fu.file), u.Method.Name, "-", "-", "-", "-", strconv.Itoa(u.DeadStatements), strconv.FormatBool(u.Cached)}
		if u.Code != nil {
			row[2] = strconv.Itoa(len(u.Code.Bytes))
			row[3] = strconv.Itoa(u.Code.MaxStack)
			row[4] = strconv.Itoa(u.Code.MaxLocals)
			row[5] = strconv.Itoa(u.Code.Labels)
		}
		table.Append(row)
	}
	table.Render()
}

func relPath(fs *source.FileSet, f *driver.FileResult) string {
	if f.AST == nil {
		return f.Path
	}
	return fs.Get(f.ID).RelPath(fs.BaseDir())
}

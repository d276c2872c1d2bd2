package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"condflow/internal/ast"
	"condflow/internal/driver"
	"condflow/internal/flow"
	"condflow/internal/source"
)

var flowCmd = &cobra.Command{
	Use:   "flow [flags] <file.java|directory|->...",
	Short: "Show the flow states recorded for every if statement",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFlow,
}

func init() {
	flowCmd.Flags().String("method", "", "only show the method with this name")
	flowCmd.Flags().Bool("snapshots", false, "also list every recorded snapshot")
}

func runFlow(cmd *cobra.Command, args []string) error {
	method, err := cmd.Flags().GetString("method")
	if err != nil {
		return fmt.Errorf("failed to get method flag: %w", err)
	}
	snapshots, err := cmd.Flags().GetBool("snapshots")
	if err != nil {
		return fmt.Errorf("failed to get snapshots flag: %w", err)
	}
	res, _, err := compileArgs(cmd, args, true)
	if err != nil {
		return err
	}
	if err := renderFlow(cmd.OutOrStdout(), res, method, snapshots); err != nil {
		return err
	}
	return exitStatus(res)
}

func renderFlow(w io.Writer, res *driver.Result, method string, snapshots bool) error {
	for i, fu := range selectedUnits(res, method) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		u := fu.unit
		fmt.Fprintf(w, "method %s\n", u.Method.Name)
		if u.Result == nil || !u.Result.Analysed {
			fmt.Fprintln(w, "  not analysed")
			continue
		}
		if err := renderBranches(w, res.FileSet, u); err != nil {
			return err
		}
		if snapshots {
			renderSnapshots(w, u)
		}
		fmt.Fprintf(w, "exit: %s\n", u.Result.Exit)
	}
	return nil
}

func renderBranches(w io.Writer, fs *source.FileSet, u *driver.Unit) error {
	var ifs []*ast.If
	ast.Inspect(u.Method, func(n ast.Node) bool {
		if n, ok := n.(*ast.If); ok {
			ifs = append(ifs, n)
		}
		return true
	})
	if len(ifs) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"If", "Const", "Then Dead End", "Then Entry", "Else Entry", "Merge Exit"})
	for _, n := range ifs {
		start, _ := fs.Resolve(n.Loc)
		pos := fmt.Sprintf("%d:%d", start.Line, start.Col)
		b, ok := u.Result.Branch(n)
		if !ok {
			table.Append([]string{pos, "-", "-", "not analysed", "-", "-"})
			continue
		}
		constant := "-"
		if v, isConst := b.ConstBool(); isConst {
			constant = strconv.FormatBool(v)
		}
		row := []string{pos, constant, strconv.FormatBool(b.ThenIsDeadEnd)}
		for _, id := range []flow.SnapshotID{b.ThenEntry, b.ElseEntry, b.MergeExit} {
			cell, err := snapshotCell(u.Ledger, id)
			if err != nil {
				return err
			}
			row = append(row, cell)
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func snapshotCell(l *flow.Ledger, id flow.SnapshotID) (string, error) {
	if !id.IsValid() {
		return "-", nil
	}
	s, err := l.Lookup(id)
	if err != nil {
		return "", fmt.Errorf("inconsistent flow ledger: %w", err)
	}
	return fmt.Sprintf("#%d %s", id, s), nil
}

// renderSnapshots lists the ledger with local names instead of ids.
func renderSnapshots(w io.Writer, u *driver.Unit) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Snapshot", "Reach", "Assigned"})
	for i, s := range u.Ledger.Snapshots() {
		names := make([]string, 0, len(s.Assigned()))
		for _, id := range s.Assigned() {
			names = append(names, u.Result.Locals.Name(id))
		}
		table.Append([]string{"#" + strconv.Itoa(i), s.Reach().String(), strings.Join(names, " ")})
	}
	table.Render()
}

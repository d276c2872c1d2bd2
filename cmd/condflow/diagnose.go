package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"condflow/internal/diag"
	"condflow/internal/diagfmt"
	"condflow/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.java|directory|->...",
	Short: "Report flow diagnostics for source files",
	Long:  `Run syntax, name resolution and flow analysis on the given files, or on every *.java file within a directory`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "preview the source after applying fixes")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type diagOutput struct {
	format    string
	withNotes bool
	suggest   bool
	preview   bool
	fullPath  bool
	color     bool
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	out := diagOutput{color: !color.NoColor}
	var err error
	if out.format, err = cmd.Flags().GetString("format"); err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch out.format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format: %s", out.format)
	}
	if out.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if out.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if out.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	if out.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	res, _, err := compileArgs(cmd, args, false)
	if err != nil {
		return err
	}
	if err := renderDiagnostics(cmd.OutOrStdout(), res, out); err != nil {
		return err
	}
	return exitStatus(res)
}

func renderDiagnostics(w io.Writer, res *driver.Result, out diagOutput) error {
	pathMode := diagfmt.PathModeAuto
	if out.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := out.suggest || out.preview

	all := diag.NewBag(0)
	for _, f := range res.Files {
		all.Merge(f.Bag)
	}

	switch out.format {
	case "pretty":
		diagfmt.Pretty(w, all, res.FileSet, diagfmt.PrettyOpts{
			Color:       out.color,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   out.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: out.preview,
		})
	case "short":
		if s := diag.FormatShortDiagnostics(all.Items(), res.FileSet, out.withNotes); s != "" {
			fmt.Fprintln(w, s)
		}
	case "json":
		err := diagfmt.JSON(w, all, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     out.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  out.preview,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

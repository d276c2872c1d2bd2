package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/source"
	"condflow/internal/syntax"
)

var printCmd = &cobra.Command{
	Use:   "print [flags] <file.java|->",
	Short: "Parse a source file and print it back in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	printCmd.Flags().Int("indent", 0, "initial indentation level")
}

func runPrint(cmd *cobra.Command, args []string) error {
	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return fmt.Errorf("failed to get indent flag: %w", err)
	}

	fs := source.NewFileSet()
	var id source.FileID
	if args[0] == "-" {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		id = fs.AddVirtual("<stdin>", src)
	} else if id, err = fs.Load(args[0]); err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	bag := diag.NewBag(0)
	file := syntax.ParseFile(fs.Get(id), syntax.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() > 0 {
		bag.Sort()
		fmt.Fprintln(os.Stderr, diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	if err := printFile(cmd.OutOrStdout(), file, indent); err != nil {
		return err
	}
	if bag.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

func printFile(w io.Writer, file *ast.File, indent int) error {
	for i, m := range file.Methods {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := ast.Print(w, m, indent); err != nil {
			return fmt.Errorf("failed to print %s: %w", m.Name, err)
		}
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsmerge/internal/bundle"
	"tsmerge/internal/diag"
	"tsmerge/internal/source"
)

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [flags] <file.d.ts>...",
		Short: "Add export qualifiers to declaration files",
		Long: `Annotate marks every top-level declaration of the given declaration files
as exported. Statements already exported or marked declare are left alone.
The result goes to stdout unless --write is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnnotate,
	}
	cmd.Flags().Bool("write", false, "rewrite the files in place")
	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	files := source.NewFileSet()
	bag := diag.NewBag(256)
	reporter := bundle.FilterReporter(diag.BagReporter{Bag: bag})

	for _, path := range args {
		if !source.IsDeclarationPath(path) {
			return fmt.Errorf("%s: not a declaration file", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text, n, err := bundle.AnnotateText(cmd.Context(), files, path, string(data), reporter)
		if err != nil {
			return err
		}
		switch {
		case !write:
			fmt.Fprint(out, text)
		case n > 0:
			if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
				return err
			}
			if !quiet(cmd) {
				fmt.Fprintf(out, "%s: %d statements annotated\n", path, n)
			}
		}
	}
	if err := printDiagnostics(cmd, cmd.ErrOrStderr(), bag, files, "pretty"); err != nil {
		return err
	}
	if bag.HasErrors() {
		return &exitError{code: exitFailure, err: errors.New("declaration files have errors")}
	}
	return nil
}

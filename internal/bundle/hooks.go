package bundle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/emit"
	"tsmerge/internal/export"
	"tsmerge/internal/frontend"
	"tsmerge/internal/printer"
	"tsmerge/internal/source"
)

// HookWriteFile returns a write hook that re-parses declaration output
// printed by someone else, marks its top-level declarations as exported
// and forwards the result to next. Other files pass through unchanged.
// Syntax errors in the re-parsed text go to r.
func (b *Bundler) HookWriteFile(next emit.WriteFileFunc, r diag.Reporter) emit.WriteFileFunc {
	return func(path, text string, bom bool) error {
		if b.opts.ExportMode == export.ModeNone || !source.IsDeclarationPath(path) {
			return next(path, text, bom)
		}
		out, n, err := AnnotateText(context.Background(), source.NewFileSet(), path, text, r)
		if err != nil {
			return fmt.Errorf("annotate %s: %w", path, err)
		}
		b.log.Debug("declaration output annotated", zap.String("path", path), zap.Int("statements", n))
		return next(path, out, bom)
	}
}

// AnnotateText parses text as a standalone unit of files, annotates it in
// place and prints it back. The count of rewritten statements is returned.
func AnnotateText(ctx context.Context, files *source.FileSet, path, text string, r diag.Reporter) (string, int, error) {
	tree := ast.NewTree(ast.Hints{Nodes: uint(len(text) / 4)})
	unit, err := frontend.ParseText(ctx, tree, files, path, []byte(text), r)
	if err != nil {
		return "", 0, err
	}
	annotated, n := export.Annotate(tree, unit)
	if n == 0 {
		return text, 0, nil
	}
	return printer.Print(tree, files, annotated), n, nil
}

// ProgramFactory builds the program of one (re)build together with the
// diagnostics collected while loading it.
type ProgramFactory func(ctx context.Context) (*ast.Program, *diag.Bag, error)

// Build is a program with freshly wired passes.
type Build struct {
	Program      *ast.Program
	Diagnostics  *diag.Bag
	State        *State
	Transformers emit.Transformers
}

// HookProgramFactory wraps factory so that every program it creates gets
// its own pass state and a diagnostic set without used-before-declaration
// reports. Cycle diagnostics of the new passes land in that set.
func (b *Bundler) HookProgramFactory(factory ProgramFactory, user emit.Transformers) func(ctx context.Context) (*Build, error) {
	return func(ctx context.Context) (*Build, error) {
		prog, bag, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		if bag == nil {
			bag = diag.NewBag(256)
		}
		filtered := FilterDiagnostics(bag)
		st := b.Transformers(prog, diag.BagReporter{Bag: filtered})
		return &Build{
			Program:      prog,
			Diagnostics:  filtered,
			State:        st,
			Transformers: st.Transformers(user),
		}, nil
	}
}

// Package bundle wires unit ordering and export synthesis into the emit
// pipeline. Ordering runs as the pre-pass over the runtime units, export
// synthesis as the post-pass, in-place annotation over the type-only units.
package bundle

import (
	"context"

	"go.uber.org/zap"

	"tsmerge/internal/ast"
	"tsmerge/internal/config"
	"tsmerge/internal/diag"
	"tsmerge/internal/emit"
	"tsmerge/internal/export"
	"tsmerge/internal/order"
)

// Bundler holds the options shared by every pass of a build session.
type Bundler struct {
	opts config.Options
	log  *zap.Logger
}

// New creates a Bundler. A nil logger is replaced by a no-op one.
func New(opts config.Options, log *zap.Logger) *Bundler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bundler{opts: opts, log: log}
}

// Options returns the options the bundler was created with.
func (b *Bundler) Options() config.Options { return b.opts }

// State is the pass-scoped data of one concatenation pass. It is created
// by Transformers and must not be reused for another program.
type State struct {
	opts    config.Options
	log     *zap.Logger
	prog    *ast.Program
	r       diag.Reporter
	records *export.Records

	order     order.Result
	exports   map[string][]string
	annotated int
}

// Transformers allocates fresh pass state for prog and returns it. Cycle
// diagnostics go to r.
func (b *Bundler) Transformers(prog *ast.Program, r diag.Reporter) *State {
	return &State{
		opts:    b.opts,
		log:     b.log,
		prog:    prog,
		r:       r,
		records: export.NewRecords(),
		exports: make(map[string][]string),
	}
}

// Transformers returns the passes of s followed by the user passes.
func (s *State) Transformers(user emit.Transformers) emit.Transformers {
	return emit.Transformers{
		Before:            append([]emit.Pass{emit.PassFunc(s.orderUnits)}, user.Before...),
		After:             append([]emit.Pass{emit.PassFunc(s.synthesize)}, user.After...),
		AfterDeclarations: append([]emit.Pass{emit.PassFunc(s.annotate)}, user.AfterDeclarations...),
	}
}

// Order is the result of the last ordering pass.
func (s *State) Order() order.Result { return s.order }

// Exports maps unit paths to the names the post-pass consumed for them.
func (s *State) Exports() map[string][]string { return s.exports }

// Annotated counts statements rewritten in the declaration bundle.
func (s *State) Annotated() int { return s.annotated }

func (s *State) orderUnits(b *emit.Bundle) *emit.Bundle {
	for _, u := range b.Units {
		s.records.Record(b.Program.Tree, u)
	}
	res := order.Order(b.Program, b.Units)
	s.order = res
	switch s.opts.Cycles {
	case config.CyclesWarn:
		order.ReportCycles(b.Program, res, diag.SevWarning, s.r)
	case config.CyclesError:
		order.ReportCycles(b.Program, res, diag.SevError, s.r)
	}
	s.log.Debug("units ordered",
		zap.Int("units", len(res.Units)),
		zap.Int("edges", len(res.Edges)),
		zap.Int("cyclic", len(res.Cycles)),
	)
	return &emit.Bundle{Program: b.Program, Units: res.Units}
}

func (s *State) synthesize(b *emit.Bundle) *emit.Bundle {
	defer s.records.Clear()
	opts := s.opts.Export()
	units := make([]*ast.Unit, 0, len(b.Units))
	total := 0
	for _, u := range b.Units {
		names, ok := s.records.Take(u.Path)
		if !ok {
			units = append(units, u)
			continue
		}
		texts := make([]string, 0, len(names))
		for _, n := range names {
			texts = append(texts, n.Text)
		}
		s.exports[u.Path] = texts
		total += len(names)
		units = append(units, export.Synthesize(b.Program.Tree, u, names, opts))
	}
	s.log.Debug("exports synthesized",
		zap.Stringer("mode", opts.Mode),
		zap.Int("names", total),
	)
	return &emit.Bundle{Program: b.Program, Units: units}
}

func (s *State) annotate(b *emit.Bundle) *emit.Bundle {
	if s.opts.ExportMode == export.ModeNone {
		return b
	}
	units := make([]*ast.Unit, 0, len(b.Units))
	for _, u := range b.Units {
		out, n := export.Annotate(b.Program.Tree, u)
		s.annotated += n
		units = append(units, out)
	}
	return &emit.Bundle{Program: b.Program, Units: units, Declarations: b.Declarations}
}

// FilterDiagnostics drops the used-before-declaration diagnostics that
// reordering makes obsolete.
func FilterDiagnostics(bag *diag.Bag) *diag.Bag {
	if bag == nil {
		return nil
	}
	return bag.Without(diag.SemaUsedBeforeDeclaration)
}

// FilterReporter wraps r the same way FilterDiagnostics filters a bag.
func FilterReporter(r diag.Reporter) diag.Reporter {
	return diag.NewFilterReporter(r, diag.SemaUsedBeforeDeclaration)
}

// Report is the outcome of Emit.
type Report struct {
	*emit.Result
	Order     order.Result
	Exports   map[string][]string
	Annotated int
}

// Emit runs one pass over prog and writes through write. Diagnostics of
// the pass and of failed writes go to r.
func (b *Bundler) Emit(ctx context.Context, prog *ast.Program, write emit.WriteFileFunc, r diag.Reporter) (*Report, error) {
	st := b.Transformers(prog, r)
	opts := emit.Options{
		OutputPath:      b.opts.OutputPath,
		DeclarationPath: b.opts.DeclarationPath,
		BOM:             b.opts.BOM,
	}
	res, err := emit.Emit(ctx, prog, opts, st.Transformers(emit.Transformers{}), write, r)
	return &Report{Result: res, Order: st.order, Exports: st.exports, Annotated: st.annotated}, err
}

package order

import (
	"fmt"
	"strings"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/source"
)

// Result is the outcome of one ordering pass.
type Result struct {
	Units   []*ast.Unit
	Edges   []Edge
	Batches [][]ast.UnitID
	Cycles  []ast.UnitID
}

// Order walks units, builds the dependency graph and returns the
// concatenation order. Cyclic graphs still yield every unit once.
func Order(prog *ast.Program, units []*ast.Unit) Result {
	w := NewWalker(prog, units)
	g := w.Walk(units)
	topo := DetectCycles(units, g)
	return Result{
		Units:   Sort(units, g),
		Edges:   g.Edges(),
		Batches: topo.Batches,
		Cycles:  topo.Cycles,
	}
}

// ReportCycles reports every unit left in a cycle with the given severity.
func ReportCycles(prog *ast.Program, res Result, sev diag.Severity, r diag.Reporter) {
	if r == nil || len(res.Cycles) == 0 {
		return
	}
	units := make([]*ast.Unit, 0, len(res.Cycles))
	names := make([]string, 0, len(res.Cycles))
	for _, id := range res.Cycles {
		u := prog.Unit(id)
		if u == nil {
			continue
		}
		units = append(units, u)
		names = append(names, u.Path)
	}
	summary := strings.Join(names, " -> ")

	for _, u := range units {
		var notes []diag.Note
		for _, e := range res.Edges {
			if e.From != u.ID {
				continue
			}
			if dep := prog.Unit(e.To); dep != nil {
				notes = append(notes, diag.Note{
					Span: source.Span{File: dep.File},
					Msg:  fmt.Sprintf("needs %s first", dep.Path),
				})
			}
		}
		msg := fmt.Sprintf("unit %q participates in an initialization cycle: %s", u.Path, summary)
		r.Report(diag.PrjUnitCycle, sev, source.Span{File: u.File}, msg, notes)
	}
}

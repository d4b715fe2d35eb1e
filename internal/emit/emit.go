// Package emit is the host side of bundling: it runs the transform passes
// over the units about to be concatenated, prints them and hands the text
// to a sequential write hook.
package emit

import (
	"context"
	"strings"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/printer"
)

// Bundle is the set of units one concatenation pass works on.
type Bundle struct {
	Program *ast.Program
	Units   []*ast.Unit
	// Declarations is set for the type-only bundle.
	Declarations bool
}

// Pass is a transform hook invoked once per concatenation pass.
type Pass interface {
	TransformBundle(b *Bundle) *Bundle
}

// PassFunc adapts a function to Pass.
type PassFunc func(b *Bundle) *Bundle

func (f PassFunc) TransformBundle(b *Bundle) *Bundle { return f(b) }

// Transformers groups the passes of one build. Before runs on the runtime
// bundle ahead of After; AfterDeclarations runs on the type-only bundle.
type Transformers struct {
	Before            []Pass
	After             []Pass
	AfterDeclarations []Pass
}

// WriteFileFunc receives every output file, one at a time.
type WriteFileFunc func(path, text string, bom bool) error

// Options say where output goes.
type Options struct {
	OutputPath      string
	DeclarationPath string
	BOM             bool
}

// Output describes one file handed to the write hook.
type Output struct {
	Path    string
	Units   []*ast.Unit
	Bytes   int
	Written bool
}

// Result is what one Emit produced.
type Result struct {
	Runtime      *Bundle
	Declarations *Bundle
	Outputs      []Output
}

func apply(passes []Pass, b *Bundle) *Bundle {
	for _, p := range passes {
		if p == nil {
			continue
		}
		if next := p.TransformBundle(b); next != nil {
			b = next
		}
	}
	return b
}

// Emit runs tr over prog and writes the runtime bundle to opts.OutputPath
// and, when configured, the type-only bundle to opts.DeclarationPath.
// Write failures go to r as IOWriteFailed and do not stop later writes;
// only cancellation before a phase is returned as an error.
func Emit(ctx context.Context, prog *ast.Program, opts Options, tr Transformers, write WriteFileFunc, r diag.Reporter) (*Result, error) {
	var runtime, types []*ast.Unit
	for _, u := range prog.Units {
		if u.TypeOnly {
			types = append(types, u)
		} else {
			runtime = append(runtime, u)
		}
	}

	res := &Result{}
	sink := NewSink(write, r)
	p := printer.New(prog.Tree, prog.Files)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	b := apply(tr.Before, &Bundle{Program: prog, Units: runtime})
	b = apply(tr.After, b)
	res.Runtime = b
	if opts.OutputPath != "" {
		res.Outputs = append(res.Outputs, sink.emit(p, opts.OutputPath, b.Units, opts.BOM))
	}

	if opts.DeclarationPath == "" {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	d := apply(tr.AfterDeclarations, &Bundle{Program: prog, Units: types, Declarations: true})
	res.Declarations = d
	res.Outputs = append(res.Outputs, sink.emit(p, opts.DeclarationPath, d.Units, opts.BOM))
	return res, nil
}

// Concat prints units one after another.
func Concat(p *printer.Printer, units []*ast.Unit) string {
	var sb strings.Builder
	for _, u := range units {
		p.Unit(&sb, u)
	}
	return sb.String()
}

package frontend

import (
	"context"
	"fmt"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/source"
)

// Options tune ParseFiles.
type Options struct {
	// Jobs bounds parallel parsing; 0 means GOMAXPROCS.
	Jobs int
}

// ParseFiles parses files concurrently and lowers them, in input order, into
// one Program. Syntax errors go to r; the returned error is reserved for
// cancellation and parser failures.
func ParseFiles(ctx context.Context, fs *source.FileSet, files []source.FileID, r diag.Reporter, opts Options) (*ast.Program, error) {
	trees := make([]*sitter.Tree, len(files))
	defer func() {
		for _, t := range trees {
			if t != nil {
				t.Close()
			}
		}
	}()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, id := range files {
		f := fs.Get(id)
		if f == nil {
			return nil, fmt.Errorf("unknown file id %d", id)
		}
		g.Go(func() error {
			p := newParser(DialectOf(f.Path))
			defer p.Close()
			tree, err := p.ParseCtx(gctx, nil, f.Content)
			if err != nil {
				return fmt.Errorf("parse %s: %w", f.Path, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prog := &ast.Program{
		Tree:     ast.NewTree(ast.Hints{Nodes: uint(len(files)) << 8}),
		Files:    fs,
		Resolver: ast.NopResolver{},
	}
	for i, id := range files {
		f := fs.Get(id)
		unitID := ast.UnitID(i + 1) // #nosec G115 -- bounded by len(files)
		prog.Units = append(prog.Units, lower(prog.Tree, f, trees[i].RootNode(), unitID, r))
	}
	return prog, nil
}

// ParseText parses one in-memory text into tree as a fresh unit. It backs
// the write hook that re-derives declaration output.
func ParseText(ctx context.Context, tree *ast.Tree, fs *source.FileSet, path string, text []byte, r diag.Reporter) (*ast.Unit, error) {
	content, flags := source.Normalize(text)
	id := fs.Add(path, content, flags|source.FileVirtual)
	f := fs.Get(id)

	p := newParser(DialectOf(path))
	defer p.Close()
	st, err := p.ParseCtx(ctx, nil, f.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer st.Close()
	return lower(tree, f, st.RootNode(), ast.UnitID(1), r), nil
}

func lower(tree *ast.Tree, f *source.File, root *sitter.Node, id ast.UnitID, r diag.Reporter) *ast.Unit {
	c := &converter{tree: tree, file: f.ID, src: f.Content}
	c.reportSyntax(root, r)
	return &ast.Unit{
		ID:       id,
		Path:     f.Path,
		File:     f.ID,
		Stmts:    c.program(root),
		TypeOnly: f.IsTypeOnly(),
	}
}

package printer

import (
	"context"
	"testing"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
)

func parse(t *testing.T, path, src string) (*ast.Tree, *source.FileSet, *ast.Unit) {
	t.Helper()
	tree := ast.NewTree(ast.Hints{})
	fs := source.NewFileSet()
	unit, err := frontend.ParseText(context.Background(), tree, fs, path, []byte(src), diag.BagReporter{Bag: diag.NewBag(8)})
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	return tree, fs, unit
}

func TestPrintKeepsSourceText(t *testing.T) {
	src := "// header\nconst a = 1;\n\n/* doc */\nfunction f() {\n  return a;\n}\n// trailer\n"
	tree, fs, unit := parse(t, "a.ts", src)
	if got := Print(tree, fs, unit); got != src {
		t.Fatalf("Print =\n%q\nwant\n%q", got, src)
	}
}

func TestPrintAppendsSyntheticAfterTrailer(t *testing.T) {
	src := "const a = 1; // trailing"
	tree, fs, unit := parse(t, "a.ts", src)
	stmt := tree.NewExprStmt(tree.NewAssign(tree.NewDottedPath("NS.Sub.a"), tree.NewIdent("a")))
	list := tree.NewExportList([]string{"a", "b"})
	out := unit.WithStmts(append(append([]ast.NodeID(nil), unit.Stmts...), stmt, list))

	want := "const a = 1; // trailing\nNS.Sub.a = a;\nexport { a, b };\n"
	if got := Print(tree, fs, out); got != want {
		t.Fatalf("Print =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintAddsExportQualifier(t *testing.T) {
	src := "declare const x: number;\nclass C {}\nexport enum E { A }\n"
	tree, fs, unit := parse(t, "a.d.ts", src)
	stmts := append([]ast.NodeID(nil), unit.Stmts...)
	clone := tree.Clone(stmts[1])
	tree.Get(clone).Mods |= ast.ModExport
	stmts[1] = clone

	want := "declare const x: number;\nexport class C {}\nexport enum E { A }\n"
	if got := Print(tree, fs, unit.WithStmts(stmts)); got != want {
		t.Fatalf("Print =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintDropsHashBang(t *testing.T) {
	tree, fs, unit := parse(t, "cli.js", "#!/usr/bin/env node\nrun();\n")
	if got := Print(tree, fs, unit); got != "run();\n" {
		t.Fatalf("Print = %q", got)
	}
}

func TestNodeRendersSynthetic(t *testing.T) {
	tree, fs, _ := parse(t, "a.ts", "")
	id := tree.NewExprStmt(tree.NewAssign(tree.NewDottedPath("module.exports.x"), tree.NewIdent("x")))
	if got := New(tree, fs).Node(id); got != "module.exports.x = x;" {
		t.Fatalf("Node = %q", got)
	}
}

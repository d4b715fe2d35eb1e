package ast

import (
	"strings"

	"tsmerge/internal/source"
)

// synthetic spans point nowhere so printers render the node structurally
var noSpan = source.Span{File: source.NoFile}

func (t *Tree) NewIdent(name string) NodeID {
	return t.New(Node{Kind: ExprIdent, Span: noSpan, Mods: ModSynthetic, Text: name})
}

func (t *Tree) NewMember(x NodeID, name string) NodeID {
	return t.New(Node{Kind: ExprMember, Span: noSpan, Mods: ModSynthetic, X: x, Name: t.NewIdent(name)})
}

// NewDottedPath expands "a.b.c" into nested member accesses.
func (t *Tree) NewDottedPath(path string) NodeID {
	parts := strings.Split(path, ".")
	expr := t.NewIdent(parts[0])
	for _, p := range parts[1:] {
		expr = t.NewMember(expr, p)
	}
	return expr
}

func (t *Tree) NewAssign(lhs, rhs NodeID) NodeID {
	return t.New(Node{Kind: ExprBinary, Span: noSpan, Mods: ModSynthetic, Op: OpAssign, Text: "=", X: lhs, Y: rhs})
}

func (t *Tree) NewExprStmt(x NodeID) NodeID {
	return t.New(Node{Kind: StmtExpr, Span: noSpan, Mods: ModSynthetic, X: x})
}

// NewExportList builds `export { a, b };`.
func (t *Tree) NewExportList(names []string) NodeID {
	list := make([]NodeID, 0, len(names))
	for _, name := range names {
		list = append(list, t.NewIdent(name))
	}
	return t.New(Node{Kind: StmtExportList, Span: noSpan, Mods: ModSynthetic | ModExport, List: list})
}

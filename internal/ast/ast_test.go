package ast

import (
	"testing"

	"tsmerge/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatalf("index 0 must be reserved")
	}
	id := a.Allocate(7)
	if id != 1 || *a.Get(id) != 7 {
		t.Fatalf("Allocate returned %d", id)
	}
	if a.Get(2) != nil {
		t.Fatalf("out of range index must yield nil")
	}
}

func TestCloneOwnsSlices(t *testing.T) {
	tree := NewTree(Hints{})
	x := tree.NewIdent("x")
	block := tree.New(Node{Kind: StmtBlock, List: []NodeID{x}})
	cp := tree.Clone(block)
	if cp == block {
		t.Fatalf("clone must allocate a new node")
	}
	tree.Get(cp).List[0] = NoNodeID
	if tree.Get(block).List[0] != x {
		t.Fatalf("clone shares list storage with original")
	}
}

func TestDottedPathAndWalk(t *testing.T) {
	tree := NewTree(Hints{})
	path := tree.NewDottedPath("NS.Sub.foo")
	stmt := tree.NewExprStmt(tree.NewAssign(path, tree.NewIdent("foo")))
	tree.SetParents(stmt)

	var idents []string
	tree.Walk(stmt, func(_ NodeID, n *Node) bool {
		if n.Kind == ExprIdent {
			idents = append(idents, n.Text)
		}
		return true
	})
	if len(idents) != 4 {
		t.Fatalf("idents = %v", idents)
	}
	member := tree.Get(path)
	if member.Kind != ExprMember || tree.Get(member.Name).Text != "foo" {
		t.Fatalf("unexpected member: %+v", member)
	}
	if tree.Get(member.X).Parent != path {
		t.Fatalf("parent not set")
	}
	if !member.IsSynthetic() || member.Span.File != source.NoFile {
		t.Fatalf("built nodes must be synthetic")
	}
}

func TestProgramUnitLookup(t *testing.T) {
	prog := &Program{Units: []*Unit{{ID: 1, Path: "a.ts"}, {ID: 2, Path: "b.ts"}}}
	if prog.Unit(2).Path != "b.ts" || prog.Unit(3) != nil || prog.Unit(NoUnitID) != nil {
		t.Fatalf("Unit lookup mismatch")
	}
	prog.Units[0], prog.Units[1] = prog.Units[1], prog.Units[0]
	if prog.Unit(1).Path != "a.ts" {
		t.Fatalf("lookup must not depend on slice order")
	}
	if prog.UnitByPath("a.ts").ID != 1 {
		t.Fatalf("UnitByPath mismatch")
	}
}

func TestBinaryOp(t *testing.T) {
	cases := map[string]Op{"&&": OpAnd, "||": OpOr, "??": OpNullish, "=": OpAssign, ",": OpComma, "+=": OpOther, "+": OpOther}
	for tok, want := range cases {
		if got := BinaryOp(tok); got != want {
			t.Fatalf("BinaryOp(%q) = %d, want %d", tok, got, want)
		}
	}
	if !StmtNamespace.IsStatement() || DeclVar.IsStatement() || ExprIdent.IsStatement() {
		t.Fatalf("IsStatement mismatch")
	}
}

package export

import (
	"tsmerge/internal/ast"
	"tsmerge/internal/classify"
)

// Annotatable reports whether stmt gets an export qualifier in place.
func Annotatable(tree *ast.Tree, stmt ast.NodeID) bool {
	n := tree.Get(stmt)
	if n == nil || n.Mods.Has(ast.ModDeclare) || n.Mods.Has(ast.ModExport) {
		return false
	}
	switch n.Kind {
	case ast.StmtVar:
		return classify.AllConst(tree, stmt)
	case ast.StmtEnum, ast.StmtNamespace, ast.StmtImportAlias, ast.StmtClass, ast.StmtFunc:
		return true
	}
	return false
}

// Annotate marks every qualifying top-level statement of a type-only unit
// as exported. Marked statements are clones, so the input tree stays valid
// for other passes. The count of rewritten statements is returned.
func Annotate(tree *ast.Tree, unit *ast.Unit) (*ast.Unit, int) {
	var stmts []ast.NodeID
	changed := 0
	for i, id := range unit.Stmts {
		if !Annotatable(tree, id) {
			continue
		}
		if stmts == nil {
			stmts = append([]ast.NodeID(nil), unit.Stmts...)
		}
		clone := tree.Clone(id)
		tree.Get(clone).Mods |= ast.ModExport
		stmts[i] = clone
		changed++
	}
	if changed == 0 {
		return unit, 0
	}
	return unit.WithStmts(stmts), changed
}

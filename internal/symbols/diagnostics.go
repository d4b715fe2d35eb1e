package symbols

import (
	"fmt"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
)

// checkUsedBeforeDeclaration reports eager top-level reads of global
// block-scoped bindings whose every runtime declaration comes later in
// program order.
func (b *binder) checkUsedBeforeDeclaration(ref *ast.Node, id SymbolID) {
	if b.fnDepth > 0 || b.unit.TypeOnly {
		return
	}
	sym := b.t.Symbol(id)
	if sym.Scope != b.t.global || !sym.Kind.BlockScoped() {
		return
	}
	var first *ast.Node
	for _, d := range sym.Decls {
		if b.ambient[d.Decl] {
			continue
		}
		decl := b.tree.Get(d.Decl)
		if !b.after(d.Unit, decl, ref) {
			return
		}
		if first == nil {
			first = decl
		}
	}
	if first == nil {
		return
	}
	var msg string
	switch sym.Kind {
	case SymbolClass:
		msg = fmt.Sprintf("Class '%s' used before its declaration.", sym.Name)
	case SymbolEnum:
		msg = fmt.Sprintf("Enum '%s' used before its declaration.", sym.Name)
	default:
		msg = fmt.Sprintf("Block-scoped variable '%s' used before its declaration.", sym.Name)
	}
	diag.ReportError(b.r, diag.SemaUsedBeforeDeclaration, ref.Span, msg).
		WithNote(first.Span, fmt.Sprintf("'%s' is declared here.", sym.Name)).
		Emit()
}

// after reports whether decl in unit runs after ref in the current unit.
func (b *binder) after(unit ast.UnitID, decl, ref *ast.Node) bool {
	if unit != b.unit.ID {
		return b.order[unit] > b.order[b.unit.ID]
	}
	return decl.Span.Start > ref.Span.Start
}

// Package classify decides which top-level statements bind a name that
// survives concatenation and can be exported.
package classify

import (
	"tsmerge/internal/ast"
)

// Kind is the flavour of an exportable declaration.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindConst
	KindClass
	KindFunction
	KindNamespace
	KindAlias
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindNamespace:
		return "namespace"
	case KindAlias:
		return "alias"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Name is one exportable top-level binding.
type Name struct {
	Text string
	Kind Kind
	// Decl is the defining node: the declarator or binding element for
	// constants, the statement otherwise.
	Decl ast.NodeID
}

// Names lists the exportable names of unit in statement order. Type-only
// units export nothing.
func Names(tree *ast.Tree, unit *ast.Unit) []Name {
	if unit == nil || unit.TypeOnly {
		return nil
	}
	var out []Name
	for _, stmt := range unit.Stmts {
		out = append(out, Statement(tree, stmt)...)
	}
	return out
}

// Statement classifies one top-level statement.
func Statement(tree *ast.Tree, id ast.NodeID) []Name {
	n := tree.Get(id)
	if n == nil || n.Mods.Has(ast.ModDeclare) {
		return nil
	}
	switch n.Kind {
	case ast.StmtVar:
		if !AllConst(tree, id) {
			return nil
		}
		var out []Name
		for _, decl := range n.List {
			out = appendBindings(tree, out, tree.Get(decl).Name, decl)
		}
		return out
	case ast.StmtClass:
		return named(tree, id, KindClass)
	case ast.StmtFunc:
		return named(tree, id, KindFunction)
	case ast.StmtNamespace:
		return named(tree, id, KindNamespace)
	case ast.StmtImportAlias:
		return named(tree, id, KindAlias)
	case ast.StmtEnum:
		// const enums are inlined and leave no runtime object
		if n.Mods.Has(ast.ModConst) {
			return nil
		}
		return named(tree, id, KindEnum)
	}
	return nil
}

// AllConst reports whether a variable statement declares only constants.
// Declarator-level flags are not tracked: the statement keyword decides.
func AllConst(tree *ast.Tree, id ast.NodeID) bool {
	n := tree.Get(id)
	return n != nil && n.Kind == ast.StmtVar && n.Mods.Has(ast.ModConst) && len(n.List) > 0
}

func named(tree *ast.Tree, id ast.NodeID, kind Kind) []Name {
	text := tree.NameText(id)
	if text == "" {
		return nil
	}
	return []Name{{Text: text, Kind: kind, Decl: id}}
}

// appendBindings expands a binding target. Omitted array slots carry no
// binding element and are skipped.
func appendBindings(tree *ast.Tree, out []Name, target, decl ast.NodeID) []Name {
	n := tree.Get(target)
	if n == nil {
		return out
	}
	switch n.Kind {
	case ast.ExprIdent:
		return append(out, Name{Text: n.Text, Kind: KindConst, Decl: decl})
	case ast.PatObject, ast.PatArray:
		for _, elem := range n.List {
			e := tree.Get(elem)
			if e == nil || e.Kind != ast.BindingElem {
				continue
			}
			out = appendBindings(tree, out, e.Name, elem)
		}
	}
	return out
}

package symbols

import (
	"strings"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
)

// binder walks a program twice: first every unit's top-level declarations
// land in the global scope, then references are resolved unit by unit.
type binder struct {
	t       *Table
	tree    *ast.Tree
	unit    *ast.Unit
	order   map[ast.UnitID]int
	ambient map[ast.NodeID]bool
	// nsScopes holds the body scope of each namespace declaration.
	nsScopes map[ast.NodeID]ScopeID
	fnDepth  int
	r        diag.Reporter
}

// Bind builds the symbol table for prog and reports used-before-declaration
// and redeclaration diagnostics to r (which may be nil).
func Bind(prog *ast.Program, r diag.Reporter) *Table {
	b := &binder{
		t:        NewTable(Hints{}),
		tree:     prog.Tree,
		order:    make(map[ast.UnitID]int, len(prog.Units)),
		ambient:  make(map[ast.NodeID]bool),
		nsScopes: make(map[ast.NodeID]ScopeID),
		r:        r,
	}
	for i, u := range prog.Units {
		b.order[u.ID] = i
	}
	for _, u := range prog.Units {
		b.unit = u
		b.declareStmts(u.Stmts, b.t.global)
	}
	for _, u := range prog.Units {
		b.unit = u
		b.fnDepth = 0
		b.walkStmts(u.Stmts, b.t.global)
	}
	return b.t
}

func (b *binder) ref(decl ast.NodeID) ast.DeclRef {
	return ast.DeclRef{Decl: decl, Unit: b.unit.ID}
}

func (b *binder) hoistScope(scope ScopeID) ScopeID {
	for id := scope; id.IsValid(); id = b.t.Scope(id).Parent {
		if b.t.Scope(id).hoists() {
			return id
		}
	}
	return b.t.global
}

// declare records a declaration and reports conflicting block-scoped
// redeclarations in the same scope.
func (b *binder) declare(scope ScopeID, name string, kind SymbolKind, decl ast.NodeID, ambient bool) SymbolID {
	if name == "" {
		return NoSymbolID
	}
	ambient = ambient || b.unit.TypeOnly
	if ambient {
		b.ambient[decl] = true
	}
	if existing, ok := b.t.Scope(scope).NameIndex[name]; ok && !ambient {
		b.checkRedeclare(b.t.Symbol(existing), kind, decl)
	}
	return b.t.declare(scope, name, kind, b.ref(decl))
}

func (b *binder) checkRedeclare(sym *Symbol, kind SymbolKind, decl ast.NodeID) {
	conflicting := func(k SymbolKind) bool {
		return k == SymbolLet || k == SymbolConst || k == SymbolClass
	}
	if kind == SymbolNamespace || sym.Kind == SymbolNamespace {
		return
	}
	if !conflicting(kind) && !conflicting(sym.Kind) {
		return
	}
	for _, prev := range sym.Decls {
		if b.ambient[prev.Decl] {
			continue
		}
		first := b.tree.Get(prev.Decl)
		diag.ReportError(b.r, diag.SemaRedeclaredBlockScoped, b.tree.Get(decl).Span,
			"Cannot redeclare block-scoped variable '"+sym.Name+"'.").
			WithNote(first.Span, "'"+sym.Name+"' was also declared here.").
			Emit()
		return
	}
}

func varKind(mods ast.Mods) SymbolKind {
	switch {
	case mods.Has(ast.ModConst):
		return SymbolConst
	case mods.Has(ast.ModLet):
		return SymbolLet
	}
	return SymbolVar
}

func (b *binder) declareStmts(stmts []ast.NodeID, scope ScopeID) {
	for _, id := range stmts {
		b.declareStmt(id, scope)
	}
	if b.t.Scope(scope).hoists() {
		for _, id := range stmts {
			b.hoistNested(id, scope)
		}
	}
}

// exportTarget returns the namespace symbol an exported statement in scope
// should be visible through.
func (b *binder) exportTarget(scope ScopeID, n *ast.Node) SymbolID {
	sc := b.t.Scope(scope)
	if sc.Kind != ScopeNamespace || !n.Mods.Has(ast.ModExport) {
		return NoSymbolID
	}
	return sc.Container
}

func (b *binder) declareStmt(id ast.NodeID, scope ScopeID) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	ambient := n.Mods.Has(ast.ModDeclare)
	export := b.exportTarget(scope, n)
	switch n.Kind {
	case ast.StmtVar:
		kind := varKind(n.Mods)
		target := scope
		if kind == SymbolVar {
			if !b.t.Scope(scope).hoists() {
				return
			}
			target = b.hoistScope(scope)
		}
		for _, decl := range n.List {
			b.declareVar(decl, target, kind, export, ambient)
		}
	case ast.StmtFunc:
		sym := b.declare(scope, b.tree.NameText(id), SymbolFunction, id, ambient)
		b.t.addMember(export, b.tree.NameText(id), sym)
	case ast.StmtClass:
		sym := b.declare(scope, b.tree.NameText(id), SymbolClass, id, ambient)
		b.t.addMember(export, b.tree.NameText(id), sym)
		b.declareStatics(sym, n)
	case ast.StmtEnum:
		sym := b.declare(scope, b.tree.NameText(id), SymbolEnum, id, ambient)
		b.t.addMember(export, b.tree.NameText(id), sym)
		for _, m := range n.List {
			b.t.memberSymbol(sym, propertyKey(b.tree, b.tree.Get(m).Name), SymbolMember, b.ref(m))
		}
	case ast.StmtNamespace:
		b.declareNamespace(id, n, scope, export, ambient)
	case ast.StmtImportAlias:
		sym := b.declare(scope, b.tree.NameText(id), SymbolAlias, id, ambient)
		b.t.addMember(export, b.tree.NameText(id), sym)
	}
}

func (b *binder) declareVar(declID ast.NodeID, scope ScopeID, kind SymbolKind, export SymbolID, ambient bool) {
	decl := b.tree.Get(declID)
	target := b.tree.Get(decl.Name)
	if target == nil {
		return
	}
	if target.Kind == ast.ExprIdent {
		sym := b.declare(scope, target.Text, kind, declID, ambient)
		b.t.addMember(export, target.Text, sym)
		b.declareObjectMembers(sym, decl.Init)
		return
	}
	b.declarePattern(decl.Name, scope, kind, export, ambient)
}

// declarePattern declares every identifier bound by a destructuring
// pattern; each binding element is its own declaration site.
func (b *binder) declarePattern(id ast.NodeID, scope ScopeID, kind SymbolKind, export SymbolID, ambient bool) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.PatObject, ast.PatArray:
		for _, elem := range n.List {
			e := b.tree.Get(elem)
			if e == nil || e.Kind != ast.BindingElem {
				continue
			}
			if t := b.tree.Get(e.Name); t != nil && t.Kind == ast.ExprIdent {
				sym := b.declare(scope, t.Text, kind, elem, ambient)
				b.t.addMember(export, t.Text, sym)
				continue
			}
			b.declarePattern(e.Name, scope, kind, export, ambient)
		}
	case ast.ExprIdent:
		sym := b.declare(scope, n.Text, kind, id, ambient)
		b.t.addMember(export, n.Text, sym)
	}
}

func (b *binder) declareStatics(class SymbolID, n *ast.Node) {
	for _, m := range n.List {
		member := b.tree.Get(m)
		if !member.Mods.Has(ast.ModStatic) {
			continue
		}
		switch member.Kind {
		case ast.MemberProp, ast.MemberMethod:
			b.t.memberSymbol(class, propertyKey(b.tree, member.Name), SymbolMember, b.ref(m))
		}
	}
}

func (b *binder) declareObjectMembers(owner SymbolID, init ast.NodeID) {
	obj := b.tree.Get(unwrap(b.tree, init))
	if obj == nil || obj.Kind != ast.ExprObject {
		return
	}
	for _, p := range obj.List {
		prop := b.tree.Get(p)
		switch prop.Kind {
		case ast.PropAssign, ast.PropShorthand, ast.MemberMethod:
			b.t.memberSymbol(owner, propertyKey(b.tree, prop.Name), SymbolMember, b.ref(p))
		}
	}
}

func (b *binder) declareNamespace(id ast.NodeID, n *ast.Node, scope ScopeID, export SymbolID, ambient bool) {
	name := n.Text
	if name == "" {
		// module "name" declarations bind nothing in scope
		return
	}
	parts := strings.Split(name, ".")
	sym := b.declare(scope, parts[0], SymbolNamespace, id, ambient)
	b.t.addMember(export, parts[0], sym)
	inner := b.t.newScope(ScopeNamespace, scope, id)
	b.t.Scope(inner).Container = sym
	for _, part := range parts[1:] {
		sym = b.t.memberSymbol(sym, part, SymbolNamespace, b.ref(id))
		inner = b.t.newScope(ScopeNamespace, inner, id)
		b.t.Scope(inner).Container = sym
	}
	b.nsScopes[id] = inner
	if body := b.tree.Get(n.Body); body != nil {
		b.declareStmts(body.List, inner)
	}
}

// hoistNested declares var bindings found in nested statement bodies.
func (b *binder) hoistNested(id ast.NodeID, hoist ScopeID) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	visit := func(child ast.NodeID) {
		c := b.tree.Get(child)
		if c == nil {
			return
		}
		if c.Kind == ast.StmtVar && varKind(c.Mods) == SymbolVar {
			for _, decl := range c.List {
				b.declareVar(decl, hoist, SymbolVar, NoSymbolID, c.Mods.Has(ast.ModDeclare))
			}
			return
		}
		b.hoistNested(child, hoist)
	}
	switch n.Kind {
	case ast.StmtBlock, ast.CaseClause, ast.DefaultClause:
		for _, s := range n.List {
			visit(s)
		}
	case ast.StmtIf:
		visit(n.Body)
		visit(n.Else)
	case ast.StmtFor, ast.StmtForIn:
		visit(n.Init)
		visit(n.Body)
	case ast.StmtDo, ast.StmtWhile, ast.StmtWith, ast.StmtLabeled, ast.CatchClause:
		visit(n.Body)
	case ast.StmtSwitch:
		for _, s := range n.List {
			b.hoistNested(s, hoist)
		}
	case ast.StmtTry:
		visit(n.Body)
		b.hoistNested(n.X, hoist)
		visit(n.Finally)
	}
}

// propertyKey returns the static name of a property key node.
func propertyKey(tree *ast.Tree, id ast.NodeID) string {
	n := tree.Get(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.ExprIdent:
		return n.Text
	case ast.ExprLit:
		if len(n.Text) >= 2 && strings.ContainsRune("\"'`", rune(n.Text[0])) {
			return n.Text[1 : len(n.Text)-1]
		}
		return n.Text
	}
	return ""
}

// unwrap strips parentheses and type assertions.
func unwrap(tree *ast.Tree, id ast.NodeID) ast.NodeID {
	for {
		n := tree.Get(id)
		if n == nil || (n.Kind != ast.ExprParen && n.Kind != ast.ExprAssert) {
			return id
		}
		id = n.X
	}
}

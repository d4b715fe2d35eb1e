package symbols

import (
	"tsmerge/internal/ast"
)

func (b *binder) walkStmts(stmts []ast.NodeID, scope ScopeID) {
	for _, id := range stmts {
		b.walkStmt(id, scope)
	}
}

func (b *binder) blockScope(stmts []ast.NodeID, parent ScopeID, owner ast.NodeID) ScopeID {
	scope := b.t.newScope(ScopeBlock, parent, owner)
	b.declareStmts(stmts, scope)
	return scope
}

func (b *binder) walkStmt(id ast.NodeID, scope ScopeID) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.StmtVar:
		for _, declID := range n.List {
			decl := b.tree.Get(declID)
			b.walkPattern(decl.Name, scope)
			b.walkExpr(decl.Init, scope)
		}
	case ast.StmtFunc:
		b.walkFunction(id, scope)
	case ast.StmtClass:
		b.walkClass(id, scope)
	case ast.StmtEnum:
		enum := b.t.newScope(ScopeEnum, scope, id)
		b.t.Scope(enum).Container = b.t.lookup(scope, b.tree.NameText(id))
		for _, m := range n.List {
			b.walkExpr(b.tree.Get(m).Init, enum)
		}
	case ast.StmtNamespace:
		inner, ok := b.nsScopes[id]
		if !ok {
			return
		}
		if body := b.tree.Get(n.Body); body != nil {
			b.walkStmts(body.List, inner)
		}
	case ast.StmtImportAlias:
		b.walkExpr(n.X, scope)
	case ast.StmtExpr, ast.StmtReturn, ast.StmtThrow:
		b.walkExpr(n.X, scope)
	case ast.StmtBlock:
		b.walkStmts(n.List, b.blockScope(n.List, scope, id))
	case ast.StmtIf:
		b.walkExpr(n.X, scope)
		b.walkStmt(n.Body, scope)
		b.walkStmt(n.Else, scope)
	case ast.StmtDo, ast.StmtWhile, ast.StmtWith:
		b.walkExpr(n.X, scope)
		b.walkStmt(n.Body, scope)
	case ast.StmtFor, ast.StmtForIn:
		loop := b.t.newScope(ScopeBlock, scope, id)
		if init := b.tree.Get(n.Init); init != nil && init.Kind == ast.StmtVar {
			b.declareStmt(n.Init, loop)
			b.walkStmt(n.Init, loop)
		} else {
			b.walkExpr(n.Init, loop)
		}
		b.walkExpr(n.X, loop)
		b.walkExpr(n.Y, loop)
		b.walkStmt(n.Body, loop)
	case ast.StmtSwitch:
		b.walkExpr(n.X, scope)
		cases := b.t.newScope(ScopeBlock, scope, id)
		for _, c := range n.List {
			b.declareStmts(b.tree.Get(c).List, cases)
		}
		for _, c := range n.List {
			clause := b.tree.Get(c)
			b.walkExpr(clause.X, cases)
			b.walkStmts(clause.List, cases)
		}
	case ast.StmtLabeled:
		b.walkStmt(n.Body, scope)
	case ast.StmtTry:
		b.walkStmt(n.Body, scope)
		if catch := b.tree.Get(n.X); catch != nil {
			cs := b.t.newScope(ScopeBlock, scope, n.X)
			b.declarePattern(catch.Name, cs, SymbolLet, NoSymbolID, false)
			b.walkPattern(catch.Name, cs)
			b.walkStmt(catch.Body, cs)
		}
		b.walkStmt(n.Finally, scope)
	case ast.StmtExportList:
		for _, name := range n.List {
			b.walkExpr(name, scope)
		}
	}
}

// walkPattern visits the default values of a binding pattern; the bound
// names themselves are not references.
func (b *binder) walkPattern(id ast.NodeID, scope ScopeID) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.PatObject, ast.PatArray:
		for _, elem := range n.List {
			b.walkPattern(elem, scope)
		}
	case ast.BindingElem:
		b.walkPattern(n.Name, scope)
		b.walkExpr(n.Init, scope)
	}
}

func (b *binder) walkFunction(id ast.NodeID, outer ScopeID) {
	n := b.tree.Get(id)
	for _, d := range n.Decorators {
		b.walkExpr(d, outer)
	}
	for _, p := range n.Params {
		for _, d := range b.tree.Get(p).Decorators {
			b.walkExpr(d, outer)
		}
	}
	scope := b.t.newScope(ScopeFunction, outer, id)
	if n.Kind == ast.ExprFunc {
		b.declare(scope, b.tree.NameText(id), SymbolFunction, id, false)
	}
	for _, p := range n.Params {
		b.declarePattern(b.tree.Get(p).Name, scope, SymbolParam, NoSymbolID, false)
	}
	body := b.tree.Get(n.Body)
	isBlock := body != nil && body.Kind == ast.StmtBlock
	if isBlock {
		b.declareStmts(body.List, scope)
	}
	b.fnDepth++
	defer func() { b.fnDepth-- }()
	for _, p := range n.Params {
		param := b.tree.Get(p)
		b.walkPattern(param.Name, scope)
		b.walkExpr(param.Init, scope)
	}
	if isBlock {
		b.walkStmts(body.List, scope)
		return
	}
	b.walkExpr(n.Body, scope)
}

func (b *binder) walkClass(id ast.NodeID, scope ScopeID) {
	n := b.tree.Get(id)
	for _, d := range n.Decorators {
		b.walkExpr(d, scope)
	}
	b.walkExpr(n.X, scope)
	inner := scope
	if n.Kind == ast.ExprClass && b.tree.NameText(id) != "" {
		inner = b.t.newScope(ScopeClass, scope, id)
		b.declare(inner, b.tree.NameText(id), SymbolClass, id, false)
	}
	for _, m := range n.List {
		member := b.tree.Get(m)
		for _, d := range member.Decorators {
			b.walkExpr(d, inner)
		}
		switch member.Kind {
		case ast.MemberCtor, ast.MemberMethod:
			b.walkFunction(m, inner)
		case ast.MemberProp:
			if member.Mods.Has(ast.ModStatic) {
				b.walkExpr(member.Init, inner)
				continue
			}
			b.fnDepth++
			b.walkExpr(member.Init, inner)
			b.fnDepth--
		case ast.MemberStaticBlock:
			static := b.t.newScope(ScopeFunction, inner, m)
			if body := b.tree.Get(member.Body); body != nil {
				b.declareStmts(body.List, static)
				b.walkStmts(body.List, static)
			}
		}
	}
}

func (b *binder) walkExpr(id ast.NodeID, scope ScopeID) {
	n := b.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.ExprIdent:
		b.bindRef(id, n, b.t.lookup(scope, n.Text))
	case ast.ExprMember:
		b.walkExpr(n.X, scope)
		b.bindMember(id, n)
	case ast.ExprFunc, ast.ExprArrow:
		b.walkFunction(id, scope)
	case ast.ExprClass:
		b.walkClass(id, scope)
	case ast.ExprObject:
		for _, p := range n.List {
			prop := b.tree.Get(p)
			switch prop.Kind {
			case ast.PropAssign:
				b.walkExpr(prop.Init, scope)
			case ast.PropShorthand:
				b.walkExpr(prop.Name, scope)
				b.walkExpr(prop.Init, scope)
			case ast.MemberMethod:
				b.walkFunction(p, scope)
			default:
				b.walkExpr(p, scope)
			}
		}
	case ast.PatObject, ast.PatArray:
		// destructuring assignment: targets are references
		for _, elem := range n.List {
			b.walkExpr(elem, scope)
		}
	case ast.BindingElem:
		b.walkExpr(n.Name, scope)
		b.walkExpr(n.Init, scope)
	case ast.PropAssign:
		b.walkExpr(n.Init, scope)
	case ast.ExternalRef, ast.ExprLit, ast.ExprMeta, ast.ExprOmitted:
	default:
		b.walkExpr(n.X, scope)
		b.walkExpr(n.Y, scope)
		b.walkExpr(n.Z, scope)
		b.walkExpr(n.Init, scope)
		for _, child := range n.List {
			b.walkExpr(child, scope)
		}
	}
}

// bindMember resolves a property access through the members of whatever
// its object resolved to.
func (b *binder) bindMember(id ast.NodeID, n *ast.Node) {
	name := b.tree.Get(n.Name)
	if name == nil {
		return
	}
	var found []SymbolID
	for _, owner := range b.t.refs[unwrap(b.tree, n.X)] {
		if m := b.t.Symbol(owner).member(name.Text); m.IsValid() {
			found = append(found, m)
		}
	}
	if len(found) > 0 {
		b.t.refs[id] = found
	}
}

func (b *binder) bindRef(id ast.NodeID, n *ast.Node, sym SymbolID) {
	if !sym.IsValid() {
		return
	}
	b.t.refs[id] = []SymbolID{sym}
	b.checkUsedBeforeDeclaration(n, sym)
}

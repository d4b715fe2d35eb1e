package order

import (
	"tsmerge/internal/ast"
)

// Walker builds the dependency graph for one pass. It is single use: all
// depth markers and body caches belong to the pass that created it.
type Walker struct {
	tree  *ast.Tree
	res   ast.Resolver
	units map[ast.UnitID]*ast.Unit
	graph *Graph

	// depths holds the highest eager depth each declaration was visited at.
	depths map[ast.NodeID]int
	// bodies caches the return expressions of function bodies already traversed.
	bodies map[ast.NodeID]*[]ast.NodeID

	current ast.UnitID
	returns *[]ast.NodeID
}

// NewWalker prepares a walk over units of prog. References into units that
// are not part of the list are ignored.
func NewWalker(prog *ast.Program, units []*ast.Unit) *Walker {
	res := prog.Resolver
	if res == nil {
		res = ast.NopResolver{}
	}
	w := &Walker{
		tree:   prog.Tree,
		res:    res,
		units:  make(map[ast.UnitID]*ast.Unit, len(units)),
		graph:  NewGraph(),
		depths: make(map[ast.NodeID]int),
		bodies: make(map[ast.NodeID]*[]ast.NodeID),
	}
	for _, u := range units {
		w.units[u.ID] = u
	}
	return w
}

// Graph returns the edges discovered so far.
func (w *Walker) Graph() *Graph { return w.graph }

// Depth returns the highest depth decl was visited at, or -1.
func (w *Walker) Depth(decl ast.NodeID) int {
	if d, ok := w.depths[decl]; ok {
		return d
	}
	return -1
}

// Walk traverses every non type-only unit in the given order.
func (w *Walker) Walk(units []*ast.Unit) *Graph {
	for _, u := range units {
		if u.TypeOnly {
			continue
		}
		w.WalkUnit(u)
	}
	return w.graph
}

// WalkUnit traverses the top-level statements of one unit.
func (w *Walker) WalkUnit(u *ast.Unit) {
	prev := w.current
	w.current = u.ID
	w.stmts(u.Stmts)
	w.current = prev
}

// raise records depth for decl and reports whether it exceeds every depth
// seen before.
func (w *Walker) raise(decl ast.NodeID, depth int) bool {
	if seen, ok := w.depths[decl]; ok && depth <= seen {
		return false
	}
	w.depths[decl] = depth
	return true
}

func (w *Walker) reference(ref ast.NodeID, depth int) {
	for _, d := range w.res.Resolve(ref) {
		u := w.units[d.Unit]
		if u == nil || u.TypeOnly {
			continue
		}
		if d.Unit != w.current {
			w.graph.Add(w.current, d.Unit)
		}
		if !w.raise(d.Decl, depth) {
			continue
		}
		prev := w.current
		w.current = d.Unit
		w.declaration(d.Decl, depth)
		w.current = prev
	}
}

// enter visits a declaration met in statement position.
func (w *Walker) enter(decl ast.NodeID, depth int) {
	if w.raise(decl, depth) {
		w.declaration(decl, depth)
	}
}

func (w *Walker) declaration(id ast.NodeID, depth int) {
	n := w.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.DeclVar, ast.BindingElem, ast.Param, ast.EnumMember, ast.PropAssign, ast.MemberProp:
		w.expr(n.Init, depth)
	case ast.PropShorthand:
		w.expr(n.Name, depth)
	case ast.StmtFunc, ast.ExprFunc, ast.MemberMethod:
		w.function(id, depth)
	case ast.StmtClass, ast.ExprClass:
		w.class(id, depth)
	case ast.StmtEnum:
		for _, m := range n.List {
			w.expr(w.tree.Get(m).Init, 0)
		}
	case ast.StmtNamespace:
		if body := w.tree.Get(n.Body); body != nil {
			w.stmts(body.List)
		}
	case ast.StmtImportAlias:
		w.expr(n.X, 0)
	}
}

func (w *Walker) stmts(list []ast.NodeID) {
	for _, id := range list {
		if n := w.tree.Get(id); n != nil && !n.Mods.Has(ast.ModDeclare) {
			w.stmt(id, n)
		}
	}
}

func (w *Walker) stmtID(id ast.NodeID) {
	if n := w.tree.Get(id); n != nil {
		w.stmt(id, n)
	}
}

func (w *Walker) stmt(id ast.NodeID, n *ast.Node) {
	switch n.Kind {
	case ast.StmtVar:
		for _, decl := range n.List {
			w.enter(decl, 0)
			w.patternDefaults(w.tree.Get(decl).Name)
		}
	case ast.StmtFunc, ast.StmtClass, ast.StmtEnum, ast.StmtNamespace, ast.StmtImportAlias:
		w.enter(id, 0)
	case ast.StmtExpr, ast.StmtThrow:
		w.expr(n.X, 0)
	case ast.StmtReturn:
		if w.returns != nil && n.X.IsValid() {
			*w.returns = append(*w.returns, n.X)
		}
	case ast.StmtBlock:
		w.stmts(n.List)
	case ast.StmtIf:
		w.expr(n.X, 0)
		w.stmtID(n.Body)
		w.stmtID(n.Else)
	case ast.StmtDo, ast.StmtWhile, ast.StmtWith:
		w.expr(n.X, 0)
		w.stmtID(n.Body)
	case ast.StmtFor:
		w.forInit(n.Init)
		w.expr(n.X, 0)
		w.expr(n.Y, 0)
		w.stmtID(n.Body)
	case ast.StmtForIn:
		w.expr(n.X, 0)
		w.stmtID(n.Body)
		w.forInit(n.Init)
	case ast.StmtSwitch:
		w.expr(n.X, 0)
		for _, c := range n.List {
			clause := w.tree.Get(c)
			w.expr(clause.X, 0)
			w.stmts(clause.List)
		}
	case ast.StmtLabeled:
		w.stmtID(n.Body)
	case ast.StmtTry:
		w.stmtID(n.Body)
		w.stmtID(n.Finally)
		if catch := w.tree.Get(n.X); catch != nil {
			w.stmtID(catch.Body)
		}
	}
}

func (w *Walker) forInit(id ast.NodeID) {
	n := w.tree.Get(id)
	if n == nil {
		return
	}
	if n.Kind == ast.StmtVar {
		w.stmt(id, n)
		return
	}
	w.expr(id, 0)
}

// patternDefaults visits default values inside a destructuring pattern.
func (w *Walker) patternDefaults(id ast.NodeID) {
	n := w.tree.Get(id)
	if n == nil || (n.Kind != ast.PatObject && n.Kind != ast.PatArray) {
		return
	}
	for _, elem := range n.List {
		e := w.tree.Get(elem)
		if e == nil || e.Kind != ast.BindingElem {
			continue
		}
		w.expr(e.Init, 0)
		w.patternDefaults(e.Name)
	}
}

func (w *Walker) expr(id ast.NodeID, depth int) {
	n := w.tree.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.ExprIdent:
		w.reference(id, depth)
	case ast.ExprMember:
		w.expr(n.X, 0)
		w.reference(id, depth)
	case ast.ExprIndex:
		w.expr(n.X, depth)
		w.expr(n.Y, 0)
	case ast.ExprArray:
		for _, elem := range n.List {
			w.expr(elem, depth)
		}
	case ast.ExprObject:
		for _, p := range n.List {
			prop := w.tree.Get(p)
			switch prop.Kind {
			case ast.PropAssign:
				w.expr(prop.Init, depth)
			case ast.PropShorthand:
				w.expr(prop.Name, depth)
			case ast.ExprSpread:
				w.expr(prop.X, depth)
			}
		}
	case ast.ExprClass:
		w.enter(id, depth)
	case ast.ExprFunc, ast.ExprArrow:
		w.function(id, depth)
	case ast.ExprCall, ast.ExprNew:
		for _, arg := range n.List {
			w.expr(arg, 0)
		}
		w.expr(w.callee(n.X), depth+1)
	case ast.ExprTemplate:
		for _, sub := range n.List {
			w.expr(sub, 0)
		}
	case ast.ExprTaggedTemplate:
		w.expr(w.callee(n.X), depth+1)
		w.expr(n.Y, 0)
	case ast.ExprUnary, ast.ExprPostfix, ast.ExprDelete, ast.ExprTypeOf, ast.ExprVoid:
		w.expr(n.X, 0)
	case ast.ExprBinary:
		switch n.Op {
		case ast.OpAnd, ast.OpOr, ast.OpNullish, ast.OpAssign:
			w.expr(n.X, depth)
			w.expr(n.Y, depth)
		case ast.OpComma:
			w.expr(n.X, 0)
			w.expr(n.Y, depth)
		default:
			w.expr(n.X, 0)
			w.expr(n.Y, 0)
		}
	case ast.ExprCond:
		w.expr(n.X, 0)
		w.expr(n.Y, depth)
		w.expr(n.Z, depth)
	case ast.ExprParen, ast.ExprAwait, ast.ExprYield, ast.ExprSpread, ast.ExprAssert:
		w.expr(n.X, depth)
	case ast.PatObject, ast.PatArray:
		for _, elem := range n.List {
			w.expr(elem, depth)
		}
	case ast.BindingElem:
		w.expr(n.Name, depth)
		w.expr(n.Init, 0)
	}
}

// callee strips parentheses and comma sequences around a called
// expression; discarded comma operands are visited at 0.
func (w *Walker) callee(id ast.NodeID) ast.NodeID {
	for {
		n := w.tree.Get(id)
		switch {
		case n == nil:
			return id
		case n.Kind == ast.ExprParen:
			id = n.X
		case n.Kind == ast.ExprBinary && n.Op == ast.OpComma:
			w.expr(n.X, 0)
			id = n.Y
		default:
			return id
		}
	}
}

// function enters a function-like body only when depth > 0. The body is
// traversed once; its recorded returns are revisited on every entry.
func (w *Walker) function(id ast.NodeID, depth int) {
	n := w.tree.Get(id)
	for _, d := range n.Decorators {
		w.expr(d, 1)
	}
	for _, p := range n.Params {
		for _, d := range w.tree.Get(p).Decorators {
			w.expr(d, 1)
		}
	}
	if depth <= 0 || !n.Body.IsValid() {
		return
	}
	returns, ok := w.bodies[id]
	if !ok {
		returns = new([]ast.NodeID)
		w.bodies[id] = returns
		prev := w.returns
		w.returns = returns
		for _, p := range n.Params {
			param := w.tree.Get(p)
			w.expr(param.Init, 0)
			w.patternDefaults(param.Name)
		}
		if body := w.tree.Get(n.Body); body.Kind == ast.StmtBlock {
			w.stmts(body.List)
		} else {
			*returns = append(*returns, n.Body)
		}
		w.returns = prev
	}
	for _, r := range *returns {
		w.expr(r, depth-1)
	}
}

func (w *Walker) class(id ast.NodeID, depth int) {
	n := w.tree.Get(id)
	w.expr(n.X, depth)
	for _, d := range n.Decorators {
		w.expr(d, 1)
	}
	for _, m := range n.List {
		member := w.tree.Get(m)
		switch member.Kind {
		case ast.MemberCtor:
			w.function(m, depth)
		case ast.MemberMethod:
			w.function(m, 0)
		case ast.MemberProp:
			for _, d := range member.Decorators {
				w.expr(d, 1)
			}
			if depth > 0 || member.Mods.Has(ast.ModStatic) {
				w.expr(member.Init, 0)
			}
		case ast.MemberStaticBlock:
			if body := w.tree.Get(member.Body); body != nil {
				prev := w.returns
				w.returns = nil
				w.stmts(body.List)
				w.returns = prev
			}
		}
	}
}

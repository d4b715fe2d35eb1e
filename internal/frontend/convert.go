package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"tsmerge/internal/ast"
	"tsmerge/internal/source"
)

// converter lowers one tree-sitter tree into the shared arena.
type converter struct {
	tree *ast.Tree
	file source.FileID
	src  []byte
}

func (c *converter) span(n *sitter.Node) source.Span {
	return source.Span{File: c.file, Start: n.StartByte(), End: n.EndByte()}
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) add(n *sitter.Node, node ast.Node) ast.NodeID {
	if n != nil {
		node.Span = c.span(n)
	}
	return c.tree.New(node)
}

// named returns named children without comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasToken reports whether n has an anonymous child token tok.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == tok {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (c *converter) program(root *sitter.Node) []ast.NodeID {
	var stmts []ast.NodeID
	for _, child := range named(root) {
		if child.Type() == "hash_bang_line" {
			continue
		}
		if id := c.stmt(child); id.IsValid() {
			c.tree.SetParents(id)
			stmts = append(stmts, id)
		}
	}
	return stmts
}

func (c *converter) stmts(nodes []*sitter.Node) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if id := c.stmt(n); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (c *converter) stmt(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "comment":
		return ast.NoNodeID
	case "export_statement":
		return c.exportStmt(n)
	case "ambient_declaration":
		return c.ambient(n)
	case "variable_declaration", "lexical_declaration":
		return c.varStmt(n)
	case "function_declaration", "generator_function_declaration", "function_signature":
		return c.function(n, ast.StmtFunc)
	case "class_declaration", "abstract_class_declaration":
		return c.class(n, ast.StmtClass, nil)
	case "enum_declaration":
		return c.enum(n)
	case "internal_module", "module":
		return c.namespace(n, n)
	case "import_alias":
		return c.importAlias(n)
	case "import_statement":
		return c.importStmt(n)
	case "interface_declaration":
		return c.add(n, ast.Node{Kind: ast.StmtInterface, Name: c.ident(n.ChildByFieldName("name"))})
	case "type_alias_declaration":
		return c.add(n, ast.Node{Kind: ast.StmtTypeAlias, Name: c.ident(n.ChildByFieldName("name"))})
	case "expression_statement":
		inner := firstNamed(n)
		if inner != nil && (inner.Type() == "internal_module" || inner.Type() == "module") {
			return c.namespace(inner, n)
		}
		return c.add(n, ast.Node{Kind: ast.StmtExpr, X: c.expr(inner)})
	case "statement_block":
		return c.add(n, ast.Node{Kind: ast.StmtBlock, List: c.stmts(named(n))})
	case "if_statement":
		node := ast.Node{
			Kind: ast.StmtIf,
			X:    c.expr(n.ChildByFieldName("condition")),
			Body: c.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alt = firstNamed(alt)
			}
			node.Else = c.stmt(alt)
		}
		return c.add(n, node)
	case "while_statement":
		return c.add(n, ast.Node{Kind: ast.StmtWhile, X: c.expr(n.ChildByFieldName("condition")), Body: c.stmt(n.ChildByFieldName("body"))})
	case "do_statement":
		return c.add(n, ast.Node{Kind: ast.StmtDo, X: c.expr(n.ChildByFieldName("condition")), Body: c.stmt(n.ChildByFieldName("body"))})
	case "for_statement":
		return c.forStmt(n)
	case "for_in_statement":
		return c.forInStmt(n)
	case "return_statement":
		return c.add(n, ast.Node{Kind: ast.StmtReturn, X: c.expr(firstNamed(n))})
	case "throw_statement":
		return c.add(n, ast.Node{Kind: ast.StmtThrow, X: c.expr(firstNamed(n))})
	case "with_statement":
		return c.add(n, ast.Node{Kind: ast.StmtWith, X: c.expr(n.ChildByFieldName("object")), Body: c.stmt(n.ChildByFieldName("body"))})
	case "switch_statement":
		return c.switchStmt(n)
	case "labeled_statement":
		return c.add(n, ast.Node{Kind: ast.StmtLabeled, Text: c.text(n.ChildByFieldName("label")), Body: c.stmt(n.ChildByFieldName("body"))})
	case "try_statement":
		return c.tryStmt(n)
	}
	return c.add(n, ast.Node{Kind: ast.StmtOther})
}

func (c *converter) exportStmt(n *sitter.Node) ast.NodeID {
	mods := ast.ModExport | ast.ModExportInSource
	if hasToken(n, "default") {
		mods |= ast.ModDefault
	}
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		// декораторы могут стоять перед export
		var decorators []ast.NodeID
		for _, child := range named(n) {
			if child.Type() == "decorator" {
				decorators = append(decorators, c.decorator(child))
			}
		}
		id := c.stmt(decl)
		node := c.tree.Get(id)
		node.Mods |= mods
		node.Span = c.span(n)
		if len(decorators) > 0 {
			node.Decorators = append(decorators, node.Decorators...)
		}
		return id
	}
	if value := n.ChildByFieldName("value"); value != nil {
		return c.add(n, ast.Node{Kind: ast.StmtExpr, Mods: mods, X: c.expr(value)})
	}
	return c.add(n, ast.Node{Kind: ast.StmtOther, Mods: mods})
}

func (c *converter) ambient(n *sitter.Node) ast.NodeID {
	inner := firstNamed(n)
	if inner == nil || inner.Type() == "statement_block" || inner.Type() == "property_identifier" {
		return c.add(n, ast.Node{Kind: ast.StmtOther, Mods: ast.ModDeclare})
	}
	id := c.stmt(inner)
	node := c.tree.Get(id)
	node.Mods |= ast.ModDeclare
	node.Span = c.span(n)
	return id
}

func (c *converter) varStmt(n *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtVar}
	if n.Type() == "lexical_declaration" {
		kind := c.text(n.ChildByFieldName("kind"))
		if kind == "" {
			kind = c.text(n.Child(0))
		}
		switch kind {
		case "const":
			node.Mods |= ast.ModConst
		case "let":
			node.Mods |= ast.ModLet
		}
	}
	for _, child := range named(n) {
		if child.Type() != "variable_declarator" {
			continue
		}
		node.List = append(node.List, c.add(child, ast.Node{
			Kind: ast.DeclVar,
			Name: c.pattern(child.ChildByFieldName("name")),
			Init: c.expr(child.ChildByFieldName("value")),
		}))
	}
	return c.add(n, node)
}

func (c *converter) function(n *sitter.Node, kind ast.Kind) ast.NodeID {
	node := ast.Node{
		Kind:   kind,
		Name:   c.ident(n.ChildByFieldName("name")),
		Params: c.params(n),
	}
	if hasToken(n, "async") {
		node.Mods |= ast.ModAsync
	}
	if hasToken(n, "*") {
		node.Mods |= ast.ModGenerator
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			node.Body = c.stmt(body)
		} else {
			node.Body = c.expr(body)
		}
	}
	return c.add(n, node)
}

func (c *converter) params(n *sitter.Node) []ast.NodeID {
	if single := n.ChildByFieldName("parameter"); single != nil {
		return []ast.NodeID{c.add(single, ast.Node{Kind: ast.Param, Name: c.ident(single)})}
	}
	list := n.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []ast.NodeID
	var pending []ast.NodeID
	for _, p := range named(list) {
		if p.Type() == "decorator" {
			pending = append(pending, c.decorator(p))
			continue
		}
		out = append(out, c.param(p, pending))
		pending = nil
	}
	return out
}

func (c *converter) param(n *sitter.Node, decorators []ast.NodeID) ast.NodeID {
	node := ast.Node{Kind: ast.Param, Decorators: decorators}
	target := n
	switch n.Type() {
	case "required_parameter", "optional_parameter":
		for _, child := range named(n) {
			if child.Type() == "decorator" {
				node.Decorators = append(node.Decorators, c.decorator(child))
			}
		}
		target = n.ChildByFieldName("pattern")
		node.Init = c.expr(n.ChildByFieldName("value"))
	case "assignment_pattern":
		target = n.ChildByFieldName("left")
		node.Init = c.expr(n.ChildByFieldName("right"))
	}
	if target != nil && target.Type() == "rest_pattern" {
		node.Mods |= ast.ModRest
		target = firstNamed(target)
	}
	node.Name = c.pattern(target)
	return c.add(n, node)
}

func (c *converter) decorator(n *sitter.Node) ast.NodeID {
	return c.expr(firstNamed(n))
}

func (c *converter) class(n *sitter.Node, kind ast.Kind, extra []ast.NodeID) ast.NodeID {
	node := ast.Node{Kind: kind, Name: c.ident(n.ChildByFieldName("name")), Decorators: extra}
	if hasToken(n, "abstract") || n.Type() == "abstract_class_declaration" {
		node.Mods |= ast.ModAbstract
	}
	for _, child := range named(n) {
		switch child.Type() {
		case "decorator":
			node.Decorators = append(node.Decorators, c.decorator(child))
		case "class_heritage":
			node.X = c.heritage(child)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		node.List = c.classBody(body)
	}
	return c.add(n, node)
}

func (c *converter) heritage(n *sitter.Node) ast.NodeID {
	for _, child := range named(n) {
		switch child.Type() {
		case "implements_clause":
			continue
		case "extends_clause":
			value := child.ChildByFieldName("value")
			if value == nil {
				value = firstNamed(child)
			}
			return c.expr(value)
		default:
			return c.expr(child)
		}
	}
	return ast.NoNodeID
}

func (c *converter) classBody(n *sitter.Node) []ast.NodeID {
	var members []ast.NodeID
	var pending []ast.NodeID
	for _, m := range named(n) {
		if m.Type() == "decorator" {
			pending = append(pending, c.decorator(m))
			continue
		}
		members = append(members, c.member(m, pending))
		pending = nil
	}
	return members
}

func (c *converter) member(n *sitter.Node, decorators []ast.NodeID) ast.NodeID {
	node := ast.Node{Decorators: decorators}
	for _, child := range named(n) {
		if child.Type() == "decorator" {
			node.Decorators = append(node.Decorators, c.decorator(child))
		}
	}
	if hasToken(n, "static") {
		node.Mods |= ast.ModStatic
	}
	switch n.Type() {
	case "method_definition":
		name := n.ChildByFieldName("name")
		if c.text(name) == "constructor" {
			node.Kind = ast.MemberCtor
		} else {
			node.Kind = ast.MemberMethod
			node.Name = c.propertyName(name)
		}
		if hasToken(n, "get") {
			node.Mods |= ast.ModGetter
		}
		if hasToken(n, "set") {
			node.Mods |= ast.ModSetter
		}
		if hasToken(n, "async") {
			node.Mods |= ast.ModAsync
		}
		node.Params = c.params(n)
		node.Body = c.stmt(n.ChildByFieldName("body"))
	case "public_field_definition", "field_definition":
		name := n.ChildByFieldName("name")
		if name == nil {
			name = n.ChildByFieldName("property")
		}
		node.Kind = ast.MemberProp
		node.Name = c.propertyName(name)
		node.Init = c.expr(n.ChildByFieldName("value"))
		if hasToken(n, "readonly") {
			node.Mods |= ast.ModReadonly
		}
	case "class_static_block":
		node.Kind = ast.MemberStaticBlock
		node.Mods |= ast.ModStatic
		node.Body = c.stmt(n.ChildByFieldName("body"))
	default:
		node.Kind = ast.MemberOther
	}
	return c.add(n, node)
}

func (c *converter) propertyName(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "property_identifier", "private_property_identifier", "identifier":
		return c.add(n, ast.Node{Kind: ast.ExprIdent, Text: c.text(n)})
	}
	return c.add(n, ast.Node{Kind: ast.ExprLit, Text: c.text(n)})
}

func (c *converter) enum(n *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtEnum, Name: c.ident(n.ChildByFieldName("name"))}
	if hasToken(n, "const") {
		node.Mods |= ast.ModConst
	}
	for _, m := range named(n.ChildByFieldName("body")) {
		member := ast.Node{Kind: ast.EnumMember}
		if m.Type() == "enum_assignment" {
			member.Name = c.propertyName(m.ChildByFieldName("name"))
			member.Init = c.expr(m.ChildByFieldName("value"))
		} else {
			member.Name = c.propertyName(m)
		}
		node.List = append(node.List, c.add(m, member))
	}
	return c.add(n, node)
}

// namespace lowers `namespace A.B.C { ... }`. outer is the statement node
// whose span the result takes.
func (c *converter) namespace(n, outer *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtNamespace}
	if name := n.ChildByFieldName("name"); name != nil {
		if name.Type() == "string" {
			node.Name = c.add(name, ast.Node{Kind: ast.ExprLit, Text: c.text(name)})
		} else {
			dotted := strings.Join(strings.Fields(c.text(name)), "")
			node.Text = dotted
			head, _, _ := strings.Cut(dotted, ".")
			sp := c.span(name)
			sp.End = sp.Start + uint32(len(head)) // #nosec G115 -- identifier fits in the file span
			node.Name = c.tree.New(ast.Node{Kind: ast.ExprIdent, Span: sp, Text: head})
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		node.Body = c.stmt(body)
	}
	return c.add(outer, node)
}

func (c *converter) importAlias(n *sitter.Node) ast.NodeID {
	kids := named(n)
	node := ast.Node{Kind: ast.StmtImportAlias}
	if len(kids) > 0 {
		node.Name = c.ident(kids[0])
	}
	if len(kids) > 1 {
		node.X = c.entityName(kids[1])
	}
	return c.add(n, node)
}

// importStmt keeps `import x = require("m")` as an alias to an external
// module; every other import form is opaque.
func (c *converter) importStmt(n *sitter.Node) ast.NodeID {
	for _, child := range named(n) {
		if child.Type() != "import_require_clause" {
			continue
		}
		kids := named(child)
		node := ast.Node{Kind: ast.StmtImportAlias}
		if len(kids) > 0 {
			node.Name = c.ident(kids[0])
		}
		if len(kids) > 1 {
			node.X = c.add(kids[1], ast.Node{Kind: ast.ExternalRef, Text: strings.Trim(c.text(kids[1]), "\"'`")})
		}
		return c.add(n, node)
	}
	return c.add(n, ast.Node{Kind: ast.StmtOther})
}

// entityName lowers A.B.C into nested member accesses with real spans.
func (c *converter) entityName(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	if n.Type() != "nested_identifier" {
		return c.ident(n)
	}
	kids := named(n)
	if len(kids) < 2 {
		return c.ident(n)
	}
	return c.add(n, ast.Node{
		Kind: ast.ExprMember,
		X:    c.entityName(kids[0]),
		Name: c.ident(kids[len(kids)-1]),
	})
}

func (c *converter) ident(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	return c.add(n, ast.Node{Kind: ast.ExprIdent, Text: c.text(n)})
}

func (c *converter) forStmt(n *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtFor, Body: c.stmt(n.ChildByFieldName("body"))}
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "lexical_declaration", "variable_declaration":
			node.Init = c.stmt(init)
		case "expression_statement":
			node.Init = c.expr(firstNamed(init))
		case "empty_statement", ";":
		default:
			node.Init = c.expr(init)
		}
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		switch cond.Type() {
		case "expression_statement":
			node.X = c.expr(firstNamed(cond))
		case "empty_statement", ";":
		default:
			node.X = c.expr(cond)
		}
	}
	node.Y = c.expr(n.ChildByFieldName("increment"))
	return c.add(n, node)
}

func (c *converter) forInStmt(n *sitter.Node) ast.NodeID {
	node := ast.Node{
		Kind: ast.StmtForIn,
		Text: "in",
		X:    c.expr(n.ChildByFieldName("right")),
		Body: c.stmt(n.ChildByFieldName("body")),
	}
	if op := n.ChildByFieldName("operator"); op != nil {
		node.Text = c.text(op)
	} else if hasToken(n, "of") {
		node.Text = "of"
	}
	left := n.ChildByFieldName("left")
	if kind := n.ChildByFieldName("kind"); kind != nil {
		decl := ast.Node{Kind: ast.StmtVar}
		switch c.text(kind) {
		case "const":
			decl.Mods |= ast.ModConst
		case "let":
			decl.Mods |= ast.ModLet
		}
		decl.List = []ast.NodeID{c.add(left, ast.Node{Kind: ast.DeclVar, Name: c.pattern(left)})}
		node.Init = c.add(left, decl)
	} else {
		node.Init = c.pattern(left)
	}
	return c.add(n, node)
}

func (c *converter) switchStmt(n *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtSwitch, X: c.expr(n.ChildByFieldName("value"))}
	for _, clause := range named(n.ChildByFieldName("body")) {
		switch clause.Type() {
		case "switch_case":
			value := clause.ChildByFieldName("value")
			var body []*sitter.Node
			for _, child := range named(clause) {
				if !sameNode(child, value) {
					body = append(body, child)
				}
			}
			node.List = append(node.List, c.add(clause, ast.Node{Kind: ast.CaseClause, X: c.expr(value), List: c.stmts(body)}))
		case "switch_default":
			node.List = append(node.List, c.add(clause, ast.Node{Kind: ast.DefaultClause, List: c.stmts(named(clause))}))
		}
	}
	return c.add(n, node)
}

func (c *converter) tryStmt(n *sitter.Node) ast.NodeID {
	node := ast.Node{Kind: ast.StmtTry, Body: c.stmt(n.ChildByFieldName("body"))}
	if handler := n.ChildByFieldName("handler"); handler != nil {
		node.X = c.add(handler, ast.Node{
			Kind: ast.CatchClause,
			Name: c.pattern(handler.ChildByFieldName("parameter")),
			Body: c.stmt(handler.ChildByFieldName("body")),
		})
	}
	if fin := n.ChildByFieldName("finalizer"); fin != nil {
		node.Finally = c.stmt(fin.ChildByFieldName("body"))
	}
	return c.add(n, node)
}

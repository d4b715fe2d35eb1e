package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"tsmerge/internal/ast"
)

func (c *converter) exprs(nodes []*sitter.Node) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if id := c.expr(n); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (c *converter) expr(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "comment":
		return ast.NoNodeID
	case "identifier", "shorthand_property_identifier", "type_identifier", "property_identifier":
		return c.ident(n)
	case "template_string":
		var subs []*sitter.Node
		for _, child := range named(n) {
			if child.Type() == "template_substitution" {
				subs = append(subs, firstNamed(child))
			}
		}
		return c.add(n, ast.Node{Kind: ast.ExprTemplate, List: c.exprs(subs)})
	case "member_expression":
		return c.add(n, ast.Node{
			Kind: ast.ExprMember,
			X:    c.expr(n.ChildByFieldName("object")),
			Name: c.propertyName(n.ChildByFieldName("property")),
		})
	case "subscript_expression":
		return c.add(n, ast.Node{
			Kind: ast.ExprIndex,
			X:    c.expr(n.ChildByFieldName("object")),
			Y:    c.expr(n.ChildByFieldName("index")),
		})
	case "call_expression":
		args := n.ChildByFieldName("arguments")
		if args != nil && args.Type() == "template_string" {
			return c.add(n, ast.Node{
				Kind: ast.ExprTaggedTemplate,
				X:    c.expr(n.ChildByFieldName("function")),
				Y:    c.expr(args),
			})
		}
		return c.add(n, ast.Node{Kind: ast.ExprCall, X: c.expr(n.ChildByFieldName("function")), List: c.exprs(named(args))})
	case "new_expression":
		return c.add(n, ast.Node{Kind: ast.ExprNew, X: c.expr(n.ChildByFieldName("constructor")), List: c.exprs(named(n.ChildByFieldName("arguments")))})
	case "arrow_function":
		return c.function(n, ast.ExprArrow)
	case "function", "function_expression", "generator_function":
		return c.function(n, ast.ExprFunc)
	case "class":
		return c.class(n, ast.ExprClass, nil)
	case "assignment_expression":
		return c.add(n, ast.Node{
			Kind: ast.ExprBinary,
			Op:   ast.OpAssign,
			Text: "=",
			X:    c.pattern(n.ChildByFieldName("left")),
			Y:    c.expr(n.ChildByFieldName("right")),
		})
	case "augmented_assignment_expression", "binary_expression":
		op := c.text(n.ChildByFieldName("operator"))
		return c.add(n, ast.Node{
			Kind: ast.ExprBinary,
			Op:   ast.BinaryOp(op),
			Text: op,
			X:    c.expr(n.ChildByFieldName("left")),
			Y:    c.expr(n.ChildByFieldName("right")),
		})
	case "unary_expression":
		op := c.text(n.ChildByFieldName("operator"))
		arg := c.expr(n.ChildByFieldName("argument"))
		switch op {
		case "typeof":
			return c.add(n, ast.Node{Kind: ast.ExprTypeOf, X: arg})
		case "void":
			return c.add(n, ast.Node{Kind: ast.ExprVoid, X: arg})
		case "delete":
			return c.add(n, ast.Node{Kind: ast.ExprDelete, X: arg})
		}
		return c.add(n, ast.Node{Kind: ast.ExprUnary, Text: op, X: arg})
	case "update_expression":
		arg := n.ChildByFieldName("argument")
		op := n.ChildByFieldName("operator")
		kind := ast.ExprPostfix
		if op != nil && arg != nil && op.StartByte() < arg.StartByte() {
			kind = ast.ExprUnary
		}
		return c.add(n, ast.Node{Kind: kind, Text: c.text(op), X: c.expr(arg)})
	case "ternary_expression":
		return c.add(n, ast.Node{
			Kind: ast.ExprCond,
			X:    c.expr(n.ChildByFieldName("condition")),
			Y:    c.expr(n.ChildByFieldName("consequence")),
			Z:    c.expr(n.ChildByFieldName("alternative")),
		})
	case "parenthesized_expression":
		return c.add(n, ast.Node{Kind: ast.ExprParen, X: c.expr(firstNamed(n))})
	case "sequence_expression":
		return c.sequence(n)
	case "await_expression":
		return c.add(n, ast.Node{Kind: ast.ExprAwait, X: c.expr(firstNamed(n))})
	case "yield_expression":
		return c.add(n, ast.Node{Kind: ast.ExprYield, X: c.expr(firstNamed(n))})
	case "spread_element":
		return c.add(n, ast.Node{Kind: ast.ExprSpread, X: c.expr(firstNamed(n))})
	case "as_expression", "satisfies_expression", "non_null_expression":
		return c.add(n, ast.Node{Kind: ast.ExprAssert, X: c.expr(firstNamed(n))})
	case "type_assertion":
		kids := named(n)
		if len(kids) == 0 {
			return c.add(n, ast.Node{Kind: ast.ExprLit, Text: c.text(n)})
		}
		return c.add(n, ast.Node{Kind: ast.ExprAssert, X: c.expr(kids[len(kids)-1])})
	case "instantiation_expression":
		return c.expr(firstNamed(n))
	case "array":
		return c.add(n, ast.Node{Kind: ast.ExprArray, List: c.exprs(named(n))})
	case "object":
		return c.object(n)
	case "meta_property":
		return c.add(n, ast.Node{Kind: ast.ExprMeta, Text: c.text(n)})
	}
	return c.add(n, ast.Node{Kind: ast.ExprLit, Text: c.text(n)})
}

// sequence flattens `a, b, c` into a left-leaning chain of comma operators.
func (c *converter) sequence(n *sitter.Node) ast.NodeID {
	var operands []*sitter.Node
	var collect func(*sitter.Node)
	collect = func(s *sitter.Node) {
		for _, child := range named(s) {
			if child.Type() == "sequence_expression" {
				collect(child)
				continue
			}
			operands = append(operands, child)
		}
	}
	collect(n)
	if len(operands) == 0 {
		return c.add(n, ast.Node{Kind: ast.ExprLit, Text: c.text(n)})
	}
	acc := c.expr(operands[0])
	for _, op := range operands[1:] {
		right := c.expr(op)
		sp := c.tree.Get(acc).Span.Cover(c.span(op))
		acc = c.tree.New(ast.Node{Kind: ast.ExprBinary, Span: sp, Op: ast.OpComma, Text: ",", X: acc, Y: right})
	}
	return acc
}

func (c *converter) object(n *sitter.Node) ast.NodeID {
	var props []ast.NodeID
	for _, p := range named(n) {
		switch p.Type() {
		case "pair":
			props = append(props, c.add(p, ast.Node{
				Kind: ast.PropAssign,
				Name: c.propertyName(p.ChildByFieldName("key")),
				Init: c.expr(p.ChildByFieldName("value")),
			}))
		case "shorthand_property_identifier":
			props = append(props, c.add(p, ast.Node{Kind: ast.PropShorthand, Name: c.ident(p)}))
		case "spread_element":
			props = append(props, c.expr(p))
		case "method_definition":
			props = append(props, c.member(p, nil))
		}
	}
	return c.add(n, ast.Node{Kind: ast.ExprObject, List: props})
}

package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"tsmerge/internal/ast"
)

// pattern lowers a binding target. Anything that is not a destructuring
// pattern falls back to an expression (assignment targets).
func (c *converter) pattern(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return c.ident(n)
	case "object_pattern":
		var elems []ast.NodeID
		for _, child := range named(n) {
			elems = append(elems, c.objectElem(child))
		}
		return c.add(n, ast.Node{Kind: ast.PatObject, List: elems})
	case "array_pattern":
		var elems []ast.NodeID
		for _, child := range named(n) {
			elems = append(elems, c.arrayElem(child))
		}
		return c.add(n, ast.Node{Kind: ast.PatArray, List: elems})
	case "assignment_pattern", "rest_pattern", "object_assignment_pattern":
		return c.arrayElem(n)
	}
	return c.expr(n)
}

func (c *converter) objectElem(n *sitter.Node) ast.NodeID {
	switch n.Type() {
	case "pair_pattern":
		elem := ast.Node{Kind: ast.BindingElem, X: c.propertyName(n.ChildByFieldName("key"))}
		value := n.ChildByFieldName("value")
		if value != nil && value.Type() == "assignment_pattern" {
			elem.Name = c.pattern(value.ChildByFieldName("left"))
			elem.Init = c.expr(value.ChildByFieldName("right"))
		} else {
			elem.Name = c.pattern(value)
		}
		return c.add(n, elem)
	case "object_assignment_pattern":
		return c.add(n, ast.Node{
			Kind: ast.BindingElem,
			Name: c.pattern(n.ChildByFieldName("left")),
			Init: c.expr(n.ChildByFieldName("right")),
		})
	}
	return c.arrayElem(n)
}

func (c *converter) arrayElem(n *sitter.Node) ast.NodeID {
	switch n.Type() {
	case "assignment_pattern", "object_assignment_pattern":
		return c.add(n, ast.Node{
			Kind: ast.BindingElem,
			Name: c.pattern(n.ChildByFieldName("left")),
			Init: c.expr(n.ChildByFieldName("right")),
		})
	case "rest_pattern":
		return c.add(n, ast.Node{Kind: ast.BindingElem, Mods: ast.ModRest, Name: c.pattern(firstNamed(n))})
	}
	return c.add(n, ast.Node{Kind: ast.BindingElem, Name: c.pattern(n)})
}

package frontend

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"tsmerge/internal/diag"
)

const snippetWidth = 24

// reportSyntax walks error and missing nodes and forwards them to r.
// Error subtrees are reported once and not descended into.
func (c *converter) reportSyntax(root *sitter.Node, r diag.Reporter) {
	if r == nil || root == nil || !root.HasError() {
		return
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch {
		case n.Type() == "ERROR":
			diag.ReportError(r, diag.SynError, c.span(n), fmt.Sprintf("unexpected %s", snippet(c.text(n)))).Emit()
			return
		case n.IsMissing():
			diag.ReportError(r, diag.SynMissing, c.span(n), fmt.Sprintf("missing %s", n.Type())).Emit()
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "token"
	}
	if len(text) > snippetWidth {
		text = text[:snippetWidth] + "…"
	}
	return fmt.Sprintf("%q", text)
}

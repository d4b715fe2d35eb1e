// Package printer turns units back into text. Statements that come from a
// source file are copied verbatim together with the comments and blank
// lines around them; synthesized statements are rendered from the tree.
package printer

import (
	"bytes"
	"strings"

	"tsmerge/internal/ast"
	"tsmerge/internal/source"
)

// Printer renders units of one program.
type Printer struct {
	tree  *ast.Tree
	files *source.FileSet
}

// New creates a printer over tree; files provides the source text.
func New(tree *ast.Tree, files *source.FileSet) *Printer {
	return &Printer{tree: tree, files: files}
}

// Print renders one unit.
func Print(tree *ast.Tree, files *source.FileSet, unit *ast.Unit) string {
	var sb strings.Builder
	New(tree, files).Unit(&sb, unit)
	return sb.String()
}

// Unit writes unit to sb. The output always ends with a newline unless the
// unit is empty.
func (p *Printer) Unit(sb *strings.Builder, unit *ast.Unit) {
	var content []byte
	if f := p.files.Get(unit.File); f != nil {
		content = f.Content
	}
	size := uint32(len(content)) // #nosec G115 -- content length was checked in FileSet.Add
	inFile := func(n *ast.Node) bool {
		return n != nil && !n.IsSynthetic() && n.Span.File == unit.File && n.Span.End <= size
	}
	last := -1
	for i, id := range unit.Stmts {
		if inFile(p.tree.Get(id)) {
			last = i
		}
	}

	cursor := uint32(0)
	for i, id := range unit.Stmts {
		n := p.tree.Get(id)
		if n == nil {
			continue
		}
		if !inFile(n) {
			newline(sb)
			p.synthetic(sb, id)
			sb.WriteByte('\n')
			continue
		}
		if n.Span.Start >= cursor {
			gap := content[cursor:n.Span.Start]
			if cursor == 0 {
				gap = stripHashBang(gap)
			}
			sb.Write(gap)
		}
		p.statement(sb, n)
		cursor = max(cursor, n.Span.End)
		if i == last {
			// trailing comments stay with the unit, before anything appended
			sb.Write(content[cursor:])
			cursor = size
		}
	}
	if sb.Len() > 0 {
		newline(sb)
	}
}

// statement copies the source text, adding an export qualifier when a pass
// asked for one.
func (p *Printer) statement(sb *strings.Builder, n *ast.Node) {
	if n.Mods.Has(ast.ModExport) && !n.Mods.Has(ast.ModExportInSource) {
		sb.WriteString("export ")
	}
	sb.Write(p.files.Text(n.Span))
}

// Node renders a single node: source text when it has any, otherwise the
// structural form.
func (p *Printer) Node(id ast.NodeID) string {
	var sb strings.Builder
	n := p.tree.Get(id)
	if n == nil {
		return ""
	}
	if n.IsSynthetic() {
		p.synthetic(&sb, id)
	} else {
		p.statement(&sb, n)
	}
	return sb.String()
}

func (p *Printer) synthetic(sb *strings.Builder, id ast.NodeID) {
	n := p.tree.Get(id)
	if n == nil {
		return
	}
	if !n.IsSynthetic() {
		sb.Write(p.files.Text(n.Span))
		return
	}
	switch n.Kind {
	case ast.ExprIdent, ast.ExprLit:
		sb.WriteString(n.Text)
	case ast.ExprMember:
		p.synthetic(sb, n.X)
		sb.WriteByte('.')
		p.synthetic(sb, n.Name)
	case ast.ExprBinary:
		p.synthetic(sb, n.X)
		sb.WriteString(" " + n.Text + " ")
		p.synthetic(sb, n.Y)
	case ast.StmtExpr:
		p.synthetic(sb, n.X)
		sb.WriteByte(';')
	case ast.StmtExportList:
		sb.WriteString("export {")
		for i, name := range n.List {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte(' ')
			p.synthetic(sb, name)
		}
		sb.WriteString(" };")
	}
}

func newline(sb *strings.Builder) {
	s := sb.String()
	if len(s) > 0 && s[len(s)-1] != '\n' {
		sb.WriteByte('\n')
	}
}

// stripHashBang drops a leading `#!` line; it is only legal at the very
// start of the merged output.
func stripHashBang(gap []byte) []byte {
	if !bytes.HasPrefix(gap, []byte("#!")) {
		return gap
	}
	if i := bytes.IndexByte(gap, '\n'); i >= 0 {
		return gap[i+1:]
	}
	return nil
}

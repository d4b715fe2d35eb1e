package export

import (
	"tsmerge/internal/ast"
	"tsmerge/internal/classify"
)

// Options select how Synthesize exposes names.
type Options struct {
	Mode Mode
	// Namespace is the dotted target of property mode; empty means
	// DefaultNamespace.
	Namespace string
}

// Target returns the property-mode namespace path.
func (o Options) Target() string {
	if o.Namespace == "" {
		return DefaultNamespace
	}
	return o.Namespace
}

// Synthesize returns unit with the export statements of opts appended.
// Existing statements are kept as they are.
func Synthesize(tree *ast.Tree, unit *ast.Unit, names []classify.Name, opts Options) *ast.Unit {
	if len(names) == 0 {
		return unit
	}
	var extra []ast.NodeID
	switch opts.Mode {
	case ModeList:
		extra = []ast.NodeID{ListStatement(tree, names)}
	case ModeProperty:
		extra = PropertyStatements(tree, names, opts.Target())
	default:
		return unit
	}
	stmts := make([]ast.NodeID, 0, len(unit.Stmts)+len(extra))
	stmts = append(stmts, unit.Stmts...)
	stmts = append(stmts, extra...)
	return unit.WithStmts(stmts)
}

// ListStatement builds one `export { ... };` naming every name once.
func ListStatement(tree *ast.Tree, names []classify.Name) ast.NodeID {
	return tree.NewExportList(unique(names))
}

// PropertyStatements builds `<path>.<name> = <name>;` per name.
func PropertyStatements(tree *ast.Tree, names []classify.Name, path string) []ast.NodeID {
	texts := unique(names)
	out := make([]ast.NodeID, 0, len(texts))
	for _, name := range texts {
		lhs := tree.NewDottedPath(path + "." + name)
		out = append(out, tree.NewExprStmt(tree.NewAssign(lhs, tree.NewIdent(name))))
	}
	return out
}

// unique keeps the first occurrence of every name; merged namespaces and
// overloads would otherwise be exported twice.
func unique(names []classify.Name) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n.Text]; ok {
			continue
		}
		seen[n.Text] = struct{}{}
		out = append(out, n.Text)
	}
	return out
}

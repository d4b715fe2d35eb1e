package export

import (
	"tsmerge/internal/ast"
	"tsmerge/internal/classify"
)

// Records maps unit paths to their exportable names for one pass. The
// pre-pass fills it, the post-pass takes each entry once.
type Records struct {
	names map[string][]classify.Name
	order []string
}

// NewRecords creates an empty record set.
func NewRecords() *Records {
	return &Records{names: make(map[string][]classify.Name)}
}

// Record classifies unit and stores its names under the unit path.
func (r *Records) Record(tree *ast.Tree, unit *ast.Unit) []classify.Name {
	names := classify.Names(tree, unit)
	if _, ok := r.names[unit.Path]; !ok {
		r.order = append(r.order, unit.Path)
	}
	r.names[unit.Path] = names
	return names
}

// Names returns the stored names without consuming them.
func (r *Records) Names(path string) []classify.Name { return r.names[path] }

// Take returns and forgets the names stored for path.
func (r *Records) Take(path string) ([]classify.Name, bool) {
	names, ok := r.names[path]
	if ok {
		delete(r.names, path)
	}
	return names, ok
}

// Paths lists recorded unit paths in recording order, consumed ones included.
func (r *Records) Paths() []string { return r.order }

// Len reports how many units still hold unconsumed names.
func (r *Records) Len() int { return len(r.names) }

// Clear drops every entry.
func (r *Records) Clear() {
	clear(r.names)
	r.order = r.order[:0]
}

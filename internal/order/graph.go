package order

import (
	"tsmerge/internal/ast"
)

// Edge means From reads something declared in To while loading, so To has
// to run first.
type Edge struct {
	From ast.UnitID
	To   ast.UnitID
}

// Graph is the deduplicated unit dependency set in discovery order.
type Graph struct {
	edges []Edge
	deps  map[ast.UnitID][]ast.UnitID
	seen  map[Edge]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		deps: make(map[ast.UnitID][]ast.UnitID),
		seen: make(map[Edge]struct{}),
	}
}

// Add records from -> to and reports whether the edge is new.
func (g *Graph) Add(from, to ast.UnitID) bool {
	if from == to {
		return false
	}
	e := Edge{From: from, To: to}
	if _, ok := g.seen[e]; ok {
		return false
	}
	g.seen[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.deps[from] = append(g.deps[from], to)
	return true
}

// Deps returns the units from depends on, in discovery order.
func (g *Graph) Deps(from ast.UnitID) []ast.UnitID { return g.deps[from] }

// Has reports whether from -> to was recorded.
func (g *Graph) Has(from, to ast.UnitID) bool {
	_, ok := g.seen[Edge{From: from, To: to}]
	return ok
}

// Edges returns every edge in discovery order.
func (g *Graph) Edges() []Edge { return g.edges }

// Len reports the number of edges.
func (g *Graph) Len() int { return len(g.edges) }

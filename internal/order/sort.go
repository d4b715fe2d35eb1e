package order

import (
	"slices"

	"tsmerge/internal/ast"
)

// Sort emits every unit exactly once so that, for an acyclic graph, each
// unit comes after the units it depends on. Unrelated units keep their
// input order. A unit reached again while its own dependencies are still
// being emitted counts as satisfied, which breaks cycles silently.
func Sort(units []*ast.Unit, g *Graph) []*ast.Unit {
	byID := make(map[ast.UnitID]*ast.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	out := make([]*ast.Unit, 0, len(units))
	sorted := make(map[ast.UnitID]bool, len(units))
	active := make(map[ast.UnitID]bool)

	var visit func(id ast.UnitID)
	visit = func(id ast.UnitID) {
		if active[id] || sorted[id] {
			return
		}
		u, ok := byID[id]
		if !ok {
			return
		}
		active[id] = true
		for _, dep := range g.Deps(id) {
			visit(dep)
		}
		delete(active, id)
		sorted[id] = true
		out = append(out, u)
	}
	for _, u := range units {
		visit(u.ID)
	}
	return out
}

// Topo is the Kahn view of the graph: dependency waves plus the units that
// never became ready because a cycle blocks them.
type Topo struct {
	Batches [][]ast.UnitID // волны независимых юнитов
	Cyclic  bool
	Cycles  []ast.UnitID // юниты, оставшиеся в цикле, в порядке программы
}

// DetectCycles runs Kahn's algorithm over units.
func DetectCycles(units []*ast.Unit, g *Graph) *Topo {
	nodeCount := len(units)
	index := make(map[ast.UnitID]int, nodeCount)
	for i, u := range units {
		index[u.ID] = i
	}
	indeg := make([]int, nodeCount)
	dependents := make([][]int, nodeCount)
	for _, e := range g.Edges() {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		indeg[from]++
		dependents[to] = append(dependents[to], from)
	}

	topo := &Topo{}
	current := make([]int, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]ast.UnitID, 0, len(current))
		next := make([]int, 0)
		for _, i := range current {
			batch = append(batch, units[i].ID)
			visited++
			for _, from := range dependents[i] {
				indeg[from]--
				if indeg[from] == 0 {
					next = append(next, from)
				}
			}
		}
		topo.Batches = append(topo.Batches, batch)
		slices.Sort(next)
		current = next
	}

	if visited != nodeCount {
		topo.Cyclic = true
		for i := range nodeCount {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, units[i].ID)
			}
		}
	}
	return topo
}

// Positions maps each unit to its index in order.
func Positions(order []*ast.Unit) map[ast.UnitID]int {
	pos := make(map[ast.UnitID]int, len(order))
	for i, u := range order {
		pos[u.ID] = i
	}
	return pos
}

package ast

// Hints provide capacity suggestions for a Tree.
type Hints struct{ Nodes uint }

// Tree owns every node of a program; units refer to their statements by ID.
type Tree struct {
	Nodes *Arena[Node]
}

func NewTree(h Hints) *Tree {
	if h.Nodes == 0 {
		h.Nodes = 1 << 10
	}
	return &Tree{Nodes: NewArena[Node](h.Nodes)}
}

func (t *Tree) New(n Node) NodeID {
	return NodeID(t.Nodes.Allocate(n))
}

func (t *Tree) Get(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

func (t *Tree) Len() uint32 {
	return t.Nodes.Len()
}

// Kind returns the node kind or KindInvalid for unknown IDs.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Get(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Clone copies a node shallowly: the copy shares children with the original
// but owns its slices, so it can be rewritten without touching the source.
func (t *Tree) Clone(id NodeID) NodeID {
	n := t.Get(id)
	if n == nil {
		return NoNodeID
	}
	cp := *n
	cp.List = append([]NodeID(nil), n.List...)
	cp.Params = append([]NodeID(nil), n.Params...)
	cp.Decorators = append([]NodeID(nil), n.Decorators...)
	return t.New(cp)
}

// Children returns the direct children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Get(id)
	if n == nil {
		return nil
	}
	return n.children(nil)
}

// Walk visits id and its descendants in preorder. Returning false from fn
// skips the subtree below the current node.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Get(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	var buf [8]NodeID
	for _, child := range n.children(buf[:0]) {
		t.Walk(child, fn)
	}
}

// SetParents fills the Parent slot of every descendant of root.
func (t *Tree) SetParents(root NodeID) {
	t.Walk(root, func(id NodeID, n *Node) bool {
		for _, child := range n.children(nil) {
			if c := t.Get(child); c != nil {
				c.Parent = id
			}
		}
		return true
	})
}

// NameText returns the identifier text bound in the Name slot, if any.
func (t *Tree) NameText(id NodeID) string {
	n := t.Get(id)
	if n == nil {
		return ""
	}
	if name := t.Get(n.Name); name != nil && name.Kind == ExprIdent {
		return name.Text
	}
	return ""
}

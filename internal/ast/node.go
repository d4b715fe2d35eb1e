package ast

import (
	"tsmerge/internal/source"
)

// Node is the single record type stored in a Tree. Which slots are used
// depends on Kind (see kind.go).
type Node struct {
	Kind   Kind
	Span   source.Span
	Parent NodeID
	Mods   Mods
	Op     Op
	Text   string

	Name    NodeID
	Init    NodeID
	X       NodeID
	Y       NodeID
	Z       NodeID
	Body    NodeID
	Else    NodeID
	Finally NodeID

	List       []NodeID
	Params     []NodeID
	Decorators []NodeID
}

// IsSynthetic reports whether the node was created by a pass.
func (n *Node) IsSynthetic() bool {
	return n != nil && n.Mods.Has(ModSynthetic)
}

// children lists every child slot in a fixed order.
func (n *Node) children(buf []NodeID) []NodeID {
	buf = append(buf, n.Decorators...)
	for _, id := range [...]NodeID{n.Name, n.Init, n.X, n.Y, n.Z} {
		if id.IsValid() {
			buf = append(buf, id)
		}
	}
	buf = append(buf, n.Params...)
	buf = append(buf, n.List...)
	for _, id := range [...]NodeID{n.Body, n.Else, n.Finally} {
		if id.IsValid() {
			buf = append(buf, id)
		}
	}
	return buf
}

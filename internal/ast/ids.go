package ast

type (
	// NodeID indexes a node in a Tree arena.
	NodeID uint32
	// UnitID indexes a unit in Program.Units (1-based).
	UnitID uint32
)

const (
	NoNodeID NodeID = 0
	NoUnitID UnitID = 0
)

func (id NodeID) IsValid() bool { return id != NoNodeID }
func (id UnitID) IsValid() bool { return id != NoUnitID }

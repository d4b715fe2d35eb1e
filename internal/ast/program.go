package ast

import (
	"tsmerge/internal/source"
)

// Unit is one source file's top-level statements.
type Unit struct {
	ID       UnitID
	Path     string
	File     source.FileID
	Stmts    []NodeID
	TypeOnly bool
}

// WithStmts returns a copy of u carrying stmts.
func (u *Unit) WithStmts(stmts []NodeID) *Unit {
	cp := *u
	cp.Stmts = stmts
	return &cp
}

// DeclRef names one declaration site of a resolved reference.
type DeclRef struct {
	Decl NodeID
	Unit UnitID
}

// Resolver maps a reference (ExprIdent or ExprMember) to its declarations.
type Resolver interface {
	Resolve(ref NodeID) []DeclRef
}

// NopResolver resolves nothing.
type NopResolver struct{}

func (NopResolver) Resolve(NodeID) []DeclRef { return nil }

// Program is the input of one bundling pass.
type Program struct {
	Tree     *Tree
	Files    *source.FileSet
	Units    []*Unit
	Resolver Resolver
}

// Unit returns the unit with the given ID or nil.
func (p *Program) Unit(id UnitID) *Unit {
	if !id.IsValid() {
		return nil
	}
	if int(id) <= len(p.Units) && p.Units[id-1].ID == id {
		return p.Units[id-1]
	}
	for _, u := range p.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UnitByPath finds a unit by its path identity.
func (p *Program) UnitByPath(path string) *Unit {
	for _, u := range p.Units {
		if u.Path == path {
			return u
		}
	}
	return nil
}

package symbols

import (
	"tsmerge/internal/ast"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeGlobal              // shared by every script unit
	ScopeFunction            // function body, parameters and hoisted vars
	ScopeBlock               // let/const/class inside a block
	ScopeNamespace           // namespace body; also sees merged exports
	ScopeEnum                // enum body; members resolve by bare name
	ScopeClass               // class expression name
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeNamespace:
		return "namespace"
	case ScopeEnum:
		return "enum"
	case ScopeClass:
		return "class"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent link.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Owner  ast.NodeID
	// Container is the namespace or enum symbol whose members are visible here.
	Container SymbolID
	NameIndex map[string]SymbolID
}

// hoists reports whether var declarations stop at this scope.
func (s *Scope) hoists() bool {
	switch s.Kind {
	case ScopeGlobal, ScopeFunction, ScopeNamespace:
		return true
	}
	return false
}

package symbols

import (
	"tsmerge/internal/ast"
)

// SymbolKind classifies the runtime meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVar
	SymbolLet
	SymbolConst
	SymbolFunction
	SymbolClass
	SymbolEnum
	SymbolNamespace
	SymbolAlias
	SymbolParam
	SymbolMember
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "var"
	case SymbolLet:
		return "let"
	case SymbolConst:
		return "const"
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolEnum:
		return "enum"
	case SymbolNamespace:
		return "namespace"
	case SymbolAlias:
		return "alias"
	case SymbolParam:
		return "param"
	case SymbolMember:
		return "member"
	default:
		return "invalid"
	}
}

// BlockScoped reports kinds that are in a temporal dead zone before their
// declaration runs.
func (k SymbolKind) BlockScoped() bool {
	switch k {
	case SymbolLet, SymbolConst, SymbolClass, SymbolEnum:
		return true
	}
	return false
}

// Symbol describes a named entity. Declarations merge: every site that
// declares the same name in the same scope lands in Decls.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Scope   ScopeID
	Decls   []ast.DeclRef
	Members map[string]SymbolID
}

func (s *Symbol) member(name string) SymbolID {
	if s == nil || s.Members == nil {
		return NoSymbolID
	}
	return s.Members[name]
}

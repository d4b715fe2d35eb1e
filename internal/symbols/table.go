package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tsmerge/internal/ast"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates scopes, symbols and the resolution of every reference
// seen while binding. It implements ast.Resolver.
type Table struct {
	scopes  []Scope
	symbols []Symbol
	refs    map[ast.NodeID][]SymbolID
	global  ScopeID
}

// NewTable builds a fresh table with one global scope.
func NewTable(h Hints) *Table {
	if h.Scopes == 0 {
		h.Scopes = 32
	}
	if h.Symbols == 0 {
		h.Symbols = 64
	}
	t := &Table{
		scopes:  make([]Scope, 1, h.Scopes+1), // index 0 reserved for NoScopeID
		symbols: make([]Symbol, 1, h.Symbols+1),
		refs:    make(map[ast.NodeID][]SymbolID),
	}
	t.global = t.newScope(ScopeGlobal, NoScopeID, ast.NoNodeID)
	return t
}

func (t *Table) newScope(kind ScopeKind, parent ScopeID, owner ast.NodeID) ScopeID {
	value, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	t.scopes = append(t.scopes, Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		NameIndex: make(map[string]SymbolID),
	})
	return ScopeID(value)
}

func (t *Table) newSymbol(sym Symbol) SymbolID {
	value, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	t.symbols = append(t.symbols, sym)
	return SymbolID(value)
}

// Scope returns the scope pointer or nil if ID is invalid.
func (t *Table) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Symbol returns the symbol pointer or nil if ID is invalid.
func (t *Table) Symbol(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// Global returns the script-wide scope.
func (t *Table) Global() ScopeID { return t.global }

// Len reports total number of symbols excluding the sentinel.
func (t *Table) Len() int { return len(t.symbols) - 1 }

// declare adds decl under name in scope, merging with an existing symbol.
func (t *Table) declare(scope ScopeID, name string, kind SymbolKind, decl ast.DeclRef) SymbolID {
	if name == "" {
		return NoSymbolID
	}
	sc := t.Scope(scope)
	if id, ok := sc.NameIndex[name]; ok {
		sym := t.Symbol(id)
		sym.Decls = append(sym.Decls, decl)
		// namespace merges with class/function/enum; the value kind wins
		if sym.Kind == SymbolNamespace && kind != SymbolNamespace {
			sym.Kind = kind
		}
		return id
	}
	id := t.newSymbol(Symbol{Name: name, Kind: kind, Scope: scope, Decls: []ast.DeclRef{decl}})
	sc.NameIndex[name] = id
	return id
}

// addMember links child into the member table of owner.
func (t *Table) addMember(owner SymbolID, name string, child SymbolID) {
	sym := t.Symbol(owner)
	if sym == nil || name == "" || !child.IsValid() {
		return
	}
	if sym.Members == nil {
		sym.Members = make(map[string]SymbolID)
	}
	if _, ok := sym.Members[name]; !ok {
		sym.Members[name] = child
	}
}

// memberSymbol returns a member of owner, creating one for kind when absent.
// Members declared in several places merge into one symbol.
func (t *Table) memberSymbol(owner SymbolID, name string, kind SymbolKind, decl ast.DeclRef) SymbolID {
	sym := t.Symbol(owner)
	if sym == nil || name == "" {
		return NoSymbolID
	}
	if id := sym.member(name); id.IsValid() {
		m := t.Symbol(id)
		m.Decls = append(m.Decls, decl)
		return id
	}
	id := t.newSymbol(Symbol{Name: name, Kind: kind, Decls: []ast.DeclRef{decl}})
	t.addMember(owner, name, id)
	return id
}

// lookup walks the scope chain. Namespace and enum scopes also expose the
// members of their container symbol, which covers merged declarations.
func (t *Table) lookup(scope ScopeID, name string) SymbolID {
	for id := scope; id.IsValid(); {
		sc := t.Scope(id)
		if sym, ok := sc.NameIndex[name]; ok {
			return sym
		}
		if sc.Container.IsValid() {
			if m := t.Symbol(sc.Container).member(name); m.IsValid() {
				return m
			}
		}
		id = sc.Parent
	}
	return NoSymbolID
}

// Lookup resolves name in the global scope.
func (t *Table) Lookup(name string) []ast.DeclRef {
	return t.decls(t.Scope(t.global).NameIndex[name])
}

func (t *Table) decls(id SymbolID) []ast.DeclRef {
	sym := t.Symbol(id)
	if sym == nil {
		return nil
	}
	return sym.Decls
}

// Resolve implements ast.Resolver.
func (t *Table) Resolve(ref ast.NodeID) []ast.DeclRef {
	syms := t.refs[ref]
	switch len(syms) {
	case 0:
		return nil
	case 1:
		return t.decls(syms[0])
	}
	var out []ast.DeclRef
	for _, id := range syms {
		out = append(out, t.decls(id)...)
	}
	return out
}

// ResolveSymbols returns the symbols a reference was bound to.
func (t *Table) ResolveSymbols(ref ast.NodeID) []SymbolID {
	return t.refs[ref]
}

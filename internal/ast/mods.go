package ast

import "strings"

// Mods is a bit set of statement and member modifiers.
type Mods uint32

const (
	ModExport Mods = 1 << iota
	// ModExportInSource marks an export keyword already present in the source text.
	ModExportInSource
	ModDeclare
	ModDefault
	ModConst
	ModLet
	ModStatic
	ModAsync
	ModAbstract
	ModReadonly
	ModGetter
	ModSetter
	ModRest
	ModGenerator
	// ModSynthetic marks nodes created by a pass; they have no source text.
	ModSynthetic
)

func (m Mods) Has(flag Mods) bool { return m&flag != 0 }

var modNames = []struct {
	flag Mods
	name string
}{
	{ModExport, "export"},
	{ModDeclare, "declare"},
	{ModDefault, "default"},
	{ModConst, "const"},
	{ModLet, "let"},
	{ModStatic, "static"},
	{ModAsync, "async"},
	{ModAbstract, "abstract"},
	{ModReadonly, "readonly"},
	{ModGetter, "get"},
	{ModSetter, "set"},
	{ModRest, "rest"},
	{ModGenerator, "generator"},
	{ModSynthetic, "synthetic"},
}

func (m Mods) String() string {
	if m == 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, n := range modNames {
		if m&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

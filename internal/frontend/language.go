package frontend

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect selects the grammar used for a file.
type Dialect uint8

const (
	DialectTypeScript Dialect = iota
	DialectTSX
	DialectJavaScript
)

func (d Dialect) String() string {
	switch d {
	case DialectTSX:
		return "tsx"
	case DialectJavaScript:
		return "javascript"
	}
	return "typescript"
}

// DialectOf picks a grammar from the file extension. Declaration files and
// unknown extensions are parsed as TypeScript.
func DialectOf(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return DialectJavaScript
	case ".tsx":
		return DialectTSX
	}
	return DialectTypeScript
}

func (d Dialect) language() *sitter.Language {
	switch d {
	case DialectTSX:
		return tsx.GetLanguage()
	case DialectJavaScript:
		return javascript.GetLanguage()
	}
	return typescript.GetLanguage()
}

// newParser returns a parser for d. Parsers are not safe for concurrent
// use, so every worker owns its own.
func newParser(d Dialect) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(d.language())
	return p
}

// Package frontend turns TypeScript and JavaScript script files into the
// shared ast.Tree using tree-sitter grammars.
//
// Only the shapes the bundler inspects are modelled in detail: declarations,
// statement structure and expressions. Type annotations are dropped and any
// unrecognised statement becomes ast.StmtOther, which printers reproduce
// verbatim from the source text.
package frontend

package classify

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
)

func parse(t *testing.T, path, src string) (*ast.Tree, *ast.Unit) {
	t.Helper()
	tree := ast.NewTree(ast.Hints{})
	bag := diag.NewBag(8)
	unit, err := frontend.ParseText(context.Background(), tree, source.NewFileSet(), path, []byte(src), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("syntax errors: %+v", bag.Items())
	}
	return tree, unit
}

func texts(names []Name) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.Kind.String()+" "+n.Text)
	}
	return out
}

func TestNames(t *testing.T) {
	src := `const a = 1, b = 2;
let mutable = 3;
var legacy = 4;
const { c, d: [e, , f], ...rest } = source;
function fn() {}
class Klass {}
enum Runtime { A }
const enum Inlined { B }
namespace Outer.Inner {}
import Alias = Outer.Inner;
interface Shape {}
declare const ambient: number;
declare function ambientFn(): void;
console.log(a);
`
	tree, unit := parse(t, "a.ts", src)
	want := []string{
		"const a", "const b",
		"const c", "const e", "const f", "const rest",
		"function fn", "class Klass", "enum Runtime",
		"namespace Outer", "alias Alias",
	}
	if diff := cmp.Diff(want, texts(Names(tree, unit))); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeOnlyUnitsExportNothing(t *testing.T) {
	tree, unit := parse(t, "types.d.ts", "declare class Hidden {}\nexport const x: number;\n")
	if got := Names(tree, unit); len(got) != 0 {
		t.Fatalf("type-only unit exported %v", texts(got))
	}
}

func TestDeclPointsAtBindingSite(t *testing.T) {
	tree, unit := parse(t, "a.ts", "const [first] = list;\nclass Only {}\n")
	names := Names(tree, unit)
	if len(names) != 2 {
		t.Fatalf("got %v", texts(names))
	}
	if k := tree.Kind(names[0].Decl); k != ast.BindingElem {
		t.Fatalf("destructured decl kind = %v, want BindingElem", k)
	}
	if names[1].Decl != unit.Stmts[1] {
		t.Fatalf("class decl = %d, want statement %d", names[1].Decl, unit.Stmts[1])
	}
}

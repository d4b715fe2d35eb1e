package symbols

import (
	"context"
	"testing"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
)

type unitSrc struct{ path, text string }

func bind(t *testing.T, units ...unitSrc) (*ast.Program, *Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	ids := make([]source.FileID, 0, len(units))
	for _, u := range units {
		ids = append(ids, fs.AddVirtual(u.path, []byte(u.text)))
	}
	bag := diag.NewBag(32)
	r := diag.BagReporter{Bag: bag}
	prog, err := frontend.ParseFiles(context.Background(), fs, ids, r, frontend.Options{Jobs: 1})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	table := Bind(prog, r)
	prog.Resolver = table
	return prog, table, bag
}

// refsNamed collects every identifier node with the given text.
func refsNamed(prog *ast.Program, u *ast.Unit, name string) []ast.NodeID {
	var out []ast.NodeID
	for _, stmt := range u.Stmts {
		prog.Tree.Walk(stmt, func(id ast.NodeID, n *ast.Node) bool {
			if n.Kind == ast.ExprIdent && n.Text == name {
				out = append(out, id)
			}
			return true
		})
	}
	return out
}

func resolvedUnits(prog *ast.Program, ref ast.NodeID) []ast.UnitID {
	var out []ast.UnitID
	for _, d := range prog.Resolver.Resolve(ref) {
		out = append(out, d.Unit)
	}
	return out
}

func TestCrossUnitResolution(t *testing.T) {
	prog, table, bag := bind(t,
		unitSrc{"a.ts", "const x = 1;\nfunction helper() { return x; }\n"},
		unitSrc{"b.ts", "console.log(x, helper());\n"},
	)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	refs := refsNamed(prog, prog.Units[1], "x")
	if len(refs) != 1 {
		t.Fatalf("found %d refs to x, want 1", len(refs))
	}
	got := resolvedUnits(prog, refs[0])
	if len(got) != 1 || got[0] != prog.Units[0].ID {
		t.Fatalf("x resolves to units %v, want [%d]", got, prog.Units[0].ID)
	}
	if decls := table.Lookup("helper"); len(decls) != 1 || prog.Tree.Kind(decls[0].Decl) != ast.StmtFunc {
		t.Fatalf("helper decls = %+v", decls)
	}
	if refs := refsNamed(prog, prog.Units[1], "console"); len(prog.Resolver.Resolve(refs[0])) != 0 {
		t.Fatalf("console must stay unresolved")
	}
}

func TestShadowingStaysLocal(t *testing.T) {
	prog, _, _ := bind(t,
		unitSrc{"a.ts", "const x = 1;\n"},
		unitSrc{"b.ts", "function f(x) { return x; }\nfunction g() { let x = 2; { const x = 3; } return x; }\n"},
	)
	for _, ref := range refsNamed(prog, prog.Units[1], "x") {
		for _, u := range resolvedUnits(prog, ref) {
			if u == prog.Units[0].ID {
				t.Fatalf("shadowed x at node %d resolved to the other unit", ref)
			}
		}
	}
}

func TestVarHoistsOutOfBlocks(t *testing.T) {
	prog, table, _ := bind(t, unitSrc{"a.ts", "if (cond) { var late = 1; }\nfor (var i = 0; i < 1; i++) {}\nuse(late, i);\n"})
	if len(table.Lookup("late")) != 1 || len(table.Lookup("i")) != 1 {
		t.Fatalf("hoisted vars missing from the global scope")
	}
	ref := refsNamed(prog, prog.Units[0], "late")
	if len(prog.Resolver.Resolve(ref[len(ref)-1])) != 1 {
		t.Fatalf("late must resolve")
	}
}

func TestNamespaceMembersMergeAcrossUnits(t *testing.T) {
	prog, _, bag := bind(t,
		unitSrc{"a.ts", "namespace App.Util { export const answer = 42; }\n"},
		unitSrc{"b.ts", "namespace App.Util { export function read() { return answer; } }\n"},
		unitSrc{"c.ts", "App.Util.read();\nconst v = App.Util.answer;\n"},
	)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	// bare reference inside the merged namespace body
	inner := refsNamed(prog, prog.Units[1], "answer")
	if got := resolvedUnits(prog, inner[0]); len(got) != 1 || got[0] != prog.Units[0].ID {
		t.Fatalf("answer inside namespace resolves to %v", got)
	}

	var members []ast.NodeID
	prog.Tree.Walk(prog.Units[2].Stmts[1], func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind == ast.ExprMember && prog.Tree.NameText(id) == "answer" {
			members = append(members, id)
		}
		return true
	})
	if len(members) != 1 {
		t.Fatalf("found %d member accesses", len(members))
	}
	if got := resolvedUnits(prog, members[0]); len(got) != 1 || got[0] != prog.Units[0].ID {
		t.Fatalf("App.Util.answer resolves to %v", got)
	}
}

func TestEnumAndStaticMembers(t *testing.T) {
	prog, table, _ := bind(t,
		unitSrc{"a.ts", "enum Color { Red, Green = Red + 1 }\nclass Box { static empty = 0; size = 1; }\nconst cfg = { port: 80, host };\n"},
	)
	for _, name := range []string{"Color", "Box", "cfg"} {
		decls := table.Lookup(name)
		if len(decls) != 1 {
			t.Fatalf("%s decls = %+v", name, decls)
		}
	}
	check := func(owner, member string, want bool) {
		t.Helper()
		id := table.Scope(table.Global()).NameIndex[owner]
		got := table.Symbol(id).member(member).IsValid()
		if got != want {
			t.Fatalf("%s.%s member = %v, want %v", owner, member, got, want)
		}
	}
	check("Color", "Red", true)
	check("Box", "empty", true)
	check("Box", "size", false)
	check("cfg", "port", true)
	check("cfg", "host", true)

	red := refsNamed(prog, prog.Units[0], "Red")
	if len(red) != 2 || len(prog.Resolver.Resolve(red[1])) != 1 {
		t.Fatalf("bare enum member reference must resolve")
	}
}

func TestUsedBeforeDeclaration(t *testing.T) {
	_, _, bag := bind(t,
		unitSrc{"a.ts", "const early = late + 1;\nfunction lazy() { return late; }\nnew Widget();\n"},
		unitSrc{"b.ts", "const late = 1;\nclass Widget {}\n"},
	)
	if got := bag.Count(diag.SemaUsedBeforeDeclaration); got != 2 {
		t.Fatalf("2449 count = %d, want 2: %+v", got, bag.Items())
	}
	for _, d := range bag.Items() {
		if len(d.Notes) != 1 {
			t.Fatalf("diagnostic %q must point at the declaration", d.Message)
		}
	}
}

func TestUsedBeforeDeclarationIgnoresAmbient(t *testing.T) {
	_, _, bag := bind(t,
		unitSrc{"a.ts", "use(lib, early);\nconst early = 1;\n"},
		unitSrc{"lib.d.ts", "declare const lib: number;\n"},
	)
	if got := bag.Count(diag.SemaUsedBeforeDeclaration); got != 1 {
		t.Fatalf("2449 count = %d, want 1: %+v", got, bag.Items())
	}
}

func TestRedeclaredBlockScoped(t *testing.T) {
	_, _, bag := bind(t,
		unitSrc{"a.ts", "let dup = 1;\nnamespace Merge {}\n"},
		unitSrc{"b.ts", "const dup = 2;\nclass Merge {}\n"},
	)
	if got := bag.Count(diag.SemaRedeclaredBlockScoped); got != 1 {
		t.Fatalf("2451 count = %d, want 1: %+v", got, bag.Items())
	}
}

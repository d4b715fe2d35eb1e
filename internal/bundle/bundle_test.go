package bundle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tsmerge/internal/ast"
	"tsmerge/internal/config"
	"tsmerge/internal/diag"
	"tsmerge/internal/emit"
	"tsmerge/internal/export"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
	"tsmerge/internal/symbols"
)

func program(t *testing.T, files ...string) *ast.Program {
	t.Helper()
	fs := source.NewFileSet()
	var ids []source.FileID
	for i := 0; i < len(files); i += 2 {
		ids = append(ids, fs.AddVirtual(files[i], []byte(files[i+1])))
	}
	prog, err := frontend.ParseFiles(context.Background(), fs, ids, nil, frontend.Options{Jobs: 1})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	prog.Resolver = symbols.Bind(prog, nil)
	return prog
}

type memFS map[string]string

func (m memFS) write(path, text string, _ bool) error {
	m[path] = text
	return nil
}

func TestEmitOrdersAndAppendsExportList(t *testing.T) {
	prog := program(t,
		"b.ts", "console.log(x);\n",
		"a.ts", "const x = 1;\nfunction foo() {}\nclass Bar {}\n",
	)
	out := memFS{}
	b := New(config.Options{OutputPath: "out.js", ExportMode: export.ModeList}, nil)
	rep, err := b.Emit(context.Background(), prog, out.write, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "const x = 1;\nfunction foo() {}\nclass Bar {}\nexport { x, foo, Bar };\nconsole.log(x);\n"
	if diff := cmp.Diff(want, out["out.js"]); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"a.ts": {"x", "foo", "Bar"}, "b.ts": {}}, rep.Exports); diff != "" {
		t.Fatalf("exports mismatch (-want +got):\n%s", diff)
	}
	if len(rep.Order.Edges) != 1 {
		t.Fatalf("edges = %v, want one", rep.Order.Edges)
	}
}

func TestEmitPropertyAssignments(t *testing.T) {
	prog := program(t, "a.ts", "let y = 0;\nfunction foo() {}\n")
	out := memFS{}
	opts := config.Options{OutputPath: "out.js", ExportMode: export.ModeProperty, NamespacePath: "NS.Sub"}
	if _, err := New(opts, nil).Emit(context.Background(), prog, out.write, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "let y = 0;\nfunction foo() {}\nNS.Sub.foo = foo;\n"
	if got := out["out.js"]; got != want {
		t.Fatalf("output =\n%q\nwant\n%q", got, want)
	}
}

func TestEmitWithoutModeLeavesUnitsAlone(t *testing.T) {
	prog := program(t, "a.ts", "const a = 1;\n", "t.d.ts", "class C {}\n")
	out := memFS{}
	opts := config.Options{OutputPath: "out.js", DeclarationPath: "out.d.ts"}
	rep, err := New(opts, nil).Emit(context.Background(), prog, out.write, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if out["out.js"] != "const a = 1;\n" || out["out.d.ts"] != "class C {}\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if rep.Annotated != 0 {
		t.Fatalf("Annotated = %d", rep.Annotated)
	}
}

func TestDeclarationBundleIsAnnotatedInPlace(t *testing.T) {
	prog := program(t,
		"a.ts", "const a = 1;\n",
		"t.d.ts", "declare const t: number;\nclass C {}\nnamespace N {}\n",
	)
	out := memFS{}
	opts := config.Options{OutputPath: "out.js", DeclarationPath: "out.d.ts", ExportMode: export.ModeList}
	rep, err := New(opts, nil).Emit(context.Background(), prog, out.write, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "declare const t: number;\nexport class C {}\nexport namespace N {}\n"
	if got := out["out.d.ts"]; got != want {
		t.Fatalf("declarations =\n%q\nwant\n%q", got, want)
	}
	if rep.Annotated != 2 {
		t.Fatalf("Annotated = %d, want 2", rep.Annotated)
	}
	if got := out["out.js"]; got != "const a = 1;\nexport { a };\n" {
		t.Fatalf("runtime output = %q", got)
	}
}

func TestRepeatedPassesStartFresh(t *testing.T) {
	prog := program(t, "a.ts", "const a = 1;\n")
	b := New(config.Options{OutputPath: "out.js", ExportMode: export.ModeList}, nil)
	var outputs []string
	for range 2 {
		out := memFS{}
		if _, err := b.Emit(context.Background(), prog, out.write, nil); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		outputs = append(outputs, out["out.js"])
	}
	if outputs[0] != outputs[1] || outputs[0] != "const a = 1;\nexport { a };\n" {
		t.Fatalf("outputs differ between passes: %q", outputs)
	}
	s1, s2 := b.Transformers(prog, nil), b.Transformers(prog, nil)
	if s1 == s2 || s1.records == s2.records {
		t.Fatalf("Transformers must allocate new pass state")
	}
}

func TestUserPassesRunAfterBuiltIns(t *testing.T) {
	prog := program(t, "b.ts", "use(a);\n", "a.ts", "const a = 1;\n")
	var seen []string
	user := emit.Transformers{
		Before: []emit.Pass{emit.PassFunc(func(b *emit.Bundle) *emit.Bundle {
			for _, u := range b.Units {
				seen = append(seen, u.Path)
			}
			return nil
		})},
	}
	st := New(config.Options{OutputPath: "out.js"}, nil).Transformers(prog, nil)
	out := memFS{}
	if _, err := emit.Emit(context.Background(), prog, emit.Options{OutputPath: "out.js"}, st.Transformers(user), out.write, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if diff := cmp.Diff([]string{"a.ts", "b.ts"}, seen); diff != "" {
		t.Fatalf("user pass saw (-want +got):\n%s", diff)
	}
}

func TestHookWriteFileAnnotatesDeclarations(t *testing.T) {
	out := memFS{}
	b := New(config.Options{OutputPath: "out.js", ExportMode: export.ModeProperty}, nil)
	write := b.HookWriteFile(out.write, nil)

	if err := write("lib.d.ts", "declare function f(): void;\nclass K {}\n", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := write("lib.js", "class K {}\n", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := out["lib.d.ts"]; got != "declare function f(): void;\nexport class K {}\n" {
		t.Fatalf("lib.d.ts = %q", got)
	}
	if got := out["lib.js"]; got != "class K {}\n" {
		t.Fatalf("lib.js = %q", got)
	}

	// already annotated text stays as it is
	if err := write("lib.d.ts", out["lib.d.ts"], false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := out["lib.d.ts"]; got != "declare function f(): void;\nexport class K {}\n" {
		t.Fatalf("second pass changed text: %q", got)
	}
}

func TestHookWriteFileWithoutModePassesThrough(t *testing.T) {
	out := memFS{}
	write := New(config.Options{OutputPath: "out.js"}, nil).HookWriteFile(out.write, nil)
	if err := write("lib.d.ts", "class K {}\n", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := out["lib.d.ts"]; got != "class K {}\n" {
		t.Fatalf("lib.d.ts = %q", got)
	}
}

func TestHookProgramFactoryRewiresEveryBuild(t *testing.T) {
	calls := 0
	factory := func(context.Context) (*ast.Program, *diag.Bag, error) {
		calls++
		prog := program(t, "a.ts", "const a = b;\n", "b.ts", "const b = a;\n")
		bag := diag.NewBag(16)
		bag.Add(diag.NewError(diag.SemaUsedBeforeDeclaration, source.Span{}, "Block-scoped variable 'b' used before its declaration."))
		bag.Add(diag.NewError(diag.SynError, source.Span{}, "unexpected )"))
		return prog, bag, nil
	}
	b := New(config.Options{OutputPath: "out.js", Cycles: config.CyclesWarn}, nil)
	next := b.HookProgramFactory(factory, emit.Transformers{})

	first, err := next(context.Background())
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	second, err := next(context.Background())
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if calls != 2 || first.Program == second.Program || first.State == second.State {
		t.Fatalf("every build must get a new program and new passes")
	}
	if first.Diagnostics.Count(diag.SemaUsedBeforeDeclaration) != 0 || first.Diagnostics.Count(diag.SynError) != 1 {
		t.Fatalf("diagnostics not filtered: %+v", first.Diagnostics.Items())
	}

	out := memFS{}
	if _, err := emit.Emit(context.Background(), first.Program, emit.Options{OutputPath: "out.js"}, first.Transformers, out.write, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got := first.Diagnostics.Count(diag.PrjUnitCycle); got != 2 {
		t.Fatalf("cycle warnings = %d, want 2", got)
	}
	if second.Diagnostics.Count(diag.PrjUnitCycle) != 0 {
		t.Fatalf("cycle warnings leaked into another build")
	}
}

func TestHookProgramFactoryPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	next := New(config.Options{OutputPath: "out.js"}, nil).HookProgramFactory(func(context.Context) (*ast.Program, *diag.Bag, error) {
		return nil, nil, boom
	}, emit.Transformers{})
	if _, err := next(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestFilterDiagnostics(t *testing.T) {
	if FilterDiagnostics(nil) != nil {
		t.Fatalf("nil bag must stay nil")
	}
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SemaUsedBeforeDeclaration, source.Span{}, "x"))
	bag.Add(diag.NewError(diag.SemaRedeclaredBlockScoped, source.Span{}, "y"))
	if got := FilterDiagnostics(bag); got.Len() != 1 || bag.Len() != 2 {
		t.Fatalf("filtered %d of %d", got.Len(), bag.Len())
	}

	inner := diag.NewBag(4)
	r := FilterReporter(diag.BagReporter{Bag: inner})
	r.Report(diag.SemaUsedBeforeDeclaration, diag.SevError, source.Span{}, "x", nil)
	r.Report(diag.SynError, diag.SevError, source.Span{}, "y", nil)
	if inner.Len() != 1 {
		t.Fatalf("reporter kept %d diagnostics", inner.Len())
	}
}

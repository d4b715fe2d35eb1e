package emit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
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
	return prog
}

type memWriter struct {
	files map[string]string
	fail  map[string]bool
	order []string
}

func (m *memWriter) write(path, text string, bom bool) error {
	m.order = append(m.order, path)
	if m.fail[path] {
		return errors.New("disk full")
	}
	if bom {
		text = "\ufeff" + text
	}
	m.files[path] = text
	return nil
}

func TestEmitRunsPassesInOrder(t *testing.T) {
	prog := program(t, "a.ts", "const a = 1;\n", "b.ts", "const b = 2;\n", "t.d.ts", "declare const t: number;\n")
	var trace []string
	reverse := PassFunc(func(b *Bundle) *Bundle {
		trace = append(trace, "before")
		units := make([]*ast.Unit, 0, len(b.Units))
		for i := len(b.Units) - 1; i >= 0; i-- {
			units = append(units, b.Units[i])
		}
		return &Bundle{Program: b.Program, Units: units}
	})
	after := PassFunc(func(b *Bundle) *Bundle {
		trace = append(trace, "after")
		return nil
	})
	decls := PassFunc(func(b *Bundle) *Bundle {
		if !b.Declarations || len(b.Units) != 1 {
			t.Fatalf("declaration bundle = %+v", b)
		}
		trace = append(trace, "decls")
		return b
	})

	w := &memWriter{files: map[string]string{}}
	res, err := Emit(context.Background(), prog,
		Options{OutputPath: "out.js", DeclarationPath: "out.d.ts"},
		Transformers{Before: []Pass{reverse}, After: []Pass{after}, AfterDeclarations: []Pass{decls}},
		w.write, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Join(trace, ",") != "before,after,decls" {
		t.Fatalf("trace = %v", trace)
	}
	if got := w.files["out.js"]; got != "const b = 2;\nconst a = 1;\n" {
		t.Fatalf("out.js = %q", got)
	}
	if got := w.files["out.d.ts"]; got != "declare const t: number;\n" {
		t.Fatalf("out.d.ts = %q", got)
	}
	if len(res.Outputs) != 2 || !res.Outputs[0].Written || !res.Outputs[1].Written {
		t.Fatalf("outputs = %+v", res.Outputs)
	}
}

func TestWriteFailureDoesNotStopLaterWrites(t *testing.T) {
	prog := program(t, "a.ts", "const a = 1;\n", "t.d.ts", "declare const t: number;\n")
	w := &memWriter{files: map[string]string{}, fail: map[string]bool{"out.js": true}}
	bag := diag.NewBag(4)
	res, err := Emit(context.Background(), prog,
		Options{OutputPath: "out.js", DeclarationPath: "out.d.ts", BOM: true},
		Transformers{}, w.write, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Join(w.order, ",") != "out.js,out.d.ts" {
		t.Fatalf("write order = %v", w.order)
	}
	if bag.Count(diag.IOWriteFailed) != 1 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	if res.Outputs[0].Written || !res.Outputs[1].Written {
		t.Fatalf("outputs = %+v", res.Outputs)
	}
	if !strings.HasPrefix(w.files["out.d.ts"], "\ufeff") {
		t.Fatalf("BOM missing")
	}
}

func TestEmitHonoursCancellation(t *testing.T) {
	prog := program(t, "a.ts", "const a = 1;\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &memWriter{files: map[string]string{}}
	if _, err := Emit(ctx, prog, Options{OutputPath: "out.js"}, Transformers{}, w.write, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(w.order) != 0 {
		t.Fatalf("cancelled emit wrote %v", w.order)
	}
}

func TestDiskWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.js")
	if err := DiskWriter(path, "x;\n", true); err != nil {
		t.Fatalf("DiskWriter: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "\ufeffx;\n" {
		t.Fatalf("content = %q", data)
	}
}

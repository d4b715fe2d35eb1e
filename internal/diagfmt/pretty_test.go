package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tsmerge/internal/diag"
	"tsmerge/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/b.ts", []byte("const y = 1;\nconsole.log(later);\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaUsedBeforeDeclaration, source.Span{File: id, Start: 25, End: 30},
		"Block-scoped variable 'later' used before its declaration."))
	bag.Add(diag.NewError(diag.IOWriteFailed, source.Span{File: source.NoFile}, "out.js: permission denied"))
	return bag, fs
}

func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/b.ts:2:13"},
		{"Relative path", PathModeRelative, "src/b.ts:2:13"},
		{"Basename only", PathModeBasename, "b.ts:2:13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, Context: 1})
			out := buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Fatalf("expected %q in output:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR SEM2449") {
				t.Fatalf("expected code in output:\n%s", out)
			}
		})
	}
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasSuffix(lines[1], "console.log(later);") {
		t.Fatalf("context line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], strings.Repeat(" ", 12)+"^~~~~") {
		t.Fatalf("marker line = %q", lines[2])
	}
	if !strings.Contains(buf.String(), "tsmerge: ERROR IO4002: out.js: permission denied") {
		t.Fatalf("detached diagnostic missing:\n%s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative, Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "SEM2449" {
		t.Fatalf("unexpected output: %+v", out)
	}
	loc := out.Diagnostics[0].Location
	if loc.File != "src/b.ts" || loc.StartLine != 2 || loc.StartCol != 13 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

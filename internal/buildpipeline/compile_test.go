package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tsmerge/internal/config"
	"tsmerge/internal/diag"
	"tsmerge/internal/export"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) stages(status Status) []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Stage
	for _, e := range r.events {
		if e.File == "" && e.Status == status {
			out = append(out, e.Stage)
		}
	}
	return out
}

func writeSources(t *testing.T, dir string, files ...string) []string {
	t.Helper()
	var paths []string
	for i := 0; i < len(files); i += 2 {
		p := filepath.Join(dir, files[i])
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(files[i+1]), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestCompileWritesOrderedBundle(t *testing.T) {
	dir := t.TempDir()
	sources := writeSources(t, dir,
		"src/main.ts", "console.log(x);\n",
		"src/lib.ts", "const x = 1;\n",
	)
	out := filepath.Join(dir, "dist", "out.js")
	progress := &recorder{}
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	res, err := Compile(context.Background(), &CompileRequest{
		Sources:  sources,
		BaseDir:  dir,
		Options:  config.Options{OutputPath: out, ExportMode: export.ModeList},
		Progress: progress,
		Cache:    cache,
		Jobs:     1,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "const x = 1;\nexport { x };\nconsole.log(x);\n", string(data))

	require.NotEmpty(t, res.BuildID)
	require.Zero(t, res.Bag.Count(diag.SemaUsedBeforeDeclaration), "reordering makes the diagnostic obsolete")
	require.False(t, res.Bag.HasErrors())
	for _, stage := range Stages {
		require.True(t, res.Timings.Has(stage), stage)
	}
	require.Equal(t, Stages, progress.stages(StatusDone))

	var rec BuildRecord
	ok, err := cache.Get(CacheKey(out), &rec)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, res.BuildID, rec.BuildID)
	require.Len(t, rec.Units, 2)
	require.Equal(t, "lib.ts", filepath.Base(rec.Units[0]))
	require.Len(t, rec.Edges, 1)
	require.Equal(t, "list", rec.Mode)
}

func TestCompileCycleErrorSkipsOutput(t *testing.T) {
	dir := t.TempDir()
	sources := writeSources(t, dir, "a.ts", "const a = b;\n", "b.ts", "const b = a;\n")
	out := filepath.Join(dir, "out.js")

	res, err := Compile(context.Background(), &CompileRequest{
		Sources: sources,
		Options: config.Options{OutputPath: out, Cycles: config.CyclesError},
	})
	require.ErrorIs(t, err, ErrCyclic)
	require.True(t, res.Bag.HasErrors())
	require.Equal(t, 2, res.Bag.Count(diag.PrjUnitCycle))
	_, statErr := os.Stat(out)
	require.True(t, errors.Is(statErr, os.ErrNotExist), "no output expected")
}

func TestCompileWriteFailuresAreDiagnostics(t *testing.T) {
	dir := t.TempDir()
	sources := writeSources(t, dir, "a.ts", "const a = 1;\n", "t.d.ts", "declare const t: number;\n")
	var written []string
	res, err := Compile(context.Background(), &CompileRequest{
		Sources: sources,
		Options: config.Options{OutputPath: "out.js", DeclarationPath: "out.d.ts"},
		Write: func(path, _ string, _ bool) error {
			written = append(written, path)
			if path == "out.js" {
				return errors.New("read-only file system")
			}
			return nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"out.js", "out.d.ts"}, written)
	require.Equal(t, 1, res.Bag.Count(diag.IOWriteFailed))
	require.False(t, res.Report.Outputs[0].Written)
	require.True(t, res.Report.Outputs[1].Written)
}

func TestCompileReportsUnreadableSources(t *testing.T) {
	dir := t.TempDir()
	sources := writeSources(t, dir, "a.ts", "const a = 1;\n")
	sources = append(sources, filepath.Join(dir, "missing.ts"))

	res, err := Compile(context.Background(), &CompileRequest{
		Sources: sources,
		Options: config.Options{OutputPath: filepath.Join(dir, "out.js")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Bag.Count(diag.IOReadFailed))
	require.Len(t, res.Program.Units, 1)
}

func TestCompileRejectsIncompleteRequests(t *testing.T) {
	_, err := Compile(context.Background(), nil)
	require.Error(t, err)
	_, err = Compile(context.Background(), &CompileRequest{})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Compile(ctx, &CompileRequest{Options: config.Options{OutputPath: "out.js"}, Write: func(string, string, bool) error { return nil }})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDisplayFiles(t *testing.T) {
	base := t.TempDir()
	got := displayFiles([]string{
		filepath.Join(base, "src", "b.ts"),
		filepath.Join(base, "src", "a.ts"),
		filepath.Join(base, "src", "b.ts"),
	}, base)
	require.Equal(t, []string{"src/b.ts", "src/a.ts"}, got)
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(filepath.Join(t.TempDir(), "c"))
	require.NoError(t, err)
	key := CacheKey("dist/out.js")

	var rec BuildRecord
	ok, err := cache.Get(key, &rec)
	require.NoError(t, err)
	require.False(t, ok)

	in := &BuildRecord{
		Schema:  cacheSchemaVersion,
		BuildID: "b1",
		Units:   []string{"a.ts", "b.ts"},
		Edges:   []EdgeRecord{{From: "b.ts", To: "a.ts"}},
		Exports: map[string][]string{"a.ts": {"x"}},
	}
	require.NoError(t, cache.Put(key, in))
	ok, err = cache.Get(key, &rec)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in.Units, rec.Units)
	require.Equal(t, in.Edges, rec.Edges)
	require.Equal(t, in.Exports, rec.Exports)

	require.NoError(t, cache.DropAll())
	rec = BuildRecord{}
	ok, err = cache.Get(key, &rec)
	require.NoError(t, err)
	require.False(t, ok)
}

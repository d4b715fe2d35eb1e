package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tsmerge/internal/export"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseOptions(t *testing.T) {
	opts, err := Parse(Raw{OutputPath: "out.js", ExportMode: "es6"}, "")
	require.NoError(t, err)
	require.Equal(t, export.ModeList, opts.ExportMode)
	require.Equal(t, CyclesIgnore, opts.Cycles)

	opts, err = Parse(Raw{OutputPath: "out.js", NamespacePath: "App.Lib"}, "")
	require.NoError(t, err)
	require.Equal(t, export.ModeProperty, opts.ExportMode, "namespace alone selects property mode")
	require.Equal(t, "App.Lib", opts.Export().Target())

	opts, err = Parse(Raw{OutputPath: "out.js", ExportMode: "commonjs"}, "")
	require.NoError(t, err)
	require.Equal(t, export.DefaultNamespace, opts.Export().Target())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  Raw
		want error
	}{
		{"missing output", Raw{}, ErrMissingOption},
		{"bad mode", Raw{OutputPath: "o.js", ExportMode: "amd"}, ErrUnknownExportMode},
		{"bad cycles", Raw{OutputPath: "o.js", Cycles: "panic"}, ErrUnknownCycleMode},
		{"list with namespace", Raw{OutputPath: "o.js", ExportMode: "list", NamespacePath: "NS"}, ErrNamespaceWithoutMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw, "tsmerge.toml")
			require.ErrorIs(t, err, tc.want)
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, "tsmerge.toml", cfgErr.Source)
		})
	}
	_, err := Parse(Raw{OutputPath: "o.js", NamespacePath: "a..b"}, "")
	require.Error(t, err)
}

func TestMergePrefersOverrides(t *testing.T) {
	base := Raw{OutputPath: "a.js", ExportMode: "list", Files: []string{"x.ts"}}
	got := Merge(base, Raw{OutputPath: "b.js", BOM: true})
	require.Equal(t, "b.js", got.OutputPath)
	require.Equal(t, "list", got.ExportMode)
	require.Equal(t, []string{"x.ts"}, got.Files)
	require.True(t, got.BOM)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsmerge.yaml"), "bundle:\n  outputPath: out.js\n")
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	path, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "tsmerge.yaml"), path)
}

func TestLoadTOMLAndSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsmerge.toml"), `[bundle]
files = ["boot.ts"]
include = ["src"]
exclude = ["src/skip/*"]
outputPath = "dist/out.js"
declarationPath = "dist/out.d.ts"
exportMode = "global"
namespacePath = "App"
`)
	writeFile(t, filepath.Join(root, "boot.ts"), "boot();\n")
	writeFile(t, filepath.Join(root, "src", "b.ts"), "")
	writeFile(t, filepath.Join(root, "src", "a.ts"), "")
	writeFile(t, filepath.Join(root, "src", "types.d.ts"), "")
	writeFile(t, filepath.Join(root, "src", "notes.md"), "")
	writeFile(t, filepath.Join(root, "src", "skip", "c.ts"), "")
	writeFile(t, filepath.Join(root, "src", "node_modules", "dep.js"), "")

	m, err := Load(filepath.Join(root, "tsmerge.toml"))
	require.NoError(t, err)

	opts, err := m.Options(Raw{})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Root, "dist", "out.js"), opts.OutputPath)
	require.Equal(t, export.ModeProperty, opts.ExportMode)

	files, err := m.Sources(Raw{})
	require.NoError(t, err)
	want := []string{
		filepath.Join(m.Root, "boot.ts"),
		filepath.Join(m.Root, "src", "a.ts"),
		filepath.Join(m.Root, "src", "b.ts"),
		filepath.Join(m.Root, "src", "types.d.ts"),
	}
	require.Equal(t, want, files)
}

func TestLoadRejectsBadManifests(t *testing.T) {
	root := t.TempDir()
	noBundle := filepath.Join(root, "a", "tsmerge.toml")
	writeFile(t, noBundle, "[other]\nx = 1\n")
	_, err := Load(noBundle)
	require.ErrorIs(t, err, ErrMissingOption)

	unknown := filepath.Join(root, "b", "tsmerge.yaml")
	writeFile(t, unknown, "bundle:\n  outputPath: o.js\n  typo: 1\n")
	_, err = Load(unknown)
	require.Error(t, err)

	_, err = Load(filepath.Join(root, "missing.toml"))
	require.ErrorIs(t, err, ErrManifestNotFound)
}

func TestEncodeRoundTrip(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"tsmerge.toml", "tsmerge.yaml"} {
		path := filepath.Join(root, name)
		data, err := Encode(path, Template())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o600))

		m, err := Load(path)
		require.NoError(t, err, name)
		require.Equal(t, Template(), m.Raw, name)
		_ = os.Remove(path)
	}
}

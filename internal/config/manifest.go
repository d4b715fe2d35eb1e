package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ManifestNames are the file names searched for, in priority order.
var ManifestNames = []string{"tsmerge.toml", "tsmerge.yaml", "tsmerge.yml"}

// Manifest is a loaded project manifest.
type Manifest struct {
	Path string
	Root string
	Raw  Raw
}

type manifestFile struct {
	Bundle Raw `toml:"bundle" yaml:"bundle"`
}

// Find walks up from startDir looking for a manifest.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads a manifest; the format follows the file extension.
func Load(path string) (*Manifest, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}
		return nil, err
	}
	var file manifestFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if !meta.IsDefined("bundle") {
			return nil, &Error{Option: "[bundle]", Source: path, Err: ErrMissingOption}
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Raw: file.Bundle}, nil
}

// Discover finds and loads the manifest above startDir.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrManifestNotFound
	}
	return Load(path)
}

// Options validates the manifest values merged with overrides.
func (m *Manifest) Options(over Raw) (Options, error) {
	opts, err := Parse(Merge(m.Raw, over), m.Path)
	if err != nil {
		return Options{}, err
	}
	opts.OutputPath = m.resolve(opts.OutputPath)
	if opts.DeclarationPath != "" {
		opts.DeclarationPath = m.resolve(opts.DeclarationPath)
	}
	return opts, nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}

// sourceExts lists what Include directories contribute.
var sourceExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

// Sources lists input files: explicit Files first in the given order, then
// every source under the Include directories sorted by path. Exclude
// patterns match slash paths relative to the manifest root.
func (m *Manifest) Sources(over Raw) ([]string, error) {
	raw := Merge(m.Raw, over)
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) error {
		rel, err := filepath.Rel(m.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range raw.Exclude {
			if ok, _ := filepath.Match(pattern, rel); ok {
				return nil
			}
		}
		if _, dup := seen[p]; dup {
			return nil
		}
		seen[p] = struct{}{}
		out = append(out, p)
		return nil
	}
	for _, f := range raw.Files {
		p := m.resolve(f)
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%s: files: %w", m.Path, err)
		}
		if err := add(p); err != nil {
			return nil, err
		}
	}
	for _, dir := range raw.Include {
		var found []string
		err := filepath.WalkDir(m.resolve(dir), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name == "node_modules" || (strings.HasPrefix(name, ".") && name != ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSource(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: include %s: %w", m.Path, dir, err)
		}
		slices.Sort(found)
		for _, p := range found {
			if err := add(p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Encode renders raw as a manifest in the format implied by path.
func Encode(path string, raw Raw) ([]byte, error) {
	file := manifestFile{Bundle: raw}
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(file); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Template is the starting manifest written by `tsmerge init`.
func Template() Raw {
	return Raw{
		Include:    []string{"src"},
		OutputPath: "dist/bundle.js",
		ExportMode: "none",
		Cycles:     "warn",
	}
}

// IsSource reports whether path has an extension Include directories pick up.
func IsSource(path string) bool {
	return slices.Contains(sourceExts, strings.ToLower(filepath.Ext(path)))
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tsmerge/internal/config"
)

const noManifestMessage = "no tsmerge.toml found\nplease run `tsmerge init` or name the inputs explicitly, e.g.:\n  tsmerge build -o dist/bundle.js src/a.ts src/b.ts"

// project is what a command works on: validated options plus the inputs.
type project struct {
	manifest *config.Manifest // nil when everything comes from flags
	root     string
	over     config.Raw
	options  config.Options
}

func (p *project) sources() ([]string, error) {
	if p.manifest != nil {
		return p.manifest.Sources(p.over)
	}
	out := make([]string, 0, len(p.over.Files))
	for _, f := range p.over.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}

// overrides collects option values given on the command line.
func overrides(cmd *cobra.Command, args []string) (config.Raw, error) {
	flags := cmd.Flags()
	var raw config.Raw
	var err error
	get := func(name string, dst *string) {
		if err != nil {
			return
		}
		*dst, err = flags.GetString(name)
	}
	get("output", &raw.OutputPath)
	get("declaration", &raw.DeclarationPath)
	get("module", &raw.ExportMode)
	get("global", &raw.NamespacePath)
	get("cycles", &raw.Cycles)
	if err != nil {
		return raw, err
	}
	if raw.BOM, err = flags.GetBool("bom"); err != nil {
		return raw, err
	}
	raw.Files = args
	return raw, nil
}

// loadProject finds the manifest (from -p or upward from the working
// directory), applies flag overrides and validates the result. Without a
// manifest, explicit inputs and -o are required.
func loadProject(cmd *cobra.Command, args []string) (*project, error) {
	over, err := overrides(cmd, args)
	if err != nil {
		return nil, err
	}
	projectPath, err := cmd.Flags().GetString("project")
	if err != nil {
		return nil, err
	}

	var manifest *config.Manifest
	switch {
	case projectPath != "":
		path := projectPath
		if st, statErr := os.Stat(path); statErr == nil && st.IsDir() {
			found, ok, findErr := findIn(path)
			if findErr != nil {
				return nil, findErr
			}
			if !ok {
				return nil, fmt.Errorf("%s: %w", projectPath, config.ErrManifestNotFound)
			}
			path = found
		}
		if manifest, err = config.Load(path); err != nil {
			return nil, err
		}
	default:
		manifest, err = config.Discover(".")
		if err != nil && !errors.Is(err, config.ErrManifestNotFound) {
			return nil, err
		}
	}

	if manifest == nil {
		if len(over.Files) == 0 || over.OutputPath == "" {
			return nil, &exitError{code: exitFailure, err: errors.New(noManifestMessage)}
		}
		opts, err := config.Parse(over, "command line")
		if err != nil {
			return nil, err
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return &project{root: wd, over: over, options: opts}, nil
	}
	opts, err := manifest.Options(over)
	if err != nil {
		return nil, err
	}
	return &project{manifest: manifest, root: manifest.Root, over: over, options: opts}, nil
}

// findIn looks for a manifest directly inside dir.
func findIn(dir string) (string, bool, error) {
	for _, name := range config.ManifestNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, err
		}
	}
	return "", false, nil
}

func displayPath(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

package config

import (
	"fmt"
	"strings"

	"tsmerge/internal/export"
)

// CycleMode says what happens when units depend on each other in a cycle.
type CycleMode uint8

const (
	CyclesIgnore CycleMode = iota // break silently
	CyclesWarn
	CyclesError
)

func (m CycleMode) String() string {
	switch m {
	case CyclesIgnore:
		return "ignore"
	case CyclesWarn:
		return "warn"
	case CyclesError:
		return "error"
	default:
		return fmt.Sprintf("CycleMode(%d)", uint8(m))
	}
}

// ParseCycleMode parses ignore, warn or error; empty means ignore.
func ParseCycleMode(s string) (CycleMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return CyclesIgnore, true
	case "warn", "warning":
		return CyclesWarn, true
	case "error":
		return CyclesError, true
	}
	return CyclesIgnore, false
}

// Raw holds option values as written in a manifest or on the command line.
type Raw struct {
	Files           []string `toml:"files,omitempty" yaml:"files,omitempty"`
	Include         []string `toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude         []string `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
	OutputPath      string   `toml:"outputPath" yaml:"outputPath"`
	DeclarationPath string   `toml:"declarationPath,omitempty" yaml:"declarationPath,omitempty"`
	ExportMode      string   `toml:"exportMode,omitempty" yaml:"exportMode,omitempty"`
	NamespacePath   string   `toml:"namespacePath,omitempty" yaml:"namespacePath,omitempty"`
	Cycles          string   `toml:"cycles,omitempty" yaml:"cycles,omitempty"`
	BOM             bool     `toml:"bom,omitempty" yaml:"bom,omitempty"`
}

// Merge returns base with every non-empty value of over applied on top.
func Merge(base, over Raw) Raw {
	out := base
	if len(over.Files) > 0 {
		out.Files = over.Files
	}
	if len(over.Include) > 0 {
		out.Include = over.Include
	}
	if len(over.Exclude) > 0 {
		out.Exclude = over.Exclude
	}
	pick := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	pick(&out.OutputPath, over.OutputPath)
	pick(&out.DeclarationPath, over.DeclarationPath)
	pick(&out.ExportMode, over.ExportMode)
	pick(&out.NamespacePath, over.NamespacePath)
	pick(&out.Cycles, over.Cycles)
	out.BOM = out.BOM || over.BOM
	return out
}

// Options are validated bundling options.
type Options struct {
	OutputPath      string
	DeclarationPath string
	ExportMode      export.Mode
	NamespacePath   string
	Cycles          CycleMode
	BOM             bool
}

// Export returns the synthesizer options.
func (o Options) Export() export.Options {
	return export.Options{Mode: o.ExportMode, Namespace: o.NamespacePath}
}

// Parse validates raw. source names the manifest for error messages.
func Parse(raw Raw, source string) (Options, error) {
	opts := Options{
		OutputPath:      strings.TrimSpace(raw.OutputPath),
		DeclarationPath: strings.TrimSpace(raw.DeclarationPath),
		NamespacePath:   strings.TrimSpace(raw.NamespacePath),
		BOM:             raw.BOM,
	}
	if opts.OutputPath == "" {
		return Options{}, &Error{Option: "outputPath", Source: source, Err: ErrMissingOption}
	}
	mode, ok := export.ParseMode(raw.ExportMode)
	if !ok {
		return Options{}, &Error{Option: "exportMode", Value: raw.ExportMode, Source: source, Err: ErrUnknownExportMode}
	}
	if strings.TrimSpace(raw.ExportMode) == "" && opts.NamespacePath != "" {
		mode = export.ModeProperty
	}
	if mode == export.ModeList && opts.NamespacePath != "" {
		return Options{}, &Error{Option: "namespacePath", Value: opts.NamespacePath, Source: source, Err: ErrNamespaceWithoutMode}
	}
	if opts.NamespacePath != "" && !validPath(opts.NamespacePath) {
		return Options{}, &Error{Option: "namespacePath", Value: opts.NamespacePath, Source: source, Err: fmt.Errorf("not a dotted identifier path")}
	}
	opts.ExportMode = mode
	cycles, ok := ParseCycleMode(raw.Cycles)
	if !ok {
		return Options{}, &Error{Option: "cycles", Value: raw.Cycles, Source: source, Err: ErrUnknownCycleMode}
	}
	opts.Cycles = cycles
	return opts, nil
}

// validPath accepts `a.b.c` where every part is an identifier.
func validPath(p string) bool {
	for _, part := range strings.Split(p, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
			if i > 0 {
				ok = ok || (r >= '0' && r <= '9')
			}
			if !ok {
				return false
			}
		}
	}
	return true
}

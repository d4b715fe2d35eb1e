package config

import (
	"errors"
	"fmt"
)

var (
	ErrMissingOption        = errors.New("missing required option")
	ErrUnknownExportMode    = errors.New("unknown export mode")
	ErrUnknownCycleMode     = errors.New("unknown cycle mode")
	ErrNamespaceWithoutMode = errors.New("namespacePath needs the property-assignment export mode")
	ErrManifestNotFound     = errors.New("no tsmerge manifest found")
)

// Error is a configuration error tied to one option. It is reported before
// any pass runs.
type Error struct {
	Option string
	Value  string
	// Source is the manifest path, empty for command-line values.
	Source string
	Err    error
}

func (e *Error) Error() string {
	prefix := ""
	if e.Source != "" {
		prefix = e.Source + ": "
	}
	if e.Value == "" {
		return fmt.Sprintf("%s%s: %v", prefix, e.Option, e.Err)
	}
	return fmt.Sprintf("%s%s %q: %v", prefix, e.Option, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

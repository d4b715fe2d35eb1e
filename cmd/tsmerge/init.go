package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tsmerge/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new tsmerge project",
		Long: `Initialize a tsmerge project by writing a manifest (tsmerge.toml, or
tsmerge.yaml with --format yaml) and an empty src directory. If [path] is
omitted, initializes the current directory; a missing directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().String("format", "toml", "manifest format (toml|yaml)")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	var name string
	switch format {
	case "toml":
		name = "tsmerge.toml"
	case "yaml", "yml":
		name = "tsmerge.yaml"
	default:
		return fmt.Errorf("unsupported format %q (must be toml or yaml)", format)
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, statErr := os.Stat(target); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	if existing, ok, err := findIn(target); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("project already initialized: %s exists", existing)
	}

	data, err := config.Encode(name, config.Template())
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(target, name)
	if err := os.WriteFile(manifestPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(target, "src"), 0o755); err != nil {
		return fmt.Errorf("failed to create src: %w", err)
	}

	out := cmd.OutOrStdout()
	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, target); err == nil {
			rel = r
		}
	}
	fmt.Fprintf(out, "Initialized tsmerge project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", name)
	fmt.Fprintf(out, "  - src/\n")
	return nil
}

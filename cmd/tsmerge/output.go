package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tsmerge/internal/diag"
	"tsmerge/internal/diagfmt"
	"tsmerge/internal/source"
)

// printDiagnostics renders bag in the format chosen by --format.
func printDiagnostics(cmd *cobra.Command, out io.Writer, bag *diag.Bag, fs *source.FileSet, format string) error {
	if bag == nil || bag.Len() == 0 && format != "json" {
		return nil
	}
	if fs == nil {
		fs = source.NewFileSet()
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	bag.Sort()
	switch strings.ToLower(format) {
	case "", "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		shown := bag
		if maxDiagnostics > 0 && bag.Len() > maxDiagnostics {
			shown = diag.NewBag(maxDiagnostics)
			for _, d := range bag.Items()[:maxDiagnostics] {
				shown.Add(d)
			}
		}
		diagfmt.Pretty(out, shown, fs, diagfmt.PrettyOpts{
			Color:     colored,
			Context:   1,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: true,
		})
		if shown != bag {
			fmt.Fprintf(out, "... %d more diagnostics\n", bag.Len()-shown.Len())
		}
		return nil
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			Max:              maxDiagnostics,
			IncludeNotes:     true,
		})
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

// newLogger builds the CLI logger from --log-level.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" || level == "off" || level == "none" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	return cfg.Build()
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Flags().GetBool("quiet")
	return err == nil && q
}

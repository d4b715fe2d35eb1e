package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tsmerge/internal/buildpipeline"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the unit order of the last build",
		Long: `Graph prints the order, the dependency edges and the exports recorded by
the last build of the project's output.`,
		Args: cobra.NoArgs,
		RunE: runGraph,
	}
	cmd.Flags().String("format", "text", "output format (text|json|dot)")
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	proj, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	cache, err := buildpipeline.OpenDiskCache(cacheApp)
	if err != nil {
		return err
	}
	var rec buildpipeline.BuildRecord
	ok, err := cache.Get(buildpipeline.CacheKey(proj.options.OutputPath), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no build recorded for %s; run tsmerge build first", displayPath(proj.root, proj.options.OutputPath))
	}
	rel := func(p string) string { return displayPath(proj.root, p) }
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "", "text":
		renderGraphText(out, &rec, rel)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(&rec)
	case "dot":
		renderGraphDot(out, &rec, rel)
		return nil
	}
	return errors.New("unsupported format " + format + " (must be text, json or dot)")
}

func renderGraphText(out io.Writer, rec *buildpipeline.BuildRecord, rel func(string) string) {
	fmt.Fprintf(out, "build %s (%s)\n", rec.BuildID, rec.Finished.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "output %s, mode %s\n", rel(rec.Output), rec.Mode)
	fmt.Fprintln(out, "order:")
	for i, u := range rec.Units {
		fmt.Fprintf(out, "  %d. %s", i+1, rel(u))
		if names := rec.Exports[u]; len(names) > 0 {
			fmt.Fprintf(out, "  [%s]", strings.Join(names, ", "))
		}
		fmt.Fprintln(out)
	}
	if len(rec.Edges) > 0 {
		fmt.Fprintln(out, "depends on:")
		for _, e := range rec.Edges {
			fmt.Fprintf(out, "  %s -> %s\n", rel(e.From), rel(e.To))
		}
	}
	if len(rec.Cycles) > 0 {
		parts := make([]string, 0, len(rec.Cycles))
		for _, c := range rec.Cycles {
			parts = append(parts, rel(c))
		}
		fmt.Fprintf(out, "cycles broken at: %s\n", strings.Join(parts, ", "))
	}
}

func renderGraphDot(out io.Writer, rec *buildpipeline.BuildRecord, rel func(string) string) {
	fmt.Fprintln(out, "digraph units {")
	fmt.Fprintln(out, "  rankdir=LR;")
	for _, u := range rec.Units {
		fmt.Fprintf(out, "  %q [label=%q];\n", u, filepath.Base(rel(u)))
	}
	for _, e := range rec.Edges {
		fmt.Fprintf(out, "  %q -> %q;\n", e.From, e.To)
	}
	fmt.Fprintln(out, "}")
}

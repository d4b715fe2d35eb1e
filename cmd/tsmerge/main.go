// Package main implements the tsmerge CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tsmerge/internal/config"
	"tsmerge/internal/prof"
	"tsmerge/internal/version"
)

// Коды выхода
const (
	exitFailure       = 1
	exitUnknownMode   = 2
	exitMissingConfig = 3
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, config.ErrUnknownExportMode):
		return exitUnknownMode
	case errors.Is(err, config.ErrManifestNotFound):
		return exitMissingConfig
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tsmerge",
		Short: "Merge script files into one bundle in initialization order",
		Long: `tsmerge concatenates TypeScript/JavaScript script files so that every
top-level binding is initialized before it is read, and exposes the
merged top-level names as ES exports or as properties of a namespace.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.StringP("project", "p", "", "path to tsmerge.toml/tsmerge.yaml or its directory")
	pf.StringP("output", "o", "", "bundle output path (outputPath)")
	pf.StringP("declaration", "d", "", "declaration bundle output path (declarationPath)")
	pf.StringP("module", "m", "", "export mode: none, es6 (list) or commonjs/global (property)")
	pf.StringP("global", "g", "", "dotted namespace receiving exports (namespacePath)")
	pf.String("cycles", "", "what to do with dependency cycles (ignore|warn|error)")
	pf.Bool("bom", false, "write a UTF-8 byte order mark")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("log-level", "error", "log level (debug|info|warn|error|off)")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write runtime trace to file")
	root.PersistentPreRunE = startProfiling

	root.AddCommand(newBuildCmd())
	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// profiling is the profiler session of the running command, if any.
var profiling *prof.Session

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	var opts prof.Options
	var err error
	for name, dst := range map[string]*string{"cpu-profile": &opts.CPU, "mem-profile": &opts.Mem, "runtime-trace": &opts.Trace} {
		if *dst, err = flags.GetString(name); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if opts.Empty() {
		return nil
	}
	profiling, err = prof.Start(opts)
	return err
}

func main() {
	err := newRootCmd().Execute()
	if stopErr := profiling.Stop(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "failed to write profiles:", stopErr)
	}
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
	os.Exit(exitCodeFor(err))
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

func useColor(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch value {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		return isTerminal(os.Stdout) && !color.NoColor, nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsmerge/internal/buildpipeline"
	"tsmerge/internal/observ"
)

const cacheApp = "tsmerge"

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [files...]",
		Short: "Merge the project's sources into one bundle",
		Long: `Build orders the project's source units so that every top-level binding
is initialized before it is read, applies the export mode and writes the
bundle (and the declaration bundle when declarationPath is set).
Files given as arguments replace the manifest's files list.`,
		RunE: buildExecution,
	}
	cmd.Flags().BoolP("watch", "w", false, "rebuild when sources change")
	cmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	cmd.Flags().Bool("no-cache", false, "do not record the build for `tsmerge graph`")
	cmd.Flags().Int("jobs", 0, "parallel parsers (0 = GOMAXPROCS)")
	return cmd
}

func buildExecution(cmd *cobra.Command, args []string) error {
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	buildpipeline.SetLogger(log)

	timer := observ.NewTimer()
	endProject := timer.Track("project")
	proj, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	sources, err := proj.sources()
	if err != nil {
		return err
	}
	endProject(fmt.Sprintf("%d sources", len(sources)))

	req := buildpipeline.CompileRequest{
		Sources:        sources,
		BaseDir:        proj.root,
		Options:        proj.options,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Progress:       buildpipeline.LogSink{Log: log},
	}
	if !noCache {
		cache, cacheErr := buildpipeline.OpenDiskCache(cacheApp)
		if cacheErr != nil {
			log.Warn("build cache disabled", zap.Error(cacheErr))
		} else {
			req.Cache = cache
		}
	}
	out := cmd.OutOrStdout()

	if watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return buildpipeline.Watch(ctx, &buildpipeline.WatchRequest{
			Compile: req,
			Sources: proj.sources,
			Dirs:    []string{proj.root},
			OnBuild: func(res buildpipeline.CompileResult, err error) {
				if reportErr := reportBuild(cmd, out, proj, res, err, format); reportErr != nil {
					log.Warn("build failed", zap.Error(reportErr))
				}
			},
		})
	}

	var res buildpipeline.CompileResult
	if shouldUseTUI(uiModeValue) && len(sources) > 0 && format != "json" {
		res, err = runCompileWithUI(cmd.Context(), "tsmerge build", displayFiles(proj.root, sources), &req)
	} else {
		res, err = buildpipeline.Compile(cmd.Context(), &req)
	}
	if showTimings {
		for _, stage := range buildpipeline.Stages {
			if res.Timings.Has(stage) {
				timer.Add(string(stage), res.Timings.Duration(stage), "")
			}
		}
		printTimings(out, timer)
	}
	log.Debug("timings", timer.Fields()...)
	return reportBuild(cmd, out, proj, res, err, format)
}

// reportBuild prints diagnostics and a summary line and turns a failed
// build into an exit error.
func reportBuild(cmd *cobra.Command, out io.Writer, proj *project, res buildpipeline.CompileResult, err error, format string) error {
	var printErr error
	if res.Program != nil {
		printErr = printDiagnostics(cmd, out, res.Bag, res.Program.Files, format)
	} else {
		printErr = printDiagnostics(cmd, out, res.Bag, nil, format)
	}
	if printErr != nil {
		return printErr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &exitError{code: exitFailure, err: err}
	}
	if res.Bag != nil && res.Bag.HasErrors() {
		return &exitError{code: exitFailure, err: errors.New("build finished with errors")}
	}
	if quiet(cmd) || format == "json" || res.Report == nil {
		return nil
	}
	for _, o := range res.Report.Outputs {
		if !o.Written {
			continue
		}
		fmt.Fprintf(out, "wrote %s (%d units, %d bytes)\n", displayPath(proj.root, o.Path), len(o.Units), o.Bytes)
	}
	return nil
}

func displayFiles(root string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, displayPath(root, f))
	}
	return out
}

package buildpipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tsmerge/internal/config"
)

const defaultDebounce = 150 * time.Millisecond

// WatchRequest configures Watch.
type WatchRequest struct {
	Compile CompileRequest
	// Sources re-lists the inputs before every build; nil keeps
	// Compile.Sources.
	Sources func() ([]string, error)
	// Dirs are watched in addition to the directories holding sources.
	Dirs     []string
	Debounce time.Duration
	// OnBuild is called after every build, from the watch goroutine.
	OnBuild func(CompileResult, error)
}

// Watch builds once and then rebuilds whenever a source file changes,
// until ctx is done. Builds never overlap: events arriving during a build
// are coalesced into the next one. Every build creates a new program and
// newly wired passes.
func Watch(ctx context.Context, req *WatchRequest) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	log := Logger()
	debounce := req.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ignored := map[string]struct{}{}
	for _, p := range []string{req.Compile.Options.OutputPath, req.Compile.Options.DeclarationPath} {
		if p != "" {
			ignored[absPath(p)] = struct{}{}
		}
	}

	watched := map[string]struct{}{}
	watch := func(dirs ...string) {
		for _, dir := range dirs {
			dir = absPath(dir)
			if _, ok := watched[dir]; ok {
				continue
			}
			if err := w.Add(dir); err != nil {
				log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			watched[dir] = struct{}{}
		}
	}

	build := func() {
		creq := req.Compile
		if req.Sources != nil {
			sources, err := req.Sources()
			if err != nil {
				log.Warn("cannot list sources", zap.Error(err))
				if req.OnBuild != nil {
					req.OnBuild(CompileResult{}, err)
				}
				return
			}
			creq.Sources = sources
		}
		for _, s := range creq.Sources {
			watch(filepath.Dir(s))
		}
		res, err := Compile(ctx, &creq)
		if req.OnBuild != nil {
			req.OnBuild(res, err)
		}
	}

	watch(req.Dirs...)
	for _, s := range req.Compile.Sources {
		watch(filepath.Dir(s))
	}
	build()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, ignored) {
				continue
			}
			log.Debug("source changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			if ctx.Err() != nil {
				return nil
			}
			build()
		}
	}
}

func relevant(ev fsnotify.Event, ignored map[string]struct{}) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if !config.IsSource(ev.Name) {
		return false
	}
	_, skip := ignored[absPath(ev.Name)]
	return !skip
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(p)
}

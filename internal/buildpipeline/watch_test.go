package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tsmerge/internal/config"
)

func TestWatchRebuildsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	sources := writeSources(t, dir, "src/a.ts", "const a = 1;\n")
	out := filepath.Join(dir, "dist", "out.js")

	builds := make(chan string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, &WatchRequest{
			Compile:  CompileRequest{Sources: sources, Options: config.Options{OutputPath: out}},
			Debounce: 20 * time.Millisecond,
			OnBuild: func(_ CompileResult, err error) {
				if err != nil {
					return
				}
				data, _ := os.ReadFile(out)
				select {
				case builds <- string(data):
				default:
				}
			},
		})
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case got := <-builds:
				if got == want {
					return
				}
			case <-deadline:
				t.Fatalf("no build produced %q", want)
			}
		}
	}
	waitFor("const a = 1;\n")
	require.NoError(t, os.WriteFile(sources[0], []byte("const a = 2;\n"), 0o600))
	waitFor("const a = 2;\n")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestRelevantSkipsOutputAndForeignFiles(t *testing.T) {
	ignored := map[string]struct{}{absPath("dist/out.js"): {}}
	cases := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"source write", fsnotify.Event{Name: "src/a.ts", Op: fsnotify.Write}, true},
		{"source removed", fsnotify.Event{Name: "src/a.ts", Op: fsnotify.Remove}, true},
		{"output write", fsnotify.Event{Name: "dist/out.js", Op: fsnotify.Write}, false},
		{"notes", fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, false},
		{"chmod", fsnotify.Event{Name: "src/a.ts", Op: fsnotify.Chmod}, false},
	}
	for _, tc := range cases {
		if got := relevant(tc.ev, ignored); got != tc.want {
			t.Fatalf("%s: relevant = %v, want %v", tc.name, got, tc.want)
		}
	}
}

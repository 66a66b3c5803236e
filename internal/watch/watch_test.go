package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	cases := map[string]bool{
		"/docs/guide.md":        false,
		"/docs/sub/code.py":     false,
		"/docs/.hidden":         true,
		"/docs/.guide.md.swp":   true,
		"/docs/guide.md~":       true,
		"/docs/guide.md.swx":    true,
		"/docs/#guide.md#":      true,
		"/docs/.#guide.md":      true,
		"/docs/Thumbs.db":       true,
		"/docs/4913":            true,
		"/docs/notes#draft.txt": false,
	}
	for path, want := range cases {
		assert.Equal(t, want, shouldIgnoreEvent(path), path)
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/out", "/a/out"))
	assert.True(t, within("/a/out/resources/x", "/a/out"))
	assert.False(t, within("/a/output", "/a/out"))
	assert.False(t, within("/a/docs", "/a/out"))
	assert.False(t, within("/a/docs", ""))
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	select {
	case <-d.C():
	case <-time.After(time.Second):
		t.Fatal("debounced request never fired")
	}
	select {
	case <-d.C():
		t.Fatal("burst produced more than one request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	d.Trigger()
	d.Stop()
	select {
	case <-d.C():
		t.Fatal("stopped debouncer fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func runWatcher(t *testing.T, opts Options, build BuildFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(opts, build).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	var builds atomic.Int32
	runWatcher(t, Options{Roots: []string{root}, Debounce: 20 * time.Millisecond, InitialBuild: true},
		func(context.Context) error {
			builds.Add(1)
			return nil
		})

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Allow the watcher to register its roots.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "guide.md"), []byte("# Hi"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOutputDirectory(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "_dist")
	require.NoError(t, os.MkdirAll(out, 0o755))
	var builds atomic.Int32
	runWatcher(t, Options{Roots: []string{root}, IgnorePaths: []string{out}, Debounce: 20 * time.Millisecond},
		func(context.Context) error {
			builds.Add(1)
			return nil
		})

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(out, "page.html"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), builds.Load())
}

func TestWatcher_PeriodicRebuild(t *testing.T) {
	var builds atomic.Int32
	runWatcher(t, Options{Roots: []string{t.TempDir()}, Debounce: 10 * time.Millisecond, Every: 50 * time.Millisecond},
		func(context.Context) error {
			builds.Add(1)
			return nil
		})
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

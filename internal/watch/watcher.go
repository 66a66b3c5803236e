// Package watch rebuilds on source changes and on a fixed schedule.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docd/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Its error is logged and never stops the watcher.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Roots are watched recursively. Missing roots are skipped.
	Roots []string
	// SkipDirectories are directory names never watched.
	SkipDirectories []string
	// IgnorePaths are absolute paths whose events are dropped, typically the output directory.
	IgnorePaths []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Every schedules an additional full rebuild at this interval when positive.
	Every time.Duration
	// InitialBuild runs a build before watching starts.
	InitialBuild bool
}

// Watcher runs builds in response to filesystem changes.
type Watcher struct {
	opts  Options
	build BuildFunc
	skip  map[string]struct{}
	deb   *debouncer
}

// New creates a Watcher.
func New(opts Options, build BuildFunc) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	skip := make(map[string]struct{}, len(opts.SkipDirectories))
	for _, name := range opts.SkipDirectories {
		skip[name] = struct{}{}
	}
	return &Watcher{opts: opts, build: build, skip: skip, deb: newDebouncer(opts.Debounce)}
}

// Run watches until ctx is done. Builds never overlap: requests arriving during a build
// collapse into one follow-up build.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	for _, root := range w.opts.Roots {
		w.addDirsRecursive(fw, root)
	}

	var sched *scheduler
	if w.opts.Every > 0 {
		sched, err = newScheduler(w.opts.Every, w.deb.fire)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.worker(ctx)
	}()
	if w.opts.InitialBuild {
		w.deb.fire()
	}

	slog.Info("Watching for changes",
		slog.Any("roots", w.opts.Roots),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("every", w.opts.Every))
	w.loop(ctx, fw)
	w.deb.Stop()
	<-done
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// worker runs requested builds one at a time.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.deb.C():
			slog.Info("Change detected; rebuilding")
			if err := w.build(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || w.ignored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if _, skip := w.skip[filepath.Base(ev.Name)]; skip {
				return
			}
			w.addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.deb.Trigger()
}

func (w *Watcher) ignored(path string) bool {
	for _, p := range w.opts.IgnorePaths {
		if within(path, p) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := w.skip[d.Name()]; skip {
				return filepath.SkipDir
			}
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

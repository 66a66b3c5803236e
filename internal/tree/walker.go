// Package tree walks a source directory into the canonical, ordered DocNode sequence.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/docd/internal/docnode"
	"git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
)

// UnsupportedEntryPolicy selects how entries that are neither files nor directories are handled.
type UnsupportedEntryPolicy string

const (
	UnsupportedSkip UnsupportedEntryPolicy = "skip" // record a warning and continue
	UnsupportedFail UnsupportedEntryPolicy = "fail" // abort the walk with a traversal error
)

// Options configures a Walker.
type Options struct {
	MaxDepth        int               // inclusive bound on directory depth; the root has depth 0
	SkipDirectories []string          // directory names excluded at any depth
	ExcludePaths    []string          // directories excluded by location, e.g. an output directory inside the root
	FileTypes       map[string]string // suffix -> language tag
	Naming          NamingPolicy      // defaults to DefaultNaming()
	Unsupported     UnsupportedEntryPolicy
}

// Warning records an entry the walker skipped.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the output of one walk.
type Result struct {
	Nodes    []docnode.DocNode
	Warnings []Warning
}

// Files returns the file nodes in emission order.
func (r *Result) Files() []docnode.DocNode { return docnode.Files(r.Nodes) }

// Walker produces DocNode sequences for source trees.
type Walker struct {
	opts    Options
	skip    map[string]struct{}
	exclude map[string]struct{} // absolute, cleaned
}

// NewWalker creates a walker. A nil naming policy selects DefaultNaming().
func NewWalker(opts Options) *Walker {
	if opts.Naming == nil {
		opts.Naming = DefaultNaming()
	}
	if opts.Unsupported == "" {
		opts.Unsupported = UnsupportedSkip
	}
	skip := make(map[string]struct{}, len(opts.SkipDirectories))
	for _, name := range opts.SkipDirectories {
		skip[name] = struct{}{}
	}
	exclude := make(map[string]struct{}, len(opts.ExcludePaths))
	for _, p := range opts.ExcludePaths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			exclude[abs] = struct{}{}
		}
	}
	return &Walker{opts: opts, skip: skip, exclude: exclude}
}

// walkState carries per-walk bookkeeping so a Walker can be reused.
type walkState struct {
	root   string
	result *Result
	owners map[string]string // uri -> source path of the node that claimed it
	dirs   map[string]string // directory uri -> source path
}

// Walk enumerates root depth first. Children of each directory are visited in one
// lexicographic order, files and directories together, and each directory is emitted
// before its children.
func (w *Walker) Walk(ctx context.Context, root string) (*Result, error) {
	if w.opts.MaxDepth < 0 {
		return nil, errors.ConfigError("invalid walker options").
			WithCause(fmt.Errorf("%w: %d", ErrInvalidDepth, w.opts.MaxDepth)).
			Build()
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		cause := fmt.Errorf("%w: %s", ErrRootNotFound, root)
		if err != nil {
			cause = fmt.Errorf("%w: %w", cause, err)
		}
		return nil, errors.FileSystemError("source root is not a readable directory").
			WithCause(cause).
			WithContext("path", root).
			Build()
	}

	st := &walkState{
		root:   root,
		result: &Result{Nodes: make([]docnode.DocNode, 0, 64)},
		owners: make(map[string]string),
		dirs:   make(map[string]string),
	}
	if err := st.emit(docnode.DocNode{
		Kind:         docnode.KindDirectory,
		URI:          docnode.RootURI,
		Depth:        0,
		SourcePath:   ".",
		LastModified: info.ModTime(),
	}); err != nil {
		return nil, err
	}
	if err := w.walkDir(ctx, st, root, "", 0); err != nil {
		return nil, err
	}
	if err := st.checkArtifactPaths(); err != nil {
		return nil, err
	}

	slog.Debug("Source tree walked",
		logfields.Path(root),
		logfields.Count(len(st.result.Nodes)),
		slog.Int("warnings", len(st.result.Warnings)))
	return st.result, nil
}

func (w *Walker) walkDir(ctx context.Context, st *walkState, absDir, relDir string, depth int) error {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return errors.FileSystemError("failed to list source directory").
			WithCause(fmt.Errorf("%w: %s: %w", ErrReadDir, relOrDot(relDir), err)).
			WithContext("path", relOrDot(relDir)).
			Build()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		absPath := filepath.Join(absDir, name)
		relPath := path.Join(relDir, name)

		// Stat follows symlinks: a link to a file or directory is published as its target.
		info, err := os.Stat(absPath)
		if err != nil {
			if uerr := w.unsupported(st, relPath, fmt.Sprintf("cannot stat entry: %v", err)); uerr != nil {
				return uerr
			}
			continue
		}

		switch {
		case info.IsDir():
			if _, skip := w.skip[name]; skip {
				slog.Debug("Skipping directory", logfields.Path(relPath))
				continue
			}
			if w.excluded(absPath) {
				slog.Debug("Skipping excluded directory", logfields.Path(relPath))
				continue
			}
			if depth+1 > w.opts.MaxDepth {
				continue
			}
			if err := st.emit(docnode.DocNode{
				Kind:         docnode.KindDirectory,
				URI:          relPath,
				ParentURI:    docnode.StringPtr(relDir),
				Depth:        depth + 1,
				SourcePath:   relPath,
				DisplayName:  w.opts.Naming.DisplayName(name),
				LastModified: info.ModTime(),
			}); err != nil {
				return err
			}
			if err := w.walkDir(ctx, st, absPath, relPath, depth+1); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			stem, suffix := SplitName(name)
			uri, displaySuffix := w.opts.Naming.FileURI(relDir, stem, suffix)
			if err := st.emit(docnode.DocNode{
				Kind:          docnode.KindFile,
				URI:           uri,
				ParentURI:     docnode.StringPtr(relDir),
				Depth:         depth + 1,
				SourcePath:    relPath,
				DisplayName:   w.opts.Naming.DisplayName(stem),
				DisplaySuffix: displaySuffix,
				LastModified:  info.ModTime(),
				Language:      w.opts.FileTypes[suffix],
			}); err != nil {
				return err
			}
		default:
			if err := w.unsupported(st, relPath, "unsupported file mode "+info.Mode().Type().String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// excluded reports whether dir is one of the configured exclude paths. Descendants need no
// check since an excluded directory is never entered.
func (w *Walker) excluded(dir string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	_, ok := w.exclude[abs]
	return ok
}

func (w *Walker) unsupported(st *walkState, relPath, reason string) error {
	if w.opts.Unsupported == UnsupportedFail {
		return errors.TraversalError("unsupported entry in source tree").
			WithCause(fmt.Errorf("%w: %s: %s", ErrUnsupportedEntry, relPath, reason)).
			WithContext("path", relPath).
			Build()
	}
	slog.Warn("Skipping unsupported entry", logfields.Path(relPath), slog.String("reason", reason))
	st.result.Warnings = append(st.result.Warnings, Warning{Path: relPath, Reason: reason})
	return nil
}

// emit appends n after checking that its uri is unclaimed.
func (st *walkState) emit(n docnode.DocNode) error {
	if owner, taken := st.owners[n.URI]; taken {
		return collision(n.URI, owner, n.SourcePath)
	}
	st.owners[n.URI] = n.SourcePath
	if n.Kind == docnode.KindDirectory {
		st.dirs[n.URI] = n.SourcePath
	}
	st.result.Nodes = append(st.result.Nodes, n)
	return nil
}

// checkArtifactPaths rejects a rendered page path that equals a directory uri, since the
// page file and the directory of pages would occupy the same output path.
func (st *walkState) checkArtifactPaths() error {
	for _, n := range st.result.Nodes {
		if !n.IsFile() {
			continue
		}
		if dirSource, clash := st.dirs[n.PagePath()]; clash {
			return collision(n.PagePath(), dirSource, n.SourcePath)
		}
	}
	return nil
}

func collision(uri, first, second string) error {
	return errors.CollisionError("two source entries map to the same identifier").
		WithCause(fmt.Errorf("%w: %q claimed by %s and %s", ErrURICollision, uri, first, second)).
		WithContext("uri", uri).
		WithContext("first", first).
		WithContext("second", second).
		Build()
}

func relOrDot(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

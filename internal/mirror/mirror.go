// Package mirror keeps a destination directory identical to a source directory.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
)

// ErrSync wraps every failure of a mirror pass.
var ErrSync = errors.New("mirror sync failed")

// Options controls a Sync.
type Options struct {
	// Delete removes destination entries that no longer exist in the source.
	Delete bool
	// Exclude holds base-name glob patterns. Matching entries are neither copied nor deleted.
	Exclude []string
}

// Stats summarises a Sync.
type Stats struct {
	Copied    int
	Unchanged int
	Deleted   int
}

// Sync mirrors src into dst. A missing src is treated as empty, so with Delete set the
// destination ends up holding only excluded entries.
func Sync(ctx context.Context, src, dst string, opts Options) (Stats, error) {
	var stats Stats
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return stats, syncError(src, dst, err)
	}

	present := make(map[string]struct{})
	info, err := os.Stat(src)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("Mirror source missing; treating as empty", logfields.Path(src))
	case err != nil:
		return stats, syncError(src, dst, err)
	case !info.IsDir():
		return stats, syncError(src, dst, fmt.Errorf("%s is not a directory", src))
	default:
		if err := copyTree(ctx, src, dst, opts, present, &stats); err != nil {
			return stats, syncError(src, dst, err)
		}
	}

	if opts.Delete {
		if err := prune(ctx, dst, opts, present, &stats); err != nil {
			return stats, syncError(src, dst, err)
		}
	}

	slog.Debug("Mirror synced",
		logfields.Path(dst),
		slog.Int("copied", stats.Copied),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("deleted", stats.Deleted))
	return stats, nil
}

func syncError(src, dst string, err error) error {
	return ferrors.SyncError("failed to mirror directory").
		WithCause(fmt.Errorf("%w: %s -> %s: %w", ErrSync, src, dst, err)).
		WithContext("source", src).
		WithContext("destination", dst).
		Build()
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func copyTree(ctx context.Context, src, dst string, opts Options, present map[string]struct{}, stats *Stats) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if excluded(d.Name(), opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		present[rel] = struct{}{}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return ensureDir(target)
		case d.Type()&fs.ModeSymlink != 0:
			return copySymlink(path, target, stats)
		case d.Type().IsRegular():
			return copyFileIfChanged(path, target, stats)
		default:
			slog.Warn("Mirror skipping special file", logfields.Path(path))
			delete(present, rel)
			return nil
		}
	})
}

func ensureDir(target string) error {
	if fi, err := os.Lstat(target); err == nil {
		if fi.IsDir() {
			return nil
		}
		if err := os.RemoveAll(target); err != nil {
			return err
		}
	}
	return os.MkdirAll(target, 0o755)
}

// copyFileIfChanged uses the size and modification time quick check before copying.
func copyFileIfChanged(src, dst string, stats *Stats) error {
	si, err := os.Stat(src)
	if err != nil {
		return err
	}
	if di, err := os.Lstat(dst); err == nil {
		if di.Mode().IsRegular() && di.Size() == si.Size() && di.ModTime().Equal(si.ModTime()) {
			stats.Unchanged++
			return nil
		}
		if !di.Mode().IsRegular() {
			if err := os.RemoveAll(dst); err != nil {
				return err
			}
		}
	}
	if err := copyFile(src, dst, si); err != nil {
		return err
	}
	stats.Copied++
	return nil
}

func copyFile(src, dst string, si fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mirror-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, si.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(tmpName, si.ModTime(), si.ModTime()); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

func copySymlink(src, dst string, stats *Stats) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if existing, err := os.Readlink(dst); err == nil && existing == link {
		stats.Unchanged++
		return nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.Symlink(link, dst); err != nil {
		return err
	}
	stats.Copied++
	return nil
}

// prune removes destination entries absent from the source. Deeper paths go first so
// directories are empty by the time they are removed.
func prune(ctx context.Context, dst string, opts Options, present map[string]struct{}, stats *Stats) error {
	var stale []string
	err := filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if excluded(d.Name(), opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := present[rel]; !ok {
			stale = append(stale, path)
			if d.IsDir() {
				return filepath.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Sort(sort.Reverse(sort.StringSlice(stale)))
	for _, path := range stale {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		stats.Deleted++
	}
	return nil
}

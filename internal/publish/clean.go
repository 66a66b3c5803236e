package publish

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docd/internal/logfields"
)

// Clean removes everything inside dir and keeps dir itself. A missing dir is not an error.
func Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fsError("failed to read output directory", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return fsError("failed to remove output entry", path, err)
		}
	}
	slog.Info("Output directory cleaned", logfields.Path(dir), logfields.Count(len(entries)))
	return nil
}

package commands

import (
	"fmt"
	"os"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/publish"
	"git.home.luguber.info/inful/docd/internal/search"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query string `arg:"" help:"Search terms"`
	Limit int    `short:"n" help:"Maximum number of hits" default:"10"`
}

func (s *SearchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	path := publish.New(cfg).Layout().Index()
	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.FileSystemError("search index not found; run build first").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	ix, err := search.Load(data)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "search index is unreadable").Build()
	}
	out := stdout
	hits := ix.Search(s.Query)
	if len(hits) == 0 {
		_, err := fmt.Fprintln(out, "No results")
		return err
	}
	if s.Limit > 0 && len(hits) > s.Limit {
		hits = hits[:s.Limit]
	}
	for _, h := range hits {
		if _, err := fmt.Fprintf(out, "%6.2f  %s  (%s)\n", h.Score, h.Title, h.Ref); err != nil {
			return err
		}
	}
	return nil
}

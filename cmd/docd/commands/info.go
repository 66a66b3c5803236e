package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docd/internal/docnode"
	"git.home.luguber.info/inful/docd/internal/publish"
	"git.home.luguber.info/inful/docd/internal/version"
)

// InfoCmd implements the 'info' command.
type InfoCmd struct{}

func (i *InfoCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	out := stdout

	fmt.Fprintln(out, version.String())
	fmt.Fprintf(out, "Configuration: %s\n\n", cfg.Path())
	resolved, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if _, err := out.Write(resolved); err != nil {
		return err
	}

	p := publish.New(cfg)
	res, err := p.ComputeNodes(g.Context())
	if err != nil {
		return err
	}
	files := docnode.Files(res.Nodes)
	languages := make(map[string]int)
	for _, f := range files {
		languages[f.Language]++
	}
	fmt.Fprintf(out, "\nTree: %d directories, %d files, %d skipped entries\n",
		len(res.Nodes)-len(files), len(files), len(res.Warnings))
	for _, lang := range slices.Sorted(maps.Keys(languages)) {
		name := lang
		if name == "" {
			name = "(plain)"
		}
		fmt.Fprintf(out, "  %-12s %d\n", name, languages[lang])
	}

	bi, err := publish.ReadBuildInfo(p.Layout().BuildInfo())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintln(out, "\nLast build: none")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "\nLast build: %s at %s (%d pages, commit %s)\n",
			bi.BuildID, bi.FinishedAt.Format("2006-01-02 15:04:05"), bi.Pages, orNone(bi.SourceCommit))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

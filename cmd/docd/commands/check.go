package commands

import (
	"git.home.luguber.info/inful/docd/internal/check"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/publish"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format string   `help:"Output format" enum:"text,json" default:"text"`
	Phrase []string `short:"p" help:"Additional phrase to search for (repeatable)"`
	Strict bool     `help:"Exit with an error when any phrase matches"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := g.Context()
	nodes, err := publish.New(cfg).ComputeNodes(ctx)
	if err != nil {
		return err
	}

	phrases := append(append([]string(nil), cfg.Check.FilterPhrases...), c.Phrase...)
	result, err := check.NewChecker(phrases).Run(ctx, cfg.Source.Directory, nodes.Nodes)
	if err != nil {
		return err
	}
	out := stdout
	if err := check.NewFormatter(c.Format).Format(out, result); err != nil {
		return err
	}
	if c.Strict && result.HasMatches() {
		return ferrors.ValidationError("filter phrases found in sources").Build()
	}
	return nil
}

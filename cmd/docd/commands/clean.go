package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docd/internal/publish"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := publish.Clean(cfg.Output.Directory); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Cleaned %s\n", cfg.Output.Directory)
	return nil
}

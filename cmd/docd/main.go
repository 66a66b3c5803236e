package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docd/cmd/docd/commands"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docd"),
		kong.Description("docd: publish a source tree as static documentation pages"),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Ctx: ctx}, cli)
	stop()
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
	}
}

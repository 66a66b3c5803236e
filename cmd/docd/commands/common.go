package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docd/internal/config"
)

// stdout receives command output.
var stdout io.Writer = os.Stdout

// Global carries process-wide state into subcommands.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

// Context returns the command context, falling back to Background.
func (g *Global) Context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docd.yaml" env:"DOCD_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Publish the documentation tree"`
	Clean  CleanCmd  `cmd:"" help:"Remove everything in the output directory"`
	Check  CheckCmd  `cmd:"" help:"Scan sources for configured filter phrases"`
	Info   InfoCmd   `cmd:"" help:"Show resolved configuration and tree statistics"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild whenever sources change"`
	Search SearchCmd `cmd:"" help:"Query the published search index"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel resolves the log level from the verbose flag and DOCD_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DOCD_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

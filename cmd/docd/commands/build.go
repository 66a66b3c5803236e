package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docd/internal/config"
	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/metrics"
	"git.home.luguber.info/inful/docd/internal/notify"
	"git.home.luguber.info/inful/docd/internal/publish"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Override output.directory"`
	Workers     int    `help:"Override render.workers (0 keeps the configured value)"`
	Clean       bool   `help:"Empty the output directory before building"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus text metrics to this file after the build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Workers > 0 {
		cfg.Render.Workers = b.Workers
	}
	if b.Clean {
		if err := publish.Clean(cfg.Output.Directory); err != nil {
			return err
		}
	}
	report, err := RunBuild(g.Context(), cfg, b.MetricsFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Published %d pages (%d nodes, %d documents) to %s in %s\n",
		report.Pages, report.Nodes, report.Documents, cfg.Output.Directory, report.Duration().Round(time.Millisecond))
	return nil
}

// RunBuild performs one publish build with notifications and optional metrics export.
func RunBuild(ctx context.Context, cfg *config.Config, metricsFile string) (*publish.Report, error) {
	notifier, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		slog.Warn("Build notifications disabled", logfields.Error(err))
		notifier = notify.Noop{}
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			slog.Warn("Failed to close notifier", logfields.Error(err))
		}
	}()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if metricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	p := publish.New(cfg, publish.WithRecorder(recorder), publish.WithNotifier(notifier))
	report, buildErr := p.Publish(ctx)

	if prom != nil {
		if err := prom.WriteTextfile(metricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.File(metricsFile), logfields.Error(err))
		}
	}
	return report, buildErr
}

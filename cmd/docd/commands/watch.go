package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"git.home.luguber.info/inful/docd/internal/config"
	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/metrics"
	"git.home.luguber.info/inful/docd/internal/notify"
	"git.home.luguber.info/inful/docd/internal/publish"
	"git.home.luguber.info/inful/docd/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Every       time.Duration `help:"Also rebuild on this interval (e.g. 10m)"`
	Debounce    time.Duration `help:"Quiet period before a rebuild starts" default:"300ms"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	NoInitial   bool          `name:"no-initial" help:"Skip the build at startup"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := g.Context()

	notifier, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		slog.Warn("Build notifications disabled", logfields.Error(err))
		notifier = notify.Noop{}
	}
	defer func() { _ = notifier.Close() }()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		recorder = prom
		stop := serveMetrics(w.MetricsAddr, metrics.HTTPHandler(prom.Registry()))
		defer stop()
	}

	p := publish.New(cfg, publish.WithRecorder(recorder), publish.WithNotifier(notifier))
	watcher := watch.New(watchOptions(cfg, w), func(ctx context.Context) error {
		_, err := p.Publish(ctx)
		return err
	})
	return watcher.Run(ctx)
}

// watchOptions derives watcher roots from the configuration. The media directory is
// skipped by the tree walker but still has to trigger a rebuild, so it stays watched.
func watchOptions(cfg *config.Config, w *WatchCmd) watch.Options {
	skips := slices.DeleteFunc(slices.Clone(cfg.Source.SkipDirectories), func(name string) bool {
		return name == config.MediaDirName
	})
	roots := []string{cfg.Source.Directory}
	if cfg.Static.Directory != "" {
		roots = append(roots, cfg.Static.Directory)
	}
	return watch.Options{
		Roots:           roots,
		SkipDirectories: skips,
		IgnorePaths:     []string{cfg.Output.Directory},
		Debounce:        w.Debounce,
		Every:           w.Every,
		InitialBuild:    !w.NoInitial,
	}
}

func serveMetrics(addr string, h http.Handler) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.URL(addr), logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", logfields.URL("http://"+addr+"/metrics"))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

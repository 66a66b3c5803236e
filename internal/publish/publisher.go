// Package publish orchestrates a full build: walk the source tree once, then write the
// node database, rendered pages, search index and mirrored assets.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docd/internal/config"
	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/metrics"
	"git.home.luguber.info/inful/docd/internal/mirror"
	"git.home.luguber.info/inful/docd/internal/notify"
	"git.home.luguber.info/inful/docd/internal/render"
	"git.home.luguber.info/inful/docd/internal/search"
	"git.home.luguber.info/inful/docd/internal/tree"
	"git.home.luguber.info/inful/docd/internal/version"
)

// Report summarises one build.
type Report struct {
	BuildID        string
	Outcome        metrics.BuildOutcomeLabel
	Start          time.Time
	End            time.Time
	Nodes          int
	Directories    int
	Files          int
	Pages          int
	Documents      int
	Warnings       []tree.Warning
	StageDurations map[StageName]time.Duration
	Media          mirror.Stats
	Static         mirror.Stats
}

// Duration returns the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// buildState is the mutable state of one build, shared by its stages.
type buildState struct {
	buildID string
	report  *Report
	nodes   []docnode.DocNode // immutable once compute_nodes completes

	mu           sync.Mutex
	fingerprints map[string]string
}

// Publisher runs publish builds for one configuration. Builds on a Publisher are
// serialized.
type Publisher struct {
	cfg      *config.Config
	layout   Layout
	walker   *tree.Walker
	renderer *render.PageRenderer
	indexer  *search.Builder
	recorder metrics.Recorder
	notifier notify.Notifier
	newID    func() string

	buildMu sync.Mutex

	stateMu sync.Mutex
	state   State
	history []State
}

// Option customises a Publisher.
type Option func(*Publisher)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithNotifier sets the build notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Publisher) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithMarkup replaces the markup engine built from the render configuration.
func WithMarkup(m render.Markup) Option {
	return func(p *Publisher) {
		if m != nil {
			p.renderer = render.NewPageRenderer(m)
		}
	}
}

// New creates a Publisher for cfg.
func New(cfg *config.Config, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		layout: Layout{Root: cfg.Output.Directory},
		walker: tree.NewWalker(TreeOptions(cfg)),
		renderer: render.NewPageRenderer(render.NewGoldmark(render.GoldmarkOptions{
			HighlightStyle: cfg.Render.HighlightStyle,
			UnsafeHTML:     cfg.Render.UnsafeHTML,
		})),
		indexer:  search.NewBuilder(),
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		newID:    uuid.NewString,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TreeOptions maps the source and naming configuration onto walker options. The output
// directory is always excluded so a build never reads its own artifacts.
func TreeOptions(cfg *config.Config) tree.Options {
	return tree.Options{
		MaxDepth:        cfg.Source.MaxDepth,
		SkipDirectories: cfg.Source.SkipDirectories,
		ExcludePaths:    []string{cfg.Output.Directory},
		FileTypes:       cfg.Source.FileTypes,
		Naming: tree.SuffixEscapePolicy{
			SuffixMarker:             cfg.Naming.SuffixMarker,
			NameSeparator:            cfg.Naming.NameSeparator,
			NameSeparatorReplacement: cfg.Naming.NameSeparatorReplacement,
		},
		Unsupported: tree.UnsupportedEntryPolicy(cfg.Source.UnsupportedEntries),
	}
}

// Layout returns the artifact layout of the output directory.
func (p *Publisher) Layout() Layout { return p.layout }

// State returns the state of the current or last build.
func (p *Publisher) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

// History returns the states entered by the current or last build, in order.
func (p *Publisher) History() []State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return append([]State(nil), p.history...)
}

func (p *Publisher) transition(bs *buildState, s State) {
	p.stateMu.Lock()
	p.state = s
	p.history = append(p.history, s)
	p.stateMu.Unlock()
	slog.Debug("Build state changed", logfields.BuildID(bs.buildID), logfields.State(string(s)))
}

// ComputeNodes walks the source tree without publishing anything.
func (p *Publisher) ComputeNodes(ctx context.Context) (*tree.Result, error) {
	return p.walker.Walk(ctx, p.cfg.Source.Directory)
}

// Publish runs a full build. Every artifact is regenerated. On failure the returned error
// is a *StageError wrapping the classified cause; artifacts written before the failure are
// left in place.
func (p *Publisher) Publish(ctx context.Context) (*Report, error) {
	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	bs := &buildState{
		buildID: p.newID(),
		report: &Report{
			Start:          time.Now(),
			StageDurations: make(map[StageName]time.Duration),
		},
		fingerprints: make(map[string]string),
	}
	bs.report.BuildID = bs.buildID

	p.stateMu.Lock()
	p.state, p.history = StateIdle, []State{StateIdle}
	p.stateMu.Unlock()

	slog.Info("Build starting",
		logfields.BuildID(bs.buildID),
		logfields.Path(p.cfg.Source.Directory),
		slog.String("output", p.cfg.Output.Directory))

	err := p.runStages(ctx, bs, p.pipeline())

	bs.report.End = time.Now()
	p.recorder.ObserveBuildDuration(bs.report.Duration())
	switch {
	case err == nil:
		bs.report.Outcome = metrics.BuildOutcomeSuccess
		p.transition(bs, StateDone)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		bs.report.Outcome = metrics.BuildOutcomeCanceled
		p.transition(bs, StateFailed)
	default:
		bs.report.Outcome = metrics.BuildOutcomeFailed
		p.transition(bs, StateFailed)
	}
	p.recorder.IncBuildOutcome(bs.report.Outcome)
	p.notify(ctx, bs.report, err)

	if err != nil {
		slog.Error("Build failed",
			logfields.BuildID(bs.buildID),
			logfields.DurationMS(float64(bs.report.Duration().Milliseconds())),
			logfields.Error(err))
		return bs.report, err
	}
	slog.Info("Build complete",
		logfields.BuildID(bs.buildID),
		slog.Int("nodes", bs.report.Nodes),
		slog.Int("pages", bs.report.Pages),
		slog.Int("documents", bs.report.Documents),
		logfields.DurationMS(float64(bs.report.Duration().Milliseconds())))
	return bs.report, nil
}

// notify delivers the build event. Delivery failures never change the build outcome.
func (p *Publisher) notify(ctx context.Context, r *Report, buildErr error) {
	ev := notify.BuildEvent{
		BuildID:    r.BuildID,
		Outcome:    notify.OutcomeSuccess,
		Nodes:      r.Nodes,
		Pages:      r.Pages,
		Documents:  r.Documents,
		DurationMS: r.Duration().Milliseconds(),
		FinishedAt: r.End.UTC(),
	}
	if buildErr != nil {
		ev.Outcome = notify.OutcomeFailed
		ev.Error = buildErr.Error()
	}
	// A canceled build still reports its outcome.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.notifier.Notify(nctx, ev); err != nil {
		slog.Warn("Build notification failed", logfields.BuildID(r.BuildID), logfields.Error(err))
	}
}

func (p *Publisher) stagePrepareStructure(_ context.Context, bs *buildState) error {
	for _, dir := range []string{p.layout.Resources(), p.layout.SearchDir(), p.layout.Media(), p.layout.Static()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fsError("failed to create output directory", dir, err)
		}
	}
	// Pages are recreated so stale pages never survive a rebuild.
	if err := os.RemoveAll(p.layout.Pages()); err != nil {
		return fsError("failed to clear pages directory", p.layout.Pages(), err)
	}
	if err := os.MkdirAll(p.layout.Pages(), 0o755); err != nil {
		return fsError("failed to create pages directory", p.layout.Pages(), err)
	}
	p.transition(bs, StateStructurePrepared)
	return nil
}

func (p *Publisher) stageComputeNodes(ctx context.Context, bs *buildState) error {
	res, err := p.ComputeNodes(ctx)
	if err != nil {
		return err
	}
	bs.nodes = res.Nodes
	bs.report.Nodes = len(res.Nodes)
	bs.report.Files = len(res.Files())
	bs.report.Directories = bs.report.Nodes - bs.report.Files
	bs.report.Warnings = res.Warnings
	for _, w := range res.Warnings {
		slog.Warn("Skipped source entry", logfields.Path(w.Path), slog.String("reason", w.Reason))
	}
	p.recorder.SetNodeCount(string(docnode.KindDirectory), bs.report.Directories)
	p.recorder.SetNodeCount(string(docnode.KindFile), bs.report.Files)
	p.transition(bs, StateNodesComputed)
	return nil
}

func (p *Publisher) stageWriteDatabase(_ context.Context, bs *buildState) error {
	data, err := docnode.MarshalDatabase(bs.nodes)
	if err != nil {
		return ferrors.InternalError("failed to encode pages database").WithCause(err).Build()
	}
	if err := writeFileAtomic(p.layout.Database(), data); err != nil {
		return fsError("failed to write pages database", p.layout.Database(), err)
	}
	return nil
}

func (p *Publisher) stageWriteBuildInfo(_ context.Context, bs *buildState) error {
	bi := BuildInfo{
		BuildID:      bs.buildID,
		CacheKey:     cacheKey(bs.buildID),
		Version:      version.Version,
		SourceCommit: sourceCommit(p.cfg.Source.Directory),
		StartedAt:    bs.report.Start.UTC(),
		FinishedAt:   time.Now().UTC(),
		Site:         siteInfo(p.cfg.Site),
		Nodes:        bs.report.Nodes,
		Pages:        bs.report.Pages,
		Documents:    bs.report.Documents,
		Fingerprints: bs.fingerprints,
		Warnings:     bs.report.Warnings,
	}
	data, err := jsonIndent(bi)
	if err != nil {
		return ferrors.InternalError("failed to encode build info").WithCause(err).Build()
	}
	if err := writeFileAtomic(p.layout.BuildInfo(), data); err != nil {
		return fsError("failed to write build info", p.layout.BuildInfo(), err)
	}
	return nil
}

// sourcePath returns the filesystem location of a node's source.
func (p *Publisher) sourcePath(n docnode.DocNode) string {
	return filepath.Join(p.cfg.Source.Directory, filepath.FromSlash(n.SourcePath))
}

func fsError(msg, path string, err error) error {
	return ferrors.FileSystemError(msg).WithCause(err).WithContext("path", path).Build()
}

package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/mirror"
)

// staticExcludes are never mirrored from the static directory.
var staticExcludes = []string{".gitkeep"}

// stagePublish runs the render, index and mirror passes concurrently. The first failure
// cancels the others.
func (p *Publisher) stagePublish(ctx context.Context, bs *buildState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.renderPass(gctx, bs); err != nil {
			return err
		}
		p.transition(bs, StatePagesRendered)
		return nil
	})
	g.Go(func() error {
		if err := p.indexPass(gctx, bs); err != nil {
			return err
		}
		p.transition(bs, StateIndexBuilt)
		return nil
	})
	g.Go(func() error {
		return p.mirrorPass(gctx, bs)
	})
	return g.Wait()
}

// renderPass renders every file node with a bounded worker pool. Each page has its own
// output path, so workers never share a file.
func (p *Publisher) renderPass(ctx context.Context, bs *buildState) error {
	files := docnode.Files(bs.nodes)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Render.WorkerCount())

	for _, n := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return p.renderPage(bs, n)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bs.report.Pages = len(files)
	slog.Info("Pages rendered", logfields.BuildID(bs.buildID), logfields.Count(len(files)))
	return nil
}

func (p *Publisher) renderPage(bs *buildState, n docnode.DocNode) error {
	content, err := os.ReadFile(p.sourcePath(n))
	if err != nil {
		return fsError("failed to read page source", n.SourcePath, err)
	}
	html, err := p.renderer.Render(n, content)
	if err != nil {
		return err
	}
	out := p.layout.Page(n)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fsError("failed to create page directory", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, html, 0o644); err != nil {
		return fsError("failed to write page", out, err)
	}

	fp := fingerprint(content)
	bs.mu.Lock()
	bs.fingerprints[n.URI] = fp
	bs.mu.Unlock()

	p.recorder.IncPagesRendered()
	slog.Debug("Page rendered", logfields.URI(n.URI), logfields.Language(n.Language))
	return nil
}

// indexPass builds the search index in memory and writes it only when complete.
func (p *Publisher) indexPass(ctx context.Context, bs *buildState) error {
	ix, err := p.indexer.Build(ctx, bs.nodes, func(n docnode.DocNode) ([]byte, error) {
		return os.ReadFile(p.sourcePath(n))
	})
	if err != nil {
		return err
	}
	data, err := ix.Marshal()
	if err != nil {
		return ferrors.InternalError("failed to encode search index").WithCause(err).Build()
	}
	if err := writeFileAtomic(p.layout.Index(), data); err != nil {
		return fsError("failed to write search index", p.layout.Index(), err)
	}
	bs.report.Documents = len(ix.Documents)
	p.recorder.SetIndexDocuments(len(ix.Documents))
	return nil
}

// mirrorPass syncs the media directory and, when configured, the static directory.
func (p *Publisher) mirrorPass(ctx context.Context, bs *buildState) error {
	stats, err := mirror.Sync(ctx, p.cfg.MediaDirectory(), p.layout.Media(), mirror.Options{Delete: true})
	if err != nil {
		return err
	}
	bs.report.Media = stats
	p.recorder.AddMirroredFiles("media", stats.Copied, stats.Deleted)

	if p.cfg.Static.Directory == "" {
		return nil
	}
	stats, err = mirror.Sync(ctx, p.cfg.Static.Directory, p.layout.Static(), mirror.Options{
		Delete:  true,
		Exclude: staticExcludes,
	})
	if err != nil {
		return err
	}
	bs.report.Static = stats
	p.recorder.AddMirroredFiles("static", stats.Copied, stats.Deleted)
	return nil
}

func jsonIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

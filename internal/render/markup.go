package render

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Markup converts a markup document into an HTML fragment.
type Markup interface {
	Render(src []byte) ([]byte, error)
}

// MarkupFunc adapts a function to Markup.
type MarkupFunc func(src []byte) ([]byte, error)

// Render implements Markup.
func (f MarkupFunc) Render(src []byte) ([]byte, error) { return f(src) }

// DefaultHighlightStyle is the chroma style used for code listings.
const DefaultHighlightStyle = "github"

// GoldmarkOptions configures the goldmark-backed Markup.
type GoldmarkOptions struct {
	HighlightStyle string
	// UnsafeHTML passes raw HTML from markdown sources through; the output is then sanitized.
	// Otherwise raw HTML is shown escaped, as text.
	UnsafeHTML bool
}

// Goldmark is a Markup backed by goldmark with GitHub flavoured extensions and chroma
// highlighting. Highlighting uses inline styles so pages need no stylesheet or script.
// A Goldmark value is safe for concurrent use.
type Goldmark struct {
	md       goldmark.Markdown
	sanitize bool
}

// NewGoldmark builds the goldmark pipeline once; the result is reused for every page.
func NewGoldmark(opts GoldmarkOptions) *Goldmark {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}
	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
					chromahtml.WithLineNumbers(false),
				),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	} else {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(escapedHTMLRenderer{}, 100)),
		))
	}
	return &Goldmark{md: goldmark.New(rendererOpts...), sanitize: opts.UnsafeHTML}
}

// Render implements Markup.
func (g *Goldmark) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("goldmark convert: %w", err)
	}
	if !g.sanitize {
		return buf.Bytes(), nil
	}
	return Sanitize(buf.Bytes())
}

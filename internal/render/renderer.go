// Package render turns the raw text of one file node into a self-contained HTML fragment.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

// MarkdownLanguage is the language tag that selects prose rendering.
const MarkdownLanguage = "markdown"

// ErrRender indicates a page could not be rendered.
var ErrRender = errors.New("page render failed")

// PageRenderer renders file nodes through an injected Markup capability.
type PageRenderer struct {
	markup Markup
}

// NewPageRenderer returns a renderer using m.
func NewPageRenderer(m Markup) *PageRenderer {
	return &PageRenderer{markup: m}
}

// Render converts content of node n to HTML. Markdown sources are rendered as prose; every
// other source becomes a single highlighted listing annotated with the node's language.
func (r *PageRenderer) Render(n docnode.DocNode, content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, renderError(n, errors.New("content is not valid UTF-8"))
	}
	src := content
	if n.Language != MarkdownLanguage {
		src = WrapListing(content, n.Language)
	}
	out, err := r.markup.Render(src)
	if err != nil {
		return nil, renderError(n, err)
	}
	return out, nil
}

// WrapListing wraps code in one fenced block tagged with language. The fence is longer than
// any backtick run inside code so embedded fences cannot terminate the listing.
func WrapListing(code []byte, language string) []byte {
	fence := strings.Repeat("`", max(3, longestBacktickRun(code)+1))
	body := strings.TrimSuffix(string(code), "\n")
	body = strings.TrimSuffix(body, "\r")

	var b strings.Builder
	b.Grow(len(body) + 2*len(fence) + len(language) + 3)
	b.WriteString(fence)
	b.WriteString(language)
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(fence)
	b.WriteByte('\n')
	return []byte(b.String())
}

func longestBacktickRun(b []byte) int {
	longest, run := 0, 0
	for _, c := range b {
		if c == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}

func renderError(n docnode.DocNode, cause error) error {
	return ferrors.RenderError("failed to render page").
		WithCause(fmt.Errorf("%w: %s: %w", ErrRender, n.SourcePath, cause)).
		WithContext("path", n.SourcePath).
		WithContext("uri", n.URI).
		Build()
}

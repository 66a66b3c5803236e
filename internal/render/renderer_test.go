package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

func fileNode(source, language string) docnode.DocNode {
	return docnode.DocNode{Kind: docnode.KindFile, URI: strings.TrimSuffix(source, ".md"), SourcePath: source, Language: language}
}

func TestRender_MarkdownProse(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))
	src := "# Hi\n\n- one\n- two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n[link](https://example.com)\n"

	out, err := r.Render(fileNode("guide.md", MarkdownLanguage), []byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="hi">Hi</h1>`)
	assert.Contains(t, html, "<li>one</li>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<a href="https://example.com">link</a>`)
	assert.NotContains(t, html, "<script")
}

func TestRender_MarkdownFencedCodeIsHighlightedInline(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))
	src := "```python\ndef f():\n    return 1\n```\n"

	out, err := r.Render(fileNode("code.md", MarkdownLanguage), []byte(src))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "style=")
	assert.Contains(t, html, "return")
}

func TestRender_SourceFileBecomesOneListing(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))

	out, err := r.Render(fileNode("sub/code.py", "python"), []byte("# not a heading\nprint(1)\n"))
	require.NoError(t, err)
	html := string(out)
	assert.Equal(t, 1, strings.Count(html, "<pre"))
	assert.NotContains(t, html, "<h1")
	assert.Contains(t, html, "print")
}

func TestRender_UnknownLanguageIsEscaped(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))

	out, err := r.Render(fileNode("notes.txt", ""), []byte("a < b && <em>x</em>"))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "&lt;")
	assert.NotContains(t, html, "<em>")
}

func TestWrapListing(t *testing.T) {
	assert.Equal(t, "```python\nprint(1)\n```\n", string(WrapListing([]byte("print(1)\n"), "python")))
	assert.Equal(t, "```\nplain\n```\n", string(WrapListing([]byte("plain"), "")))

	inner := "text\n```go\nx := 1\n```\nmore"
	wrapped := string(WrapListing([]byte(inner), "markdown-source"))
	assert.True(t, strings.HasPrefix(wrapped, "````markdown-source\n"))
	assert.True(t, strings.HasSuffix(wrapped, "\n````\n"))
	assert.Contains(t, wrapped, inner)
}

func TestRender_ListingKeepsEmbeddedFences(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))
	content := "before\n```\ninside\n```\nafter\n"

	out, err := r.Render(fileNode("README.rst", ""), []byte(content))
	require.NoError(t, err)
	html := string(out)
	assert.Equal(t, 1, strings.Count(html, "<pre"))
	assert.Contains(t, html, "after")
}

func TestRender_InvalidUTF8IsRenderError(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))

	_, err := r.Render(fileNode("bin/blob.dat", ""), []byte{0xff, 0xfe, 0x00})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
	assert.Contains(t, err.Error(), "bin/blob.dat")
}

func TestRender_MarkupFailureIsTaggedWithPath(t *testing.T) {
	boom := errors.New("engine exploded")
	r := NewPageRenderer(MarkupFunc(func([]byte) ([]byte, error) { return nil, boom }))

	_, err := r.Render(fileNode("docs/guide.md", MarkdownLanguage), []byte("# x"))
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, ErrRender)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	path, _ := ce.Context().GetString("path")
	assert.Equal(t, "docs/guide.md", path)
}

func TestRender_RawHTML(t *testing.T) {
	src := "<div onclick=\"steal()\">hi</div>\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))\n"

	t.Run("escaped by default", func(t *testing.T) {
		out, err := NewGoldmark(GoldmarkOptions{}).Render([]byte(src))
		require.NoError(t, err)
		html := string(out)
		assert.NotContains(t, html, "<script")
		assert.NotContains(t, html, "<div onclick")
		assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
		assert.NotContains(t, html, `href="javascript:`)
	})

	t.Run("sanitized when unsafe html is enabled", func(t *testing.T) {
		out, err := NewGoldmark(GoldmarkOptions{UnsafeHTML: true}).Render([]byte(src))
		require.NoError(t, err)
		html := string(out)
		assert.Contains(t, html, "hi")
		assert.NotContains(t, html, "<script")
		assert.NotContains(t, html, "onclick")
		assert.NotContains(t, html, "javascript:")
	})
}

func TestRender_RawHTMLTextIsKeptInSafeMode(t *testing.T) {
	r := NewPageRenderer(NewGoldmark(GoldmarkOptions{}))
	src := "<div class=\"note\">Keep this warning text</div>\n\nUse <kbd>Ctrl</kbd> now\n"

	out, err := r.Render(fileNode("note.md", MarkdownLanguage), []byte(src))
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "raw HTML omitted")
	assert.Contains(t, html, "<p>&lt;div class=&quot;note&quot;&gt;Keep this warning text&lt;/div&gt;</p>")
	assert.Contains(t, html, "<p>Use &lt;kbd&gt;Ctrl&lt;/kbd&gt; now</p>")
	assert.NotContains(t, html, "<kbd>")
}

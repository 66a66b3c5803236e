package tree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

var testFileTypes = map[string]string{
	".md":  "markdown",
	".py":  "python",
	".txt": "",
}

// writeTree creates files (and their parent directories) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func walk(t *testing.T, root string, opts Options) *Result {
	t.Helper()
	res, err := NewWalker(opts).Walk(context.Background(), root)
	require.NoError(t, err)
	return res
}

func uris(nodes []docnode.DocNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.URI)
	}
	return out
}

func TestWalk_OrderIsSingleLexicographicSort(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.md":   "b",
		"a/x.md": "x",
		"c.py":   "print(1)",
		"Z.md":   "z",
	})

	res := walk(t, root, Options{MaxDepth: 5, FileTypes: testFileTypes})

	assert.Equal(t, []string{"", "Z", "a", "a/x", "b", "c--dot-py"}, uris(res.Nodes))
	assert.Equal(t, docnode.KindDirectory, res.Nodes[2].Kind)
	assert.Equal(t, docnode.KindFile, res.Nodes[3].Kind)
}

func TestWalk_DepthAndParentInvariants(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.md":          "t",
		"one/a.md":        "a",
		"one/two/b.py":    "b",
		"one/two/three/c": "c",
		"other/notes.txt": "n",
	})

	res := walk(t, root, Options{MaxDepth: 10, FileTypes: testFileTypes})

	byURI := make(map[string]docnode.DocNode, len(res.Nodes))
	for _, n := range res.Nodes {
		_, dup := byURI[n.URI]
		require.False(t, dup, "duplicate uri %q", n.URI)
		byURI[n.URI] = n
	}

	rootNode := res.Nodes[0]
	assert.Nil(t, rootNode.ParentURI)
	assert.Equal(t, 0, rootNode.Depth)
	assert.Equal(t, docnode.RootURI, rootNode.URI)

	for _, n := range res.Nodes[1:] {
		parentURI, ok := n.Parent()
		require.True(t, ok, "non-root %q must have a parent", n.URI)
		parent, exists := byURI[parentURI]
		require.True(t, exists, "parent %q of %q not emitted", parentURI, n.URI)
		assert.Equal(t, docnode.KindDirectory, parent.Kind)
		assert.Equal(t, parent.Depth+1, n.Depth, "depth of %q", n.URI)
	}
}

func TestWalk_DirectoryFileCollision(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"foo.md":       "file",
		"foo/inner.md": "inner",
	})

	_, err := NewWalker(Options{MaxDepth: 3, FileTypes: testFileTypes}).Walk(context.Background(), root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrURICollision))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryCollision))
	assert.Contains(t, err.Error(), "foo.md")
	assert.Contains(t, err.Error(), "foo")

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	first, _ := ce.Context().GetString("first")
	second, _ := ce.Context().GetString("second")
	assert.ElementsMatch(t, []string{"foo", "foo.md"}, []string{first, second})
}

func TestWalk_FileFileCollisions(t *testing.T) {
	cases := map[string]map[string]string{
		"markdown vs extensionless":   {"readme.md": "a", "readme": "b"},
		"escaped name vs real suffix": {"code.py": "a", "code--dot-py.md": "b"},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, files)
			_, err := NewWalker(Options{MaxDepth: 1}).Walk(context.Background(), root)
			require.ErrorIs(t, err, ErrURICollision)
		})
	}
}

func TestWalk_PagePathCollidesWithDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"foo.md":           "page",
		"foo.html/page.md": "nested",
	})

	_, err := NewWalker(Options{MaxDepth: 2}).Walk(context.Background(), root)
	require.ErrorIs(t, err, ErrURICollision)
	assert.Contains(t, err.Error(), "foo.html")
}

func TestWalk_SuffixHandling(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"notes.txt": "plain",
		"guide.md":  "# Guide",
		"Makefile":  "all:",
		".bashrc":   "export X=1",
	})

	res := walk(t, root, Options{MaxDepth: 1, FileTypes: testFileTypes})
	bySource := map[string]docnode.DocNode{}
	for _, n := range res.Files() {
		bySource[n.SourcePath] = n
	}

	notes := bySource["notes.txt"]
	assert.Equal(t, "notes--dot-txt", notes.URI)
	assert.NotContains(t, notes.URI, ".txt")
	assert.Equal(t, ".txt", notes.DisplaySuffix)
	assert.Equal(t, "notes--dot-txt.html", notes.PagePath())

	guide := bySource["guide.md"]
	assert.Equal(t, "guide", guide.URI)
	assert.Equal(t, "", guide.DisplaySuffix)
	assert.NotContains(t, guide.URI, DefaultSuffixMarker)
	assert.Equal(t, "markdown", guide.Language)

	assert.Equal(t, "Makefile", bySource["Makefile"].URI)
	assert.Equal(t, ".bashrc", bySource[".bashrc"].URI)
	assert.Equal(t, "", bySource[".bashrc"].DisplaySuffix)
}

func TestWalk_MaxDepthExcludesDeepContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c/deep.md": "deep",
		"a/shallow.md":  "shallow",
		"top.md":        "top",
	})

	res := walk(t, root, Options{MaxDepth: 1, FileTypes: testFileTypes})

	assert.Equal(t, []string{"", "a", "a/shallow", "top"}, uris(res.Nodes))
	for _, n := range res.Nodes {
		assert.NotContains(t, n.SourcePath, "deep")
		assert.NotEqual(t, "a/b", n.URI)
	}
}

func TestWalk_MaxDepthZeroKeepsRootFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"index.md": "i", "sub/page.md": "p"})

	res := walk(t, root, Options{MaxDepth: 0})
	assert.Equal(t, []string{"", "index"}, uris(res.Nodes))
}

func TestWalk_SkipDirectoriesAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/config":        "[core]",
		".git/objects/ab/cd": "blob",
		"sub/.git/HEAD":      "ref",
		"sub/page.md":        "page",
		"_media/logo.png":    "png",
	})

	res := walk(t, root, Options{
		MaxDepth:        5,
		SkipDirectories: []string{".git", "_media"},
		FileTypes:       testFileTypes,
	})

	assert.Equal(t, []string{"", "sub", "sub/page"}, uris(res.Nodes))
	for _, n := range res.Nodes {
		assert.NotContains(t, n.SourcePath, ".git")
	}
}

func TestWalk_ExcludePaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"page.md":                "page",
		"_dist/index.html":       "<p>built</p>",
		"_dist/pages/page.html":  "<p>built</p>",
		"nested/_dist/keep.md":   "kept, only the configured location is excluded",
		"nested/other/deeper.md": "deeper",
	})

	res := walk(t, root, Options{
		MaxDepth:     5,
		ExcludePaths: []string{filepath.Join(root, "_dist"), ""},
		FileTypes:    testFileTypes,
	})

	assert.Equal(t, []string{
		"", "nested", "nested/_dist", "nested/_dist/keep", "nested/other", "nested/other/deeper", "page",
	}, uris(res.Nodes))
	assert.Empty(t, res.Warnings)
}

func TestWalk_ExcludePathsRelativeToWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"page.md":      "page",
		"out/page.txt": "artifact",
	})
	t.Chdir(root)

	res := walk(t, ".", Options{
		MaxDepth:     5,
		ExcludePaths: []string{"out"},
		FileTypes:    testFileTypes,
	})

	assert.Equal(t, []string{"", "page"}, uris(res.Nodes))
}

func TestWalk_DisplayNameSeparator(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Part 1--Intro/Chapter--One.md": "x",
	})

	res := walk(t, root, Options{MaxDepth: 2})
	require.Len(t, res.Nodes, 3)
	assert.Equal(t, "Part 1: Intro", res.Nodes[1].DisplayName)
	assert.Equal(t, "Chapter: One", res.Nodes[2].DisplayName)
	assert.Equal(t, "Part 1--Intro/Chapter--One", res.Nodes[2].URI)
}

func TestWalk_BrokenSymlinkPolicy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.md": "ok"})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.md"), filepath.Join(root, "dangling.md")))

	t.Run("skip records a warning", func(t *testing.T) {
		res := walk(t, root, Options{MaxDepth: 1})
		assert.Equal(t, []string{"", "ok"}, uris(res.Nodes))
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, "dangling.md", res.Warnings[0].Path)
	})

	t.Run("fail aborts with a traversal error", func(t *testing.T) {
		_, err := NewWalker(Options{MaxDepth: 1, Unsupported: UnsupportedFail}).Walk(context.Background(), root)
		require.ErrorIs(t, err, ErrUnsupportedEntry)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTraversal))
		assert.Contains(t, err.Error(), "dangling.md")
	})
}

func TestWalk_SymlinkToFileIsPublished(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "shared.md")
	require.NoError(t, os.WriteFile(target, []byte("shared"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.md")))

	res := walk(t, root, Options{MaxDepth: 1})
	assert.Equal(t, []string{"", "link"}, uris(res.Nodes))
}

func TestWalk_RootErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := NewWalker(Options{}).Walk(context.Background(), filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, ErrRootNotFound)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.md")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		_, err := NewWalker(Options{}).Walk(context.Background(), file)
		require.ErrorIs(t, err, ErrRootNotFound)
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := NewWalker(Options{MaxDepth: -1}).Walk(context.Background(), t.TempDir())
		require.ErrorIs(t, err, ErrInvalidDepth)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	})
}

func TestWalk_IsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.md": "a", "b/c.py": "c", "b/d/e.txt": "e", "f": "f",
	})
	opts := Options{MaxDepth: 3, FileTypes: testFileTypes}

	first := walk(t, root, opts)
	second := walk(t, root, opts)
	assert.Equal(t, first.Nodes, second.Nodes)
}

func TestWalk_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(Options{MaxDepth: 1}).Walk(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

type upperPolicy struct{}

func (upperPolicy) FileURI(parent, stem, suffix string) (string, string) {
	return joinURI(parent, stem+"_"+suffix), suffix
}
func (upperPolicy) DisplayName(stem string) string { return "[" + stem + "]" }

func TestWalk_CustomNamingPolicy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x.py": "x"})

	res := walk(t, root, Options{MaxDepth: 1, Naming: upperPolicy{}})
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, "x_.py", res.Nodes[1].URI)
	assert.Equal(t, "[x]", res.Nodes[1].DisplayName)
}

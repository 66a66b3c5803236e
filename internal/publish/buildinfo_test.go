package publish

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "1b4e28", cacheKey("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.Equal(t, "abcdef", cacheKey("ab-cd-ef-01"))
	assert.Equal(t, "ab", cacheKey("ab"))
}

func TestFingerprint_DependsOnContent(t *testing.T) {
	assert.Equal(t, fingerprint([]byte("same")), fingerprint([]byte("same")))
	assert.NotEqual(t, fingerprint([]byte("one")), fingerprint([]byte("two")))
}

func TestSourceCommit_NoRepository(t *testing.T) {
	assert.Empty(t, sourceCommit(t.TempDir()))
}

func TestSourceCommit_ResolvesHeadFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("a"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs/a.md")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "docd", Email: "docd@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	assert.Equal(t, hash.String(), sourceCommit(filepath.Join(dir, "docs")))
}

func TestSourceCommit_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	assert.Empty(t, sourceCommit(dir))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources", "pages-html"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644))

	require.NoError(t, Clean(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, dir)

	assert.NoError(t, Clean(filepath.Join(dir, "missing")))
}

package publish

import (
	"path/filepath"

	"git.home.luguber.info/inful/docd/internal/docnode"
)

// Layout resolves artifact locations under an output directory.
type Layout struct {
	Root string
}

func (l Layout) Resources() string { return filepath.Join(l.Root, "resources") }
func (l Layout) Pages() string     { return filepath.Join(l.Resources(), "pages-html") }
func (l Layout) Database() string  { return filepath.Join(l.Resources(), "pages-database.json") }
func (l Layout) SearchDir() string { return filepath.Join(l.Resources(), "search") }
func (l Layout) Index() string     { return filepath.Join(l.SearchDir(), "serialized-index.json") }
func (l Layout) Media() string     { return filepath.Join(l.Resources(), "media") }
func (l Layout) Static() string    { return filepath.Join(l.Resources(), "static") }
func (l Layout) BuildInfo() string { return filepath.Join(l.Resources(), "build-info.json") }

// Page returns the rendered page location of a file node.
func (l Layout) Page(n docnode.DocNode) string {
	return filepath.Join(l.Pages(), filepath.FromSlash(n.PagePath()))
}

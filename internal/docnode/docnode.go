// Package docnode defines the canonical record for one entry of the published document tree
// and the JSON form written to the pages database.
package docnode

import (
	"encoding/json"
	"time"
)

// Kind distinguishes directory nodes from file nodes.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// RootURI is the reserved identifier of the source root directory.
const RootURI = ""

// PageSuffix is appended to a file node's uri to form its rendered artifact path.
const PageSuffix = ".html"

// DocNode describes one filesystem entry in the published tree.
type DocNode struct {
	Kind          Kind
	URI           string
	ParentURI     *string // nil only for the root
	Depth         int
	SourcePath    string // slash separated, relative to the source root
	DisplayName   string
	DisplaySuffix string
	LastModified  time.Time
	Language      string // resolved from the file type map; files only
}

// IsRoot reports whether n is the source root.
func (n DocNode) IsRoot() bool { return n.ParentURI == nil }

// IsFile reports whether n is a file node.
func (n DocNode) IsFile() bool { return n.Kind == KindFile }

// PagePath returns the slash separated path of the rendered page, relative to the pages root.
func (n DocNode) PagePath() string { return n.URI + PageSuffix }

// Parent returns the parent uri and whether one exists.
func (n DocNode) Parent() (string, bool) {
	if n.ParentURI == nil {
		return "", false
	}
	return *n.ParentURI, true
}

// record is the pages-database serialization of a DocNode.
type record struct {
	Kind          Kind      `json:"kind"`
	URI           string    `json:"uri"`
	ParentURI     *string   `json:"parent_uri"`
	Depth         int       `json:"depth"`
	SourcePath    string    `json:"source_path"`
	DisplayName   string    `json:"display_name"`
	DisplaySuffix *string   `json:"display_suffix"`
	LastModified  time.Time `json:"last_modified"`
}

// MarshalJSON writes the pages-database form. Directories carry a null display_suffix.
func (n DocNode) MarshalJSON() ([]byte, error) {
	r := record{
		Kind:         n.Kind,
		URI:          n.URI,
		ParentURI:    n.ParentURI,
		Depth:        n.Depth,
		SourcePath:   n.SourcePath,
		DisplayName:  n.DisplayName,
		LastModified: n.LastModified.UTC(),
	}
	if n.Kind == KindFile {
		s := n.DisplaySuffix
		r.DisplaySuffix = &s
	}
	return json.Marshal(r)
}

// UnmarshalJSON reads the pages-database form. Language is not persisted.
func (n *DocNode) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*n = DocNode{
		Kind:         r.Kind,
		URI:          r.URI,
		ParentURI:    r.ParentURI,
		Depth:        r.Depth,
		SourcePath:   r.SourcePath,
		DisplayName:  r.DisplayName,
		LastModified: r.LastModified,
	}
	if r.DisplaySuffix != nil {
		n.DisplaySuffix = *r.DisplaySuffix
	}
	return nil
}

// Files returns the file nodes of nodes, preserving order.
func Files(nodes []DocNode) []DocNode {
	files := make([]DocNode, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFile() {
			files = append(files, n)
		}
	}
	return files
}

// MarshalDatabase serializes nodes as the pages database, in emission order.
func MarshalDatabase(nodes []DocNode) ([]byte, error) {
	if nodes == nil {
		nodes = []DocNode{}
	}
	return json.MarshalIndent(nodes, "", "    ")
}

// StringPtr returns a pointer to s. Handy for building ParentURI values.
func StringPtr(s string) *string { return &s }

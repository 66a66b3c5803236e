// Package search builds the full-text index over the published file nodes.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
)

// FormatVersion identifies the serialized index layout.
const FormatVersion = "docd-index/1"

// Field names and boosts.
const (
	FieldTitle = "title"
	FieldBody  = "body"
)

// Document is the indexed unit built from one file node.
type Document struct {
	Ref   string `json:"ref"`
	Title string `json:"title"`
	Body  string `json:"-"`
}

// ContentLoader returns the raw source content of a file node.
type ContentLoader func(n docnode.DocNode) ([]byte, error)

// FieldSpec names an indexed field and its boost.
type FieldSpec struct {
	Name  string  `json:"name"`
	Boost float64 `json:"boost"`
}

// StoredDocument is the per-document entry of the serialized index.
type StoredDocument struct {
	Ref          string         `json:"ref"`
	Title        string         `json:"title"`
	FieldLengths map[string]int `json:"field_lengths"`
}

// Occurrence records a term's frequency and token positions in one field of one document.
type Occurrence struct {
	Doc       int   `json:"doc"`
	TF        int   `json:"tf"`
	Positions []int `json:"positions"`
}

// Posting lists the occurrences of one term.
type Posting struct {
	Term              string                  `json:"term"`
	DocumentFrequency int                     `json:"df"`
	Fields            map[string][]Occurrence `json:"fields"`
}

// Index is the serializable full-text index.
type Index struct {
	Version             string             `json:"version"`
	Ref                 string             `json:"ref"`
	Fields              []FieldSpec        `json:"fields"`
	Documents           []StoredDocument   `json:"documents"`
	AverageFieldLengths map[string]float64 `json:"average_field_lengths"`
	InvertedIndex       []Posting          `json:"inverted_index"`

	docs []Document
}

// DefaultFields are the indexed fields, title weighted over body.
var DefaultFields = []FieldSpec{{Name: FieldTitle, Boost: 10}, {Name: FieldBody, Boost: 1}}

// Builder builds an Index from file nodes.
type Builder struct {
	fields []FieldSpec
}

// NewBuilder returns a Builder indexing DefaultFields.
func NewBuilder() *Builder {
	return &Builder{fields: DefaultFields}
}

// Documents derives one Document per file node, in order. Any unreadable or undecodable
// source fails the whole call.
func Documents(ctx context.Context, files []docnode.DocNode, load ContentLoader) ([]Document, error) {
	docs := make([]Document, 0, len(files))
	for _, n := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !n.IsFile() {
			continue
		}
		content, err := load(n)
		if err != nil {
			return nil, ferrors.FileSystemError("failed to read source for indexing").
				WithCause(fmt.Errorf("%w: %s: %w", ErrContentRead, n.SourcePath, err)).
				WithContext("path", n.SourcePath).
				Build()
		}
		if !utf8.Valid(content) {
			return nil, ferrors.EncodingError("source cannot be indexed as text").
				WithCause(fmt.Errorf("%w: %s", ErrEncoding, n.SourcePath)).
				WithContext("path", n.SourcePath).
				Build()
		}
		title := n.DisplayName
		if title == "" {
			title = n.URI
		}
		docs = append(docs, Document{Ref: n.URI, Title: title, Body: string(content)})
	}
	return docs, nil
}

// Build indexes the file nodes of nodes. The index is assembled in memory; nothing is
// returned unless every document was indexed.
func (b *Builder) Build(ctx context.Context, nodes []docnode.DocNode, load ContentLoader) (*Index, error) {
	docs, err := Documents(ctx, docnode.Files(nodes), load)
	if err != nil {
		return nil, err
	}
	ix := b.BuildDocuments(docs)
	slog.Debug("Search index built",
		logfields.Count(len(ix.Documents)),
		slog.Int("terms", len(ix.InvertedIndex)))
	return ix, nil
}

// BuildDocuments indexes docs in the given order.
func (b *Builder) BuildDocuments(docs []Document) *Index {
	ix := &Index{
		Version:             FormatVersion,
		Ref:                 "ref",
		Fields:              append([]FieldSpec(nil), b.fields...),
		Documents:           make([]StoredDocument, 0, len(docs)),
		AverageFieldLengths: make(map[string]float64, len(b.fields)),
		docs:                docs,
	}

	postings := make(map[string]map[string][]Occurrence)
	totals := make(map[string]int, len(b.fields))

	for docIdx, d := range docs {
		lengths := make(map[string]int, len(b.fields))
		for _, f := range b.fields {
			terms := Tokenize(fieldText(d, f.Name))
			lengths[f.Name] = len(terms)
			totals[f.Name] += len(terms)

			positions := make(map[string][]int)
			for pos, term := range terms {
				positions[term] = append(positions[term], pos)
			}
			for term, at := range positions {
				byField := postings[term]
				if byField == nil {
					byField = make(map[string][]Occurrence)
					postings[term] = byField
				}
				byField[f.Name] = append(byField[f.Name], Occurrence{Doc: docIdx, TF: len(at), Positions: at})
			}
		}
		ix.Documents = append(ix.Documents, StoredDocument{Ref: d.Ref, Title: d.Title, FieldLengths: lengths})
	}

	for _, f := range b.fields {
		if len(docs) > 0 {
			ix.AverageFieldLengths[f.Name] = float64(totals[f.Name]) / float64(len(docs))
		} else {
			ix.AverageFieldLengths[f.Name] = 0
		}
	}

	terms := make([]string, 0, len(postings))
	for term := range postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	ix.InvertedIndex = make([]Posting, 0, len(terms))
	for _, term := range terms {
		seen := make(map[int]struct{})
		for _, occ := range postings[term] {
			for _, o := range occ {
				seen[o.Doc] = struct{}{}
			}
		}
		ix.InvertedIndex = append(ix.InvertedIndex, Posting{
			Term:              term,
			DocumentFrequency: len(seen),
			Fields:            postings[term],
		})
	}
	return ix
}

func fieldText(d Document, field string) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldBody:
		return d.Body
	default:
		return ""
	}
}

// SourceDocuments returns the documents the index was built from, including bodies.
// Indexes decoded with Load carry no bodies.
func (ix *Index) SourceDocuments() []Document { return ix.docs }

// Refs returns the document refs in index order.
func (ix *Index) Refs() []string {
	refs := make([]string, len(ix.Documents))
	for i, d := range ix.Documents {
		refs[i] = d.Ref
	}
	return refs
}

// Marshal serializes the index. Terms are sorted and maps are emitted with sorted keys, so
// identical inputs currently serialize identically; callers should rely only on document
// and key identity.
func (ix *Index) Marshal() ([]byte, error) {
	return json.Marshal(ix)
}

// Load decodes a serialized index.
func Load(data []byte) (*Index, error) {
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexFormat, err)
	}
	if ix.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrIndexFormat, ix.Version)
	}
	return &ix, nil
}

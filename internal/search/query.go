package search

import (
	"math"
	"sort"
)

// Hit is one scored search result.
type Hit struct {
	Ref   string
	Title string
	Score float64
}

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Search scores documents against query with BM25, summed over fields and weighted by
// field boost. Hits are ordered by descending score, then ref.
func (ix *Index) Search(query string) []Hit {
	terms := Tokenize(query)
	if len(terms) == 0 || len(ix.Documents) == 0 {
		return nil
	}

	byTerm := make(map[string]*Posting, len(ix.InvertedIndex))
	for i := range ix.InvertedIndex {
		byTerm[ix.InvertedIndex[i].Term] = &ix.InvertedIndex[i]
	}
	boosts := make(map[string]float64, len(ix.Fields))
	for _, f := range ix.Fields {
		boosts[f.Name] = f.Boost
	}

	n := float64(len(ix.Documents))
	scores := make(map[int]float64)
	for _, term := range terms {
		p, ok := byTerm[term]
		if !ok {
			continue
		}
		df := float64(p.DocumentFrequency)
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for field, occs := range p.Fields {
			avg := ix.AverageFieldLengths[field]
			for _, o := range occs {
				if o.Doc < 0 || o.Doc >= len(ix.Documents) {
					continue
				}
				length := float64(ix.Documents[o.Doc].FieldLengths[field])
				norm := 1.0
				if avg > 0 {
					norm = 1 - bm25B + bm25B*length/avg
				}
				tf := float64(o.TF)
				scores[o.Doc] += boosts[field] * idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for doc, score := range scores {
		d := ix.Documents[doc]
		hits = append(hits, Hit{Ref: d.Ref, Title: d.Title, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Ref < hits[j].Ref
	})
	return hits
}

// Package check scans published sources for configured filter phrases.
package check

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/docd/internal/docnode"
	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
)

// Match is one line containing a phrase.
type Match struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// PhraseResult holds the matches of one phrase, in file then line order.
type PhraseResult struct {
	Phrase  string  `json:"phrase"`
	Matches []Match `json:"matches"`
}

// Files returns the distinct paths containing the phrase.
func (p PhraseResult) Files() []string {
	var files []string
	seen := make(map[string]struct{})
	for _, m := range p.Matches {
		if _, ok := seen[m.Path]; ok {
			continue
		}
		seen[m.Path] = struct{}{}
		files = append(files, m.Path)
	}
	return files
}

// Result is the outcome of a check run.
type Result struct {
	FilesScanned int            `json:"files_scanned"`
	FilesSkipped int            `json:"files_skipped"`
	Phrases      []PhraseResult `json:"phrases"`
}

// HasMatches reports whether any phrase matched.
func (r *Result) HasMatches() bool {
	for _, p := range r.Phrases {
		if len(p.Matches) > 0 {
			return true
		}
	}
	return false
}

// NoMatches returns the phrases that matched nothing.
func (r *Result) NoMatches() []string {
	var out []string
	for _, p := range r.Phrases {
		if len(p.Matches) == 0 {
			out = append(out, p.Phrase)
		}
	}
	return out
}

// Checker searches file contents for phrases, ignoring case.
type Checker struct {
	phrases []string
	folded  []string
}

// NewChecker returns a Checker for phrases. Blank phrases are dropped.
func NewChecker(phrases []string) *Checker {
	c := &Checker{}
	fold := cases.Fold()
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c.phrases = append(c.phrases, p)
		c.folded = append(c.folded, fold.String(p))
	}
	return c
}

// Run scans the sources of the file nodes under root. Content that is not UTF-8 text is
// skipped.
func (c *Checker) Run(ctx context.Context, root string, nodes []docnode.DocNode) (*Result, error) {
	res := &Result{Phrases: make([]PhraseResult, len(c.phrases))}
	for i, p := range c.phrases {
		res.Phrases[i].Phrase = p
	}

	fold := cases.Fold()
	for _, n := range docnode.Files(nodes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(n.SourcePath)))
		if err != nil {
			return nil, ferrors.FileSystemError("failed to read source").
				WithCause(fmt.Errorf("%s: %w", n.SourcePath, err)).
				WithContext("path", n.SourcePath).
				Build()
		}
		if !utf8.Valid(content) {
			slog.Debug("Skipping non-text file", logfields.Path(n.SourcePath))
			res.FilesSkipped++
			continue
		}
		res.FilesScanned++

		sc := bufio.NewScanner(bytes.NewReader(content))
		sc.Buffer(make([]byte, 0, 64*1024), len(content)+1)
		line := 0
		for sc.Scan() {
			line++
			text := fold.String(sc.Text())
			for i, phrase := range c.folded {
				if strings.Contains(text, phrase) {
					res.Phrases[i].Matches = append(res.Phrases[i].Matches, Match{Path: n.SourcePath, Line: line})
				}
			}
		}
		if err := sc.Err(); err != nil {
			return nil, ferrors.FileSystemError("failed to scan source").
				WithCause(fmt.Errorf("%s: %w", n.SourcePath, err)).
				Build()
		}
	}

	for _, p := range res.Phrases {
		if len(p.Matches) > 0 {
			slog.Info("Filter phrase matched", logfields.Phrase(p.Phrase), logfields.Count(len(p.Files())))
		}
	}
	return res, nil
}

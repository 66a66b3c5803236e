package check

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter writes a check Result.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// Format lists each matching phrase with its files, then the phrases without matches.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	for _, p := range result.Phrases {
		if len(p.Matches) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, p.Phrase); err != nil {
			return err
		}
		lines := make(map[string][]string)
		for _, m := range p.Matches {
			lines[m.Path] = append(lines[m.Path], fmt.Sprint(m.Line))
		}
		for _, file := range p.Files() {
			if _, err := fmt.Fprintf(w, "* %s (line %s)\n", file, strings.Join(lines[file], ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%d file%s scanned", result.FilesScanned, pluralize(result.FilesScanned)); err != nil {
		return err
	}
	if result.FilesSkipped > 0 {
		if _, err := fmt.Fprintf(w, ", %d skipped", result.FilesSkipped); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	none := result.NoMatches()
	if len(none) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "No matches: %s\n", strings.Join(none, ", "))
	return err
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

type jsonOutput struct {
	*Result
	NoMatches []string `json:"no_matches"`
}

// Format outputs the result in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	none := result.NoMatches()
	if none == nil {
		none = []string{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonOutput{Result: result, NoMatches: none})
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

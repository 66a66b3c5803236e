package tree

import "strings"

// NamingPolicy derives identifiers and labels from filesystem names.
type NamingPolicy interface {
	// FileURI returns the uri and display suffix of a file with the given parent uri, stem and
	// suffix (suffix includes the leading dot, or is empty).
	FileURI(parentURI, stem, suffix string) (uri, displaySuffix string)
	// DisplayName returns the human-facing label for a filesystem stem.
	DisplayName(stem string) string
}

// Default naming conventions.
const (
	DefaultSuffixMarker             = "--dot-"
	DefaultNameSeparator            = "--"
	DefaultNameSeparatorReplacement = ": "
	MarkdownSuffix                  = ".md"
)

// SuffixEscapePolicy keeps uris extension free: markdown and extensionless files map to their
// stem, every other suffix is folded into the stem behind SuffixMarker.
type SuffixEscapePolicy struct {
	SuffixMarker             string
	NameSeparator            string
	NameSeparatorReplacement string
}

// DefaultNaming returns the policy with the conventional marker and separators.
func DefaultNaming() SuffixEscapePolicy {
	return SuffixEscapePolicy{
		SuffixMarker:             DefaultSuffixMarker,
		NameSeparator:            DefaultNameSeparator,
		NameSeparatorReplacement: DefaultNameSeparatorReplacement,
	}
}

// FileURI implements NamingPolicy.
func (p SuffixEscapePolicy) FileURI(parentURI, stem, suffix string) (string, string) {
	if suffix == MarkdownSuffix || suffix == "" {
		return joinURI(parentURI, stem), ""
	}
	return joinURI(parentURI, stem+p.SuffixMarker+strings.TrimPrefix(suffix, ".")), suffix
}

// DisplayName implements NamingPolicy.
func (p SuffixEscapePolicy) DisplayName(stem string) string {
	if p.NameSeparator == "" {
		return stem
	}
	return strings.ReplaceAll(stem, p.NameSeparator, p.NameSeparatorReplacement)
}

// SplitName splits a file name into stem and suffix. A name whose only dot is leading
// (".bashrc") or trailing ("notes.") has no suffix.
func SplitName(name string) (stem, suffix string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

func joinURI(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

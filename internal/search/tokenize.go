package search

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords mirrors the english stop word filter of common client-side search engines.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a able about across after all almost also am among an and any are as at
		be because been but by can cannot could dear did do does either else ever every for from get got had
		has have he her hers him his how however i if in into is it its just least let like likely may me
		might most must my neither no nor not of off often on only or other our own rather said say says she
		should since so some than that the their them then there these they this tis to too twas us wants was
		we were what when where which while who whom why will with would yet you your`) {
		stopWords[w] = struct{}{}
	}
}

// normalize folds case and strips diacritics so "Café" and "cafe" index to the same term.
// The transformers are stateful, so a fresh chain is built per call.
func normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize turns text into index terms: normalized, split on anything that is not a letter
// or digit, stop words removed, stemmed.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		terms = append(terms, stem(w))
	}
	return terms
}

func stem(w string) string {
	if len(w) <= 2 {
		return w
	}
	return english.Stem(w, false)
}

package config

import (
	"github.com/alecthomas/chroma/v2/styles"

	"git.home.luguber.info/inful/docd/internal/foundation/normalization"
)

var unsupportedPolicies = normalization.NewNormalizer(map[string]string{
	UnsupportedSkip: UnsupportedSkip,
	UnsupportedFail: UnsupportedFail,
})

func highlightStyles() *normalization.Normalizer[string] {
	names := make(map[string]string)
	for _, name := range styles.Names() {
		names[name] = name
	}
	return normalization.NewNormalizer(names)
}

// normalize canonicalizes enum-like settings. Unknown values are left for Validate to report.
func (c *Config) normalize() {
	c.Source.UnsupportedEntries = unsupportedPolicies.Normalize(c.Source.UnsupportedEntries, c.Source.UnsupportedEntries)
	c.Render.HighlightStyle = highlightStyles().Normalize(c.Render.HighlightStyle, c.Render.HighlightStyle)
}

package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// policy is safe for concurrent use once built.
var policy = newPolicy()

// newPolicy starts from the UGC policy and keeps what rendered pages need: chroma's inline
// highlight styles, GFM task-list checkboxes and footnote roles. Links inside the site do not
// get rel="nofollow".
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)

	p.AllowStyling()
	p.AllowAttrs("style").OnElements("span", "pre", "code")
	p.AllowAttrs("role").Matching(regexp.MustCompile(`^doc-[a-z]+$`)).OnElements("a", "div", "section", "sup")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Sanitize strips everything from an HTML fragment that can run script, submit data or
// load active content.
func Sanitize(fragment []byte) ([]byte, error) {
	return policy.SanitizeBytes(fragment), nil
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	in := `<p onclick="x()" class="keep">hi <a href=" JavaScript:alert(1)">bad</a> <a href="/ok">ok</a></p>` +
		`<script>alert(1)</script><div><iframe src="https://evil"></iframe><span style="color:red">kept</span></div>`

	out, err := Sanitize([]byte(in))
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "onclick")
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "<iframe")
	assert.NotContains(t, html, "alert(1)")
	assert.Contains(t, html, `class="keep"`)
	assert.Contains(t, html, `<a href="/ok">ok</a>`)
	assert.Contains(t, html, `<span style="color:red">kept</span>`)
}

func TestSanitize_PlainFragmentUnchanged(t *testing.T) {
	in := "<h1 id=\"x\">Title</h1>\n<p>Body &amp; more</p>\n"
	out, err := Sanitize([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestSanitize_ActiveContentVectors(t *testing.T) {
	tests := map[string]struct {
		in        string
		forbidden []string
		kept      string
	}{
		"svg animate href": {
			in:        `<svg><a><animate attributeName="href" values="javascript:alert(1)"/><text x="20" y="20">click</text></a></svg>`,
			forbidden: []string{"<svg", "<animate", "javascript:"},
		},
		"data url link": {
			in:        `<p><a href="data:text/html;base64,PHNjcmlwdD5hbGVydCgxKTwvc2NyaXB0Pg==">open</a></p>`,
			forbidden: []string{"data:text/html", "href="},
			kept:      "open",
		},
		"style element": {
			in:        `<style>body { background: url("javascript:alert(1)") }</style><p>text</p>`,
			forbidden: []string{"<style", "javascript:", "background"},
			kept:      "<p>text</p>",
		},
		"form action": {
			in:        `<form action="https://evil.example/steal"><input name="q"><button>go</button></form>`,
			forbidden: []string{"<form", "evil.example", `name="q"`},
		},
		"event handler on image": {
			in:        `<img src="/a.png" onerror="alert(1)" alt="a">`,
			forbidden: []string{"onerror", "alert(1)"},
			kept:      `src="/a.png"`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := Sanitize([]byte(tt.in))
			require.NoError(t, err)
			html := string(out)
			for _, f := range tt.forbidden {
				assert.NotContains(t, html, f)
			}
			if tt.kept != "" {
				assert.Contains(t, html, tt.kept)
			}
		})
	}
}

func TestSanitize_KeepsHighlightAndTaskMarkup(t *testing.T) {
	in := `<pre style="background-color:#fff"><code><span style="color:#d73a49">def</span></code></pre>` +
		`<ul><li><input checked="" disabled="" type="checkbox"> done</li></ul>` +
		`<p><a href="https://example.com">ext</a></p>`

	out, err := Sanitize([]byte(in))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<pre style="background-color:#fff">`)
	assert.Contains(t, html, `<span style="color:#d73a49">def</span>`)
	assert.Contains(t, html, `type="checkbox"`)
	assert.Contains(t, html, `rel="nofollow"`)
}

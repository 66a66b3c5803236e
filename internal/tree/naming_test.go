package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, stem, suffix string
	}{
		{"guide.md", "guide", ".md"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"Makefile", "Makefile", ""},
		{".bashrc", ".bashrc", ""},
		{".config.yaml", ".config", ".yaml"},
		{"trailing.", "trailing.", ""},
	}
	for _, tt := range tests {
		stem, suffix := SplitName(tt.name)
		assert.Equal(t, tt.stem, stem, tt.name)
		assert.Equal(t, tt.suffix, suffix, tt.name)
	}
}

func TestSuffixEscapePolicy(t *testing.T) {
	p := DefaultNaming()

	uri, ds := p.FileURI("", "guide", ".md")
	assert.Equal(t, "guide", uri)
	assert.Equal(t, "", ds)

	uri, ds = p.FileURI("sub", "code", ".py")
	assert.Equal(t, "sub/code--dot-py", uri)
	assert.Equal(t, ".py", ds)

	uri, ds = p.FileURI("sub", "LICENSE", "")
	assert.Equal(t, "sub/LICENSE", uri)
	assert.Equal(t, "", ds)

	custom := SuffixEscapePolicy{SuffixMarker: "~", NameSeparator: "__", NameSeparatorReplacement: " / "}
	uri, _ = custom.FileURI("", "main", ".go")
	assert.Equal(t, "main~go", uri)
	assert.Equal(t, "a / b", custom.DisplayName("a__b"))
	assert.Equal(t, "a--b", SuffixEscapePolicy{}.DisplayName("a--b"))
}

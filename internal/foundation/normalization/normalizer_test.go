package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type policy string

const (
	policySkip policy = "skip"
	policyFail policy = "fail"
)

func newPolicies() *Normalizer[policy] {
	return NewNormalizer(map[string]policy{"skip": policySkip, "Fail": policyFail})
}

func TestNormalizer_Lookup(t *testing.T) {
	n := newPolicies()

	tests := []struct {
		input string
		want  policy
	}{
		{"skip", policySkip},
		{"SKIP", policySkip},
		{"  fail ", policyFail},
		{"FaIl", policyFail},
	}
	for _, tt := range tests {
		got, err := n.Lookup(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := n.Lookup("ignore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[fail skip]")
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newPolicies()
	assert.Equal(t, policyFail, n.Normalize(" FAIL", policySkip))
	assert.Equal(t, policySkip, n.Normalize("bogus", policySkip))
	assert.Equal(t, policy("bogus"), n.Normalize("bogus", "bogus"))
}

func TestNormalizer_Keys(t *testing.T) {
	n := newPolicies()
	keys := n.Keys()
	assert.Equal(t, []string{"fail", "skip"}, keys)
	keys[0] = "mutated"
	assert.Equal(t, []string{"fail", "skip"}, n.Keys())
}

func TestClean(t *testing.T) {
	assert.Equal(t, "github-dark", Clean("  GitHub-Dark\t"))
	assert.Empty(t, Clean("   "))
}

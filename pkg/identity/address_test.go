package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var addrPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestStandardizeAddress(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"short no prefix", "1"},
		{"short with prefix", "0x1"},
		{"already full", "0x" + "ab" + repeat("0", 62)},
		{"uppercase", "0XABCDEF"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StandardizeAddress(tc.in)
			assert.Regexp(t, addrPattern, got)
		})
	}
}

func TestStandardizeAddress_Empty(t *testing.T) {
	assert.Equal(t, "", StandardizeAddress(""))
}

func TestIsStandardized(t *testing.T) {
	assert.True(t, IsStandardized(StandardizeAddress("0x1")))
	assert.False(t, IsStandardized("0x1"))
	assert.False(t, IsStandardized("not an address"))
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

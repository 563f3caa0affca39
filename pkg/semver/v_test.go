package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestV_String(t *testing.T) {
	cases := []struct {
		v        V
		expected string
	}{
		{V{}, "0.0.0"},
		{V{Major: 1}, "1.0.0"},
		{V{Major: 1, Minor: 2}, "1.2.0"},
		{V{Major: 1, Minor: 2, Patch: 3}, "1.2.3"},
		{V{PreRelease: "alfa"}, "0.0.0-alfa"},
		{V{BuildMetadata: []string{"tag1", "tag2"}}, "0.0.0+tag1.tag2"},
		{V{Major: 1, Minor: 2, Patch: 3, PreRelease: "beta", BuildMetadata: []string{"x64"}}, "1.2.3-beta+x64"},
	}

	for _, c := range cases {
		require.Equal(t, c.expected, c.v.String(), "%#v", c.v)
	}
}

func TestParse(t *testing.T) {
	req := require.New(t)

	v, err := Parse("v1.4.0-rc1+linux.amd64")
	req.NoError(err)
	req.Equal(V{Major: 1, Minor: 4, PreRelease: "rc1", BuildMetadata: []string{"linux", "amd64"}}, v)

	v, err = Parse("0.2.7")
	req.NoError(err)
	req.Equal("0.2.7", v.String())

	for _, bad := range []string{"", "1.2", "1.2.x", "1.2.3-", "1.2.3+", "1.2.3.4"} {
		_, err := Parse(bad)
		req.ErrorIs(err, ErrInvalidVersion, bad)
	}
}

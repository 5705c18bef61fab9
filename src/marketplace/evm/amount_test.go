package evm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("0.05", 18)
	require.NoError(t, err)
	assert.Equal(t, "50000000000000000", v.String())

	v, err = ParseUnits(" 2 ", 6)
	require.NoError(t, err)
	assert.Equal(t, "2000000", v.String())

	for _, bad := range []string{"", "abc", "-1", "0.0000001"} {
		_, err := ParseUnits(bad, 6)
		assert.Error(t, err, bad)
	}
}

func TestParseID(t *testing.T) {
	v, ok := parseID("42")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int64())

	_, ok = parseID("abc")
	assert.False(t, ok)
	_, ok = parseID("-3")
	assert.False(t, ok)
}

package machinekey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "vmk_"))
	assert.NotContains(t, key, "=")

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestHashAndVerify(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	hash := Hash(key)
	assert.Len(t, hash, 64)

	assert.True(t, Verify(key, hash))
	assert.False(t, Verify(key+"x", hash))
	assert.False(t, Verify(key, Hash("something-else")))
}

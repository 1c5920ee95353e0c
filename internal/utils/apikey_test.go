package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey(32)
	require.NoError(t, err)
	assert.Len(t, key, 32)
	for _, r := range key {
		assert.True(t, strings.ContainsRune(apiKeyAlphabet, r), "unexpected rune %q", r)
	}

	// нулевая длина — дефолт 32
	key, err = GenerateAPIKey(0)
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestGenerateAPIKeyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey(32)
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

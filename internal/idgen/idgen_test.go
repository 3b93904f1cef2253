package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := NewFieldID()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, FieldPrefix))
		assert.Len(t, id, len(FieldPrefix)+Length)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateWithPrefix_Alphabet(t *testing.T) {
	id, err := GenerateWithPrefix("")
	require.NoError(t, err)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
	}
}

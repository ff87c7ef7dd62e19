package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixOrder)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	prefixes := []string{PrefixUser, PrefixBook, PrefixCategory, PrefixCart, PrefixCartItem, PrefixOrder, PrefixOrderItem}

	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))
			suffix := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, suffix, size)
			assert.NotContains(t, suffix, "-")
			assert.NotContains(t, suffix, "_")
		})
	}
}


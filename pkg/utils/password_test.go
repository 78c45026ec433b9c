package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("tajneheslo")
	require.NoError(t, err)
	assert.NotEqual(t, "tajneheslo", hash)

	assert.True(t, CheckPassword("tajneheslo", hash))
	assert.False(t, CheckPassword("jineheslo", hash))
	assert.False(t, CheckPassword("tajneheslo", "not-a-bcrypt-hash"))

	// 同一明文两次哈希结果不同（随机盐）
	hash2, err := HashPassword("tajneheslo")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("board-admin-secret")
	require.NoError(t, err)
	require.NotEqual(t, "board-admin-secret", hash)

	require.True(t, VerifyPassword(hash, "board-admin-secret"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestGenerateTokenLength(t *testing.T) {
	token, err := GenerateToken(48)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := GenerateToken(48)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

package utils

import (
	"testing"
	"time"

	"polarflow/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateToken("usr-1", "casey@example.com", time.Hour)
	require.NoError(t, err)

	sub, email, err := ExtractIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", sub)
	assert.Equal(t, "casey@example.com", email)
}

func TestExpiredTokenRejected(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := GenerateToken("usr-1", "casey@example.com", -time.Minute)
	require.NoError(t, err)

	_, _, err = ExtractIDFromToken(token)
	require.Error(t, err)
}

func TestTokenFromRotatedSecretRejected(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	token, err := GenerateToken("usr-1", "casey@example.com", time.Hour)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "rotated-secret"
	_, _, err = ExtractIDFromToken(token)
	require.Error(t, err)
}

func TestHashTokenIsStableHexDigest(t *testing.T) {
	assert.Equal(t, HashToken("tok_abc"), HashToken("tok_abc"))
	assert.NotEqual(t, HashToken("tok_abc"), HashToken("tok_abd"))
	assert.Len(t, HashToken("tok_abc"), 64)
}

package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomToken(t *testing.T) {
	a, err := CryptoRandomToken(32)
	require.NoError(t, err)
	b, err := CryptoRandomToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	decoded, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestCryptoRandomString(t *testing.T) {
	s, err := CryptoRandomString(15)
	require.NoError(t, err)
	assert.Len(t, s, 15)
}

func TestArtifactDigest(t *testing.T) {
	a := ArtifactDigest("token-value")
	b := ArtifactDigest("token-value")
	c := ArtifactDigest("other-value")

	// Deterministic, collision-free for distinct inputs, fixed length
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 100)
	assert.NotContains(t, a, "token-value")
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		SHA256Hex("hello"),
	)
}

package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/mitradev/ssogate/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(accessTTL time.Duration) *Provider {
	return NewProvider(&config.Config{
		Issuer:                "https://sso.example.com",
		JWTSecret:             "test-secret-256-bit-value-for-hs256",
		AccessTokenExpiration: accessTTL,
		IDTokenExpiration:     time.Hour,
	})
}

func TestAccessToken_Roundtrip(t *testing.T) {
	p := testProvider(time.Hour)
	ctx := context.Background()

	result, err := p.GenerateAccessToken(ctx, "user-1", "client-1", "openid profile")
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, result.TokenType)

	validated, err := p.ValidateAccessToken(ctx, result.TokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", validated.UserID)
	assert.Equal(t, "client-1", validated.ClientID)
	assert.Equal(t, "openid profile", validated.Scopes)
	assert.WithinDuration(t, result.ExpiresAt, validated.ExpiresAt, time.Second)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	p := testProvider(-time.Minute)
	ctx := context.Background()

	result, err := p.GenerateAccessToken(ctx, "user-1", "client-1", "openid")
	require.NoError(t, err)

	_, err = p.ValidateAccessToken(ctx, result.TokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	ctx := context.Background()

	result, err := testProvider(time.Hour).GenerateAccessToken(ctx, "user-1", "client-1", "openid")
	require.NoError(t, err)

	other := NewProvider(&config.Config{
		JWTSecret:             "a-completely-different-secret",
		AccessTokenExpiration: time.Hour,
	})
	_, err = other.ValidateAccessToken(ctx, result.TokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	p := testProvider(time.Hour)

	_, err := p.ValidateAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsNonAccessType(t *testing.T) {
	p := testProvider(time.Hour)

	// A signed JWT without type=access must not pass
	claims := jwt.MapClaims{
		"user_id": "user-1",
		"type":    "id",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(p.config.JWTSecret))
	require.NoError(t, err)

	_, err = p.ValidateAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken_OpaqueAndUnique(t *testing.T) {
	p := testProvider(time.Hour)
	ctx := context.Background()

	a, err := p.GenerateRefreshToken(ctx)
	require.NoError(t, err)
	b, err := p.GenerateRefreshToken(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestGenerateIDToken_Claims(t *testing.T) {
	p := testProvider(time.Hour)

	signed, err := p.GenerateIDToken(IDTokenClaims{
		Issuer:   "https://sso.example.com",
		Subject:  "user-1",
		Audience: "client-1",
		AuthTime: time.Now(),
		Nonce:    "nonce-1",
		AtHash:   ComputeAtHash("some-access-token"),
		Email:    "jamie@example.com",
		Name:     "Jamie Doe",
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte(p.config.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)

	assert.Equal(t, "https://sso.example.com", claims["iss"])
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "client-1", claims["aud"])
	assert.Equal(t, "nonce-1", claims["nonce"])
	assert.Equal(t, "jamie@example.com", claims["email"])
	assert.Equal(t, "Jamie Doe", claims["name"])
	assert.NotEmpty(t, claims["at_hash"])
	assert.Contains(t, claims, "auth_time")

	// Empty optional claims stay out of the payload entirely
	assert.NotContains(t, claims, "department")
	assert.NotContains(t, claims, "role_id")
}

func TestComputeAtHash(t *testing.T) {
	sum := sha256.Sum256([]byte("token-value"))
	want := base64.RawURLEncoding.EncodeToString(sum[:16])
	assert.Equal(t, want, ComputeAtHash("token-value"))
}

func TestScopeSet(t *testing.T) {
	set := ScopeSet("openid  profile email")
	assert.True(t, set["openid"])
	assert.True(t, set["profile"])
	assert.True(t, set["email"])
	assert.False(t, set["admin"])

	assert.Empty(t, ScopeSet(""))
}

package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type constant
const TokenTypeBearer = "Bearer"

// Result holds a freshly signed token
type Result struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
	Claims      jwt.MapClaims
}

// ValidationResult holds the verified claims of a presented token
type ValidationResult struct {
	UserID    string
	ClientID  string
	Scopes    string
	ExpiresAt time.Time
	Claims    jwt.MapClaims
}

// Provider signs and verifies tokens with the configured HS256 secret.
// Access and ID tokens are self-contained JWTs; refresh tokens are
// opaque random values backed by a server-side artifact record, so the
// provider only mints the random value for those.
type Provider struct {
	config *config.Config
}

// NewProvider creates a token provider bound to the loaded config
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{config: cfg}
}

// GenerateAccessToken creates a signed access JWT
func (p *Provider) GenerateAccessToken(
	ctx context.Context,
	userID, clientID, scopes string,
) (*Result, error) {
	expiresAt := time.Now().Add(p.config.AccessTokenExpiration)

	claims := jwt.MapClaims{
		"user_id":   userID,
		"client_id": clientID,
		"scope":     scopes,
		"type":      "access",
		"exp":       expiresAt.Unix(),
		"iat":       time.Now().Unix(),
		"iss":       p.config.Issuer,
		"sub":       userID,
		"aud":       clientID,
		"jti":       uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(p.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: tokenString,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Claims:      claims,
	}, nil
}

// GenerateRefreshToken mints an opaque refresh token value. The caller
// persists the backing record; nothing about the user is recoverable
// from the value itself.
func (p *Provider) GenerateRefreshToken(ctx context.Context) (string, error) {
	value, err := util.CryptoRandomToken(64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return value, nil
}

// ValidateAccessToken verifies an access JWT and extracts its claims
func (p *Provider) ValidateAccessToken(
	ctx context.Context,
	tokenString string,
) (*ValidationResult, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(p.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are opaque; only access JWTs pass here
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	clientID, _ := claims["client_id"].(string)
	scopes, _ := claims["scope"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &ValidationResult{
		UserID:    userID,
		ClientID:  clientID,
		Scopes:    scopes,
		ExpiresAt: time.Unix(int64(exp), 0),
		Claims:    claims,
	}, nil
}

// ScopeSet parses a space-separated scope string into a boolean lookup map.
func ScopeSet(scopes string) map[string]bool {
	set := make(map[string]bool)
	for _, s := range strings.Fields(scopes) {
		set[s] = true
	}
	return set
}

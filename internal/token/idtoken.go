package token

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IDTokenClaims holds everything that goes into an OIDC ID Token
// (OIDC Core 1.0 §2). Optional fields are omitted from the JWT when
// empty. Assembled by the token service from the live user record plus
// the nonce captured at authorization time.
type IDTokenClaims struct {
	Issuer   string
	Subject  string
	Audience string
	Expiry   time.Duration
	AuthTime time.Time
	Nonce    string
	AtHash   string

	// Profile claims from the user record
	Email      string
	Name       string
	EmployeeID string
	Department string
	Position   string
	AvatarURL  string
	RoleID     string
	RoleName   string
}

// GenerateIDToken creates a signed HS256 JWT ID Token.
// ID tokens are not stored in the database; they are short-lived and
// non-revocable by design. They are minted at code exchange only, never
// on refresh.
func (p *Provider) GenerateIDToken(claims IDTokenClaims) (string, error) {
	now := time.Now()
	expiry := claims.Expiry
	if expiry <= 0 {
		expiry = p.config.IDTokenExpiration
	}

	payload := jwt.MapClaims{
		"iss": claims.Issuer,
		"sub": claims.Subject,
		"aud": claims.Audience,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
	}

	if !claims.AuthTime.IsZero() {
		payload["auth_time"] = claims.AuthTime.Unix()
	}
	if claims.Nonce != "" {
		payload["nonce"] = claims.Nonce
	}
	if claims.AtHash != "" {
		payload["at_hash"] = claims.AtHash
	}

	// Profile claims
	if claims.Email != "" {
		payload["email"] = claims.Email
	}
	if claims.Name != "" {
		payload["name"] = claims.Name
	}
	if claims.EmployeeID != "" {
		payload["employee_id"] = claims.EmployeeID
	}
	if claims.Department != "" {
		payload["department"] = claims.Department
	}
	if claims.Position != "" {
		payload["position"] = claims.Position
	}
	if claims.AvatarURL != "" {
		payload["avatar_url"] = claims.AvatarURL
	}
	if claims.RoleID != "" {
		payload["role_id"] = claims.RoleID
	}
	if claims.RoleName != "" {
		payload["role_name"] = claims.RoleName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString([]byte(p.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return tokenString, nil
}

// ComputeAtHash computes the at_hash claim value per OIDC Core 1.0 §3.3.2.11.
// at_hash = base64url( left-most 128 bits of SHA-256( ASCII(access_token) ) )
func ComputeAtHash(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}

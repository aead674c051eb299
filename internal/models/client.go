package models

import (
	"context"
	"encoding/base32"
	"time"

	"github.com/mitradev/ssogate/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// Token endpoint authentication methods
const (
	AuthMethodNone        = "none"
	AuthMethodSecretBasic = "client_secret_basic"
	AuthMethodSecretPost  = "client_secret_post"
)

// Base32 characters, but lowercased.
const lowerBase32Chars = "abcdefghijklmnopqrstuvwxyz234567"

// base32 encoder that uses lowered characters without padding.
var base32Lower = base32.NewEncoding(lowerBase32Chars).WithPadding(base32.NoPadding)

// Client is a registered relying party
type Client struct {
	ID               int64       `gorm:"primaryKey;autoIncrement"                json:"-"`
	ClientID         string      `gorm:"uniqueIndex;not null;type:varchar(255)"  json:"client_id"`
	ClientSecretHash string      `gorm:"type:text"                               json:"-"` // bcrypt hash, empty for public clients
	Name             string      `gorm:"not null;type:varchar(255)"              json:"name"`
	Description      string      `gorm:"type:text"                               json:"description,omitempty"`
	SiteID           string      `gorm:"index;type:varchar(36)"                  json:"site_id,omitempty"` // empty = global client
	RedirectURIs     StringArray `gorm:"type:json"                               json:"redirect_uris"`
	PostLogoutURIs   StringArray `gorm:"type:json"                               json:"post_logout_uris,omitempty"`
	GrantTypes       StringArray `gorm:"type:json"                               json:"grant_types"`
	ResponseTypes    StringArray `gorm:"type:json"                               json:"response_types"`
	Scopes           StringArray `gorm:"type:json"                               json:"scopes"`

	// "none", "client_secret_basic", or "client_secret_post"
	TokenEndpointAuthMethod string `gorm:"not null;default:'client_secret_basic';type:varchar(50)" json:"token_endpoint_auth_method"`

	IsFirstParty       bool `gorm:"not null;default:false"      json:"is_first_party"`      // skips the consent step
	RequireAccessGrant bool `gorm:"not null;default:false"      json:"require_access_grant"` // gates authorization on explicit access
	IsActive           bool `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublic reports whether the client authenticates with PKCE only
func (c *Client) IsPublic() bool {
	return c.TokenEndpointAuthMethod == AuthMethodNone
}

// HasRedirectURI reports whether uri is a byte-exact member of the
// registered redirect URI set.
func (c *Client) HasRedirectURI(uri string) bool {
	return c.RedirectURIs.Contains(uri)
}

// AllowsGrantType reports whether the client may use the given grant type
func (c *Client) AllowsGrantType(grantType string) bool {
	return c.GrantTypes.Contains(grantType)
}

// AllowsScope reports whether a single scope token is registered for the client
func (c *Client) AllowsScope(scope string) bool {
	return c.Scopes.Contains(scope)
}

// GenerateClientSecret generates a fresh client secret, stores the bcrypt
// hash on the model, and returns the plaintext. The plaintext is shown
// once at creation time and never persisted.
func (c *Client) GenerateClientSecret(ctx context.Context) (string, error) {
	rBytes, err := util.CryptoRandomBytes(32)
	if err != nil {
		return "", err
	}
	// Add a prefix to the base32, this is in order to make it easier
	// for code scanners to grab sensitive tokens.
	clientSecret := "sgk_" + base32Lower.EncodeToString(rBytes)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	c.ClientSecretHash = string(hashedSecret)
	return clientSecret, nil
}

// ValidateClientSecret validates the given secret against the stored hash
func (c *Client) ValidateClientSecret(secret []byte) bool {
	if c.ClientSecretHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.ClientSecretHash), secret) == nil
}

// TableName overrides the table name used by Client to `oidc_clients`
func (Client) TableName() string {
	return "oidc_clients"
}

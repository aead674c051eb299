package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ArtifactKind discriminates the protocol artifact stored in a row
type ArtifactKind string

const (
	ArtifactAuthorizationCode ArtifactKind = "authorization_code"
	ArtifactRefreshToken      ArtifactKind = "refresh_token"
	ArtifactGrant             ArtifactKind = "grant"
	ArtifactSession           ArtifactKind = "session"
)

// ArtifactPayload stores the kind-specific record as JSON
type ArtifactPayload map[string]any

// Value implements the driver.Valuer interface for database storage
func (p ArtifactPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *ArtifactPayload) Scan(value any) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal ArtifactPayload value: %v", value)
	}

	result := make(ArtifactPayload)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*p = result
	return nil
}

// GrantArtifact is a transient protocol record: an authorization code, a
// refresh token backing record, or a grant/session entry. Rows are keyed
// by the digest of the presented value, never by the value itself.
//
// An artifact whose ExpiresAt has passed is semantically absent even
// while the row still exists; all store reads enforce this and a
// periodic sweep removes the leftovers.
type GrantArtifact struct {
	ID   uint         `gorm:"primaryKey;autoIncrement"`
	Kind ArtifactKind `gorm:"uniqueIndex:idx_artifact_kind_key;not null;type:varchar(50)"`
	Key  string       `gorm:"uniqueIndex:idx_artifact_kind_key;not null;type:varchar(255)"`

	Payload ArtifactPayload `gorm:"type:json"`

	// Secondary lookup keys
	UserCode string `gorm:"index;type:varchar(255)"`
	UID      string `gorm:"index;type:varchar(255)"`
	GrantID  string `gorm:"index;type:varchar(255)"` // token family, for bulk revocation

	ExpiresAt *time.Time `gorm:"index"` // nil = never expires
	CreatedAt time.Time
}

// IsExpired reports whether the artifact must be treated as absent
func (a *GrantArtifact) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

func (GrantArtifact) TableName() string {
	return "grant_artifacts"
}

// EncodeArtifactPayload converts a typed payload struct into the JSON
// map stored on the row.
func EncodeArtifactPayload(v any) (ArtifactPayload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	payload := make(ArtifactPayload)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Decode unmarshals the stored payload into a typed struct
func (p ArtifactPayload) Decode(v any) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// AuthorizationCodeData is the typed payload behind an
// authorization_code artifact. It binds the code to everything the token
// endpoint must re-verify at exchange time.
type AuthorizationCodeData struct {
	ClientID            string   `json:"client_id"`
	UserID              string   `json:"user_id"`
	RedirectURI         string   `json:"redirect_uri"`
	Scopes              []string `json:"scopes"`
	Nonce               string   `json:"nonce,omitempty"`
	CodeChallenge       string   `json:"code_challenge,omitempty"`
	CodeChallengeMethod string   `json:"code_challenge_method,omitempty"`
}

// RefreshTokenData is the typed payload behind a refresh_token artifact
type RefreshTokenData struct {
	ClientID string   `json:"client_id"`
	UserID   string   `json:"user_id"`
	Scopes   []string `json:"scopes"`
}

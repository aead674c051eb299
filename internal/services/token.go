package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"
	"github.com/mitradev/ssogate/internal/token"
	"github.com/mitradev/ssogate/internal/util"
)

var (
	// ErrInvalidClient means client authentication at the token endpoint
	// failed. Maps to 401 with WWW-Authenticate.
	ErrInvalidClient = errors.New("invalid_client")

	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrUnauthorizedClient   = errors.New("unauthorized_client")
)

// IssuedTokens is the result of a successful token grant
type IssuedTokens struct {
	AccessToken      string
	TokenType        string
	ExpiresIn        int64
	RefreshToken     string
	IDToken          string
	Scopes           []string
	GrantID          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenService implements the token endpoint grants: authorization_code
// exchange and refresh_token rotation. Access and ID tokens are signed
// JWTs and never stored; refresh tokens are opaque values whose backing
// records live in the grant artifact table, keyed by digest.
type TokenService struct {
	store         *store.Store
	config        *config.Config
	tokenProvider *token.Provider
	auditService  *AuditService
	metrics       metrics.Recorder
}

func NewTokenService(
	s *store.Store,
	cfg *config.Config,
	provider *token.Provider,
	auditService *AuditService,
	m metrics.Recorder,
) *TokenService {
	return &TokenService{
		store:         s,
		config:        cfg,
		tokenProvider: provider,
		auditService:  auditService,
		metrics:       m,
	}
}

// AuthenticateClient resolves and verifies the client credentials of a
// token request. Credentials from the Authorization header take
// precedence over body parameters; when the header is present the body
// credentials are ignored entirely. Public clients authenticate by
// identifier alone, confidential clients must present their secret.
func (s *TokenService) AuthenticateClient(
	ctx context.Context,
	basicID, basicSecret, formID, formSecret string,
) (*models.Client, error) {
	clientID, clientSecret := formID, formSecret
	if basicID != "" {
		clientID, clientSecret = basicID, basicSecret
	}
	if clientID == "" {
		return nil, ErrInvalidClient
	}

	client, err := s.store.GetActiveClient(ctx, clientID)
	if err != nil {
		return nil, ErrInvalidClient
	}

	if client.IsPublic() {
		return client, nil
	}

	if clientSecret == "" || !client.ValidateClientSecret([]byte(clientSecret)) {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthenticationFailure,
			Severity:     models.SeverityWarning,
			ResourceType: models.ResourceClient,
			ResourceID:   client.ClientID,
			Action:       "Client authentication failed at token endpoint",
			Success:      false,
		})
		return nil, ErrInvalidClient
	}

	return client, nil
}

// ExchangeAuthorizationCode issues tokens for an already-consumed
// authorization code: an access JWT, an opaque refresh token joining the
// code's grant family, and an ID token when the openid scope was
// granted. The subject is re-checked against the live user record so a
// deactivated user cannot complete an exchange.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	client *models.Client,
	code *models.AuthorizationCodeData,
	grantID string,
) (*IssuedTokens, error) {
	if !client.AllowsGrantType("authorization_code") {
		return nil, ErrUnauthorizedClient
	}

	user, err := s.store.GetUserByID(ctx, code.UserID)
	if err != nil || !user.IsActive() {
		return nil, ErrInvalidGrant
	}

	start := time.Now()
	scopes := strings.Join(code.Scopes, " ")

	accessResult, err := s.tokenProvider.GenerateAccessToken(
		ctx,
		user.ID,
		client.ClientID,
		scopes,
	)
	if err != nil {
		log.Printf("[Token] Access token generation failed: %v", err)
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	refreshValue, refreshExpiresAt, err := s.issueRefreshToken(
		ctx,
		client.ClientID,
		user.ID,
		code.Scopes,
		grantID,
	)
	if err != nil {
		return nil, err
	}

	issued := &IssuedTokens{
		AccessToken:      accessResult.TokenString,
		TokenType:        accessResult.TokenType,
		ExpiresIn:        int64(time.Until(accessResult.ExpiresAt).Seconds()),
		RefreshToken:     refreshValue,
		Scopes:           code.Scopes,
		GrantID:          grantID,
		AccessExpiresAt:  accessResult.ExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}

	// ID token only at code exchange, never on refresh (OIDC Core 1.0
	// §3.1.3.3). It is not stored; short-lived and non-revocable.
	scopeSet := token.ScopeSet(scopes)
	if scopeSet["openid"] {
		claims := token.IDTokenClaims{
			Issuer:   strings.TrimRight(s.config.Issuer, "/"),
			Subject:  user.ID,
			Audience: client.ClientID,
			AuthTime: start,
			Nonce:    code.Nonce,
			AtHash:   token.ComputeAtHash(accessResult.TokenString),
		}
		if scopeSet["profile"] {
			claims.Name = user.Name
			claims.EmployeeID = user.EmployeeID
			claims.Department = user.Department
			claims.Position = user.Position
			claims.AvatarURL = user.AvatarURL
			claims.RoleID = user.RoleID
			claims.RoleName = user.RoleName
		}
		if scopeSet["email"] {
			claims.Email = user.Email
		}

		idToken, err := s.tokenProvider.GenerateIDToken(claims)
		if err != nil {
			log.Printf("[Token] ID token generation failed: %v", err)
			return nil, fmt.Errorf("token generation failed: %w", err)
		}
		issued.IDToken = idToken
	}

	duration := time.Since(start)
	s.metrics.RecordTokenIssued("access", "authorization_code", duration)
	s.metrics.RecordTokenIssued("refresh", "authorization_code", duration)

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessTokenIssued,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ResourceType: models.ResourceToken,
		ResourceID:   grantID,
		Action:       "Tokens issued via authorization code exchange",
		Details: models.AuditDetails{
			"client_id":       client.ClientID,
			"scopes":          scopes,
			"id_token_issued": issued.IDToken != "",
		},
		Success: true,
	})

	return issued, nil
}

// RefreshAccessToken rotates a refresh token: the presented value is
// atomically consumed, a new access JWT is minted, and a replacement
// refresh token is stored in the same grant family with a fresh
// lifetime. The subject and scopes carry over unchanged and no ID token
// is reissued. A replayed or unknown value is the same generic
// invalid_grant as every other failure.
func (s *TokenService) RefreshAccessToken(
	ctx context.Context,
	client *models.Client,
	refreshTokenValue string,
) (*IssuedTokens, error) {
	if !client.AllowsGrantType("refresh_token") {
		return nil, ErrUnauthorizedClient
	}
	if refreshTokenValue == "" {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidGrant
	}

	artifact, err := s.store.ConsumeArtifact(
		ctx,
		models.ArtifactRefreshToken,
		util.ArtifactDigest(refreshTokenValue),
	)
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidGrant
	}

	var data models.RefreshTokenData
	if err := artifact.Payload.Decode(&data); err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidGrant
	}

	// The token is bound to the client that obtained it
	if data.ClientID != client.ClientID {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidGrant
	}

	// Re-check the subject: a deactivated user stops refreshing
	user, err := s.store.GetUserByID(ctx, data.UserID)
	if err != nil || !user.IsActive() {
		s.metrics.RecordTokenRefresh(false)
		return nil, ErrInvalidGrant
	}

	start := time.Now()
	scopes := strings.Join(data.Scopes, " ")

	accessResult, err := s.tokenProvider.GenerateAccessToken(
		ctx,
		user.ID,
		client.ClientID,
		scopes,
	)
	if err != nil {
		log.Printf("[Token] Access token generation failed: %v", err)
		s.metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	newValue, refreshExpiresAt, err := s.issueRefreshToken(
		ctx,
		client.ClientID,
		user.ID,
		data.Scopes,
		artifact.GrantID,
	)
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, err
	}

	s.metrics.RecordTokenRefresh(true)
	s.metrics.RecordTokenIssued("access", "refresh_token", time.Since(start))

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenRefreshed,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ResourceType: models.ResourceToken,
		ResourceID:   artifact.GrantID,
		Action:       "Access token refreshed, refresh token rotated",
		Details: models.AuditDetails{
			"client_id": client.ClientID,
			"scopes":    scopes,
		},
		Success: true,
	})

	return &IssuedTokens{
		AccessToken:      accessResult.TokenString,
		TokenType:        accessResult.TokenType,
		ExpiresIn:        int64(time.Until(accessResult.ExpiresAt).Seconds()),
		RefreshToken:     newValue,
		Scopes:           data.Scopes,
		GrantID:          artifact.GrantID,
		AccessExpiresAt:  accessResult.ExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// issueRefreshToken mints an opaque value and stores its backing
// artifact. The plaintext value is returned to the caller once and only
// its digest is persisted.
func (s *TokenService) issueRefreshToken(
	ctx context.Context,
	clientID, userID string,
	scopes []string,
	grantID string,
) (string, time.Time, error) {
	value, err := s.tokenProvider.GenerateRefreshToken(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("refresh token generation failed: %w", err)
	}

	payload, err := models.EncodeArtifactPayload(models.RefreshTokenData{
		ClientID: clientID,
		UserID:   userID,
		Scopes:   scopes,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.config.RefreshTokenExpiration)
	artifact := &models.GrantArtifact{
		Kind:      models.ArtifactRefreshToken,
		Key:       util.ArtifactDigest(value),
		Payload:   payload,
		UID:       userID,
		GrantID:   grantID,
		ExpiresAt: &expiresAt,
	}
	if err := s.store.PutArtifact(ctx, artifact); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return value, expiresAt, nil
}

// ValidateAccessToken verifies a presented bearer token
func (s *TokenService) ValidateAccessToken(
	ctx context.Context,
	tokenString string,
) (*token.ValidationResult, error) {
	return s.tokenProvider.ValidateAccessToken(ctx, tokenString)
}

// UserInfoClaims resolves the claims for the UserInfo endpoint from the
// live user record, gated by the scopes of the presented access token.
// The user's current status is re-checked: an access token does not
// outlive a deactivation here.
func (s *TokenService) UserInfoClaims(
	ctx context.Context,
	userID, scopes string,
) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidGrant
	}
	if !user.IsActive() {
		return nil, ErrInvalidGrant
	}

	claims := map[string]any{
		"sub": user.ID,
	}

	scopeSet := token.ScopeSet(scopes)
	if scopeSet["profile"] {
		claims["name"] = user.Name
		claims["employee_id"] = user.EmployeeID
		if user.Department != "" {
			claims["department"] = user.Department
		}
		if user.Position != "" {
			claims["position"] = user.Position
		}
		if user.AvatarURL != "" {
			claims["avatar_url"] = user.AvatarURL
		}
		if user.RoleID != "" {
			claims["role_id"] = user.RoleID
			claims["role_name"] = user.RoleName
		}
	}
	if scopeSet["email"] {
		claims["email"] = user.Email
	}

	return claims, nil
}

// RevokeGrant cascade-revokes every live artifact in a grant family.
// Outstanding access JWTs keep working until expiry; everything
// refreshable stops immediately.
func (s *TokenService) RevokeGrant(ctx context.Context, grantID, actorUserID string) (int64, error) {
	deleted, err := s.store.RevokeArtifactsByGrantID(ctx, grantID)
	if err != nil {
		return 0, err
	}

	s.metrics.RecordTokenRevoked("grant", "admin_request")
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenRevoked,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorUserID,
		ResourceType: models.ResourceToken,
		ResourceID:   grantID,
		Action:       "Grant revoked, token family invalidated",
		Details: models.AuditDetails{
			"artifacts_deleted": deleted,
		},
		Success: true,
	})

	return deleted, nil
}

// RevokeUserTokens cascade-revokes every refresh token of a user
func (s *TokenService) RevokeUserTokens(ctx context.Context, userID, actorUserID string) (int64, error) {
	deleted, err := s.store.RevokeArtifactsByUID(ctx, models.ArtifactRefreshToken, userID)
	if err != nil {
		return 0, err
	}

	s.metrics.RecordTokenRevoked("refresh", "user_revoked")
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenRevoked,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorUserID,
		ResourceType: models.ResourceToken,
		Action:       "All refresh tokens revoked for user",
		Details: models.AuditDetails{
			"user_id":           userID,
			"artifacts_deleted": deleted,
		},
		Success: true,
	})

	return deleted, nil
}

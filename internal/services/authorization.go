package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"
	"github.com/mitradev/ssogate/internal/util"

	"github.com/google/uuid"
)

// Authorization endpoint errors. The terminal ones surface as 400 pages
// because no verified redirect target exists yet; the rest become error
// redirects back to the client.
var (
	ErrMissingParameter        = errors.New("invalid_request")
	ErrClientNotFound          = errors.New("client not found or inactive")
	ErrInvalidRedirectURI      = errors.New("invalid redirect_uri")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrInvalidChallengeMethod  = errors.New("unsupported code_challenge_method")

	// ErrInvalidGrant covers every code/token verification failure at the
	// token endpoint. One error for all causes, so a caller cannot probe
	// which check failed.
	ErrInvalidGrant = errors.New("invalid_grant")
)

// AuthorizationRequest holds the validated parameters of an incoming
// authorization request.
type AuthorizationRequest struct {
	Client              *models.Client
	RedirectURI         string
	Scopes              []string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizationService manages the OAuth 2.0 Authorization Code Flow
// (RFC 6749) with PKCE (RFC 7636, S256 only).
type AuthorizationService struct {
	store        *store.Store
	config       *config.Config
	auditService *AuditService
}

func NewAuthorizationService(
	s *store.Store,
	cfg *config.Config,
	auditService *AuditService,
) *AuthorizationService {
	return &AuthorizationService{
		store:        s,
		config:       cfg,
		auditService: auditService,
	}
}

// ValidateAuthorizationRequest validates all parameters of an incoming
// authorization request in a fixed order. The client and redirect URI
// are verified before anything that would redirect, so an error can
// never send the browser to an unregistered URI.
func (s *AuthorizationService) ValidateAuthorizationRequest(
	ctx context.Context,
	clientID, redirectURI, responseType, scope, state, nonce, codeChallenge, codeChallengeMethod string,
) (*AuthorizationRequest, error) {
	// 1. Hard-required parameters. A missing state is a terminal 400,
	// never silently defaulted; it is the caller's CSRF token.
	if clientID == "" || redirectURI == "" || state == "" {
		return nil, ErrMissingParameter
	}

	// 2. Client must exist and be active. No verified redirect target
	// exists yet, so this stays terminal.
	client, err := s.store.GetActiveClient(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	// 3. redirect_uri must exactly match one of the registered URIs.
	// Redirecting to anything else is a phishing vector, so mismatch is
	// terminal too.
	if !client.HasRedirectURI(redirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	// From here on the redirect target is trusted; failures become
	// error redirects carried back to the client.
	req := &AuthorizationRequest{
		Client:      client,
		RedirectURI: redirectURI,
		State:       state,
		Nonce:       nonce,
	}

	// 4. Only the authorization code flow is supported
	if responseType != "code" {
		return req, ErrUnsupportedResponseType
	}

	// 5. Scopes default to openid and must all be registered
	if scope == "" {
		scope = "openid"
	}
	requested := strings.Fields(scope)
	for _, sc := range requested {
		if !client.AllowsScope(sc) {
			return req, ErrInvalidScope
		}
	}
	req.Scopes = requested

	// 6. PKCE: S256 only; plain is not supported
	if codeChallenge != "" {
		if codeChallengeMethod == "" {
			codeChallengeMethod = "S256"
		}
		if codeChallengeMethod != "S256" {
			return req, ErrInvalidChallengeMethod
		}
		req.CodeChallenge = codeChallenge
		req.CodeChallengeMethod = codeChallengeMethod
	}

	return req, nil
}

// CreateAuthorizationCode issues a one-time code bound to the validated
// request and subject. The plaintext code goes into the redirect; only
// its digest is stored. The returned grant id starts a token family
// that later refresh tokens join.
func (s *AuthorizationService) CreateAuthorizationCode(
	ctx context.Context,
	req *AuthorizationRequest,
	userID string,
) (string, error) {
	plainCode, err := util.CryptoRandomToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}

	grantID := uuid.New().String()
	expiresAt := time.Now().Add(s.config.AuthCodeExpiration)

	payload, err := models.EncodeArtifactPayload(models.AuthorizationCodeData{
		ClientID:            req.Client.ClientID,
		UserID:              userID,
		RedirectURI:         req.RedirectURI,
		Scopes:              req.Scopes,
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode authorization code: %w", err)
	}

	artifact := &models.GrantArtifact{
		Kind:      models.ArtifactAuthorizationCode,
		Key:       util.ArtifactDigest(plainCode),
		Payload:   payload,
		GrantID:   grantID,
		ExpiresAt: &expiresAt,
	}
	if err := s.store.PutArtifact(ctx, artifact); err != nil {
		return "", fmt.Errorf("failed to save authorization code: %w", err)
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAuthorizationCodeGenerated,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceAuthorization,
		ResourceID:   grantID,
		Action:       "Authorization code generated",
		Details: models.AuditDetails{
			"client_id":    req.Client.ClientID,
			"scopes":       strings.Join(req.Scopes, " "),
			"pkce":         req.CodeChallenge != "",
			"redirect_uri": req.RedirectURI,
		},
		Success: true,
	})

	return plainCode, nil
}

// ConsumeAuthorizationCode atomically consumes a presented code and
// verifies its bindings. The consume happens first: the row is deleted
// before any check, so a replay or a concurrent loser always fails and
// a mismatched request burns the code. Every failure is the same
// generic invalid_grant.
func (s *AuthorizationService) ConsumeAuthorizationCode(
	ctx context.Context,
	plainCode, clientID, redirectURI, codeVerifier string,
) (*models.AuthorizationCodeData, string, error) {
	artifact, err := s.store.ConsumeArtifact(
		ctx,
		models.ArtifactAuthorizationCode,
		util.ArtifactDigest(plainCode),
	)
	if err != nil {
		// Missing, expired, or lost the race: all the same to the caller
		return nil, "", ErrInvalidGrant
	}

	var data models.AuthorizationCodeData
	if err := artifact.Payload.Decode(&data); err != nil {
		return nil, "", ErrInvalidGrant
	}

	if data.ClientID != clientID {
		return nil, "", ErrInvalidGrant
	}
	if data.RedirectURI != redirectURI {
		return nil, "", ErrInvalidGrant
	}
	if data.CodeChallenge != "" {
		if !verifyPKCE(data.CodeChallenge, codeVerifier) {
			return nil, "", ErrInvalidGrant
		}
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAuthorizationCodeExchanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  data.UserID,
		ResourceType: models.ResourceAuthorization,
		ResourceID:   artifact.GrantID,
		Action:       "Authorization code exchanged for tokens",
		Details: models.AuditDetails{
			"client_id": clientID,
			"scopes":    strings.Join(data.Scopes, " "),
		},
		Success: true,
	})

	return &data, artifact.GrantID, nil
}

// verifyPKCE checks code_verifier against the stored challenge using
// S256: BASE64URL(SHA256(verifier)) == challenge.
func verifyPKCE(codeChallenge, codeVerifier string) bool {
	if codeVerifier == "" {
		return false
	}
	sum := sha256.Sum256([]byte(codeVerifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return computed == codeChallenge
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		Issuer:                 "https://sso.example.com",
		JWTSecret:              "test-secret-256-bit-value-for-hs256",
		AccessTokenExpiration:  time.Hour,
		IDTokenExpiration:      time.Hour,
		AuthCodeExpiration:     10 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
	}
}

func disabledAudit(t *testing.T, s *store.Store) *AuditService {
	t.Helper()
	return NewAuditService(s, false, 10)
}

func createTestClient(t *testing.T, s *store.Store, mutate func(*models.Client)) *models.Client {
	t.Helper()
	client := &models.Client{
		ClientID:                uuid.New().String(),
		Name:                    "Test RP",
		RedirectURIs:            models.StringArray{"https://rp.example.com/cb"},
		GrantTypes:              models.StringArray{"authorization_code", "refresh_token"},
		ResponseTypes:           models.StringArray{"code"},
		Scopes:                  models.StringArray{"openid", "profile", "email"},
		TokenEndpointAuthMethod: models.AuthMethodSecretBasic,
		IsActive:                true,
	}
	if mutate != nil {
		mutate(client)
	}
	require.NoError(t, s.CreateClient(context.Background(), client))
	return client
}

func createTestUser(t *testing.T, s *store.Store, status string) *models.User {
	t.Helper()
	user := &models.User{
		ID:         uuid.New().String(),
		EmployeeID: uuid.New().String(),
		Email:      uuid.New().String() + "@example.com",
		Name:       "Test User",
		Status:     status,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// s256 computes a PKCE S256 challenge from a verifier
func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func newAuthorizationService(t *testing.T, s *store.Store) *AuthorizationService {
	t.Helper()
	return NewAuthorizationService(s, testConfig(), disabledAudit(t, s))
}

func TestValidateAuthorizationRequest_MissingParameters(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	ctx := context.Background()

	cases := []struct {
		name        string
		clientID    string
		redirectURI string
		state       string
	}{
		{"no client_id", "", "https://rp.example.com/cb", "xyz"},
		{"no redirect_uri", client.ClientID, "", "xyz"},
		{"no state", client.ClientID, "https://rp.example.com/cb", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := svc.ValidateAuthorizationRequest(
				ctx, tc.clientID, tc.redirectURI, "code", "openid", tc.state, "", "", "",
			)
			assert.ErrorIs(t, err, ErrMissingParameter)
			assert.Nil(t, req)
		})
	}
}

func TestValidateAuthorizationRequest_UnknownClient(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)

	req, err := svc.ValidateAuthorizationRequest(
		context.Background(),
		"no-such-client", "https://rp.example.com/cb", "code", "openid", "xyz", "", "", "",
	)
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.Nil(t, req)
}

func TestValidateAuthorizationRequest_InactiveClient(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	client.IsActive = false
	require.NoError(t, s.UpdateClient(context.Background(), client))

	_, err := svc.ValidateAuthorizationRequest(
		context.Background(),
		client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "", "", "",
	)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestValidateAuthorizationRequest_UnregisteredRedirectURI(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)

	req, err := svc.ValidateAuthorizationRequest(
		context.Background(),
		client.ClientID, "https://evil.example.com/cb", "code", "openid", "xyz", "", "", "",
	)
	assert.ErrorIs(t, err, ErrInvalidRedirectURI)
	assert.Nil(t, req)
}

func TestValidateAuthorizationRequest_RedirectableErrors(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	ctx := context.Background()

	// Wrong response type: error is redirect-able, request context survives
	req, err := svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "token", "openid", "xyz", "", "", "",
	)
	assert.ErrorIs(t, err, ErrUnsupportedResponseType)
	require.NotNil(t, req)
	assert.Equal(t, "https://rp.example.com/cb", req.RedirectURI)
	assert.Equal(t, "xyz", req.State)

	// Unregistered scope
	req, err = svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid admin", "xyz", "", "", "",
	)
	assert.ErrorIs(t, err, ErrInvalidScope)
	require.NotNil(t, req)

	// PKCE plain is not supported
	req, err = svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "",
		"challenge-value", "plain",
	)
	assert.ErrorIs(t, err, ErrInvalidChallengeMethod)
	require.NotNil(t, req)
}

func TestValidateAuthorizationRequest_Defaults(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)

	// Empty scope defaults to openid; empty challenge method defaults to S256
	req, err := svc.ValidateAuthorizationRequest(
		context.Background(),
		client.ClientID, "https://rp.example.com/cb", "code", "", "xyz", "nonce-1",
		s256("verifier"), "",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"openid"}, req.Scopes)
	assert.Equal(t, "S256", req.CodeChallengeMethod)
	assert.Equal(t, "nonce-1", req.Nonce)
}

func TestAuthorizationCode_IssueAndConsume(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	req, err := svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid profile", "xyz",
		"nonce-1", s256("correct-verifier"), "S256",
	)
	require.NoError(t, err)

	code, err := svc.CreateAuthorizationCode(ctx, req, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, code)

	data, grantID, err := svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "correct-verifier",
	)
	require.NoError(t, err)
	assert.NotEmpty(t, grantID)
	assert.Equal(t, user.ID, data.UserID)
	assert.Equal(t, []string{"openid", "profile"}, data.Scopes)
	assert.Equal(t, "nonce-1", data.Nonce)
}

func TestConsumeAuthorizationCode_Replay(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	req, err := svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "", "", "",
	)
	require.NoError(t, err)
	code, err := svc.CreateAuthorizationCode(ctx, req, user.ID)
	require.NoError(t, err)

	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "",
	)
	require.NoError(t, err)

	// Second presentation of the same code
	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestConsumeAuthorizationCode_MismatchBurnsCode(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	req, err := svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "",
		s256("right"), "S256",
	)
	require.NoError(t, err)
	code, err := svc.CreateAuthorizationCode(ctx, req, user.ID)
	require.NoError(t, err)

	// Wrong verifier fails...
	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "wrong",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)

	// ...and the code is consumed by the failed attempt
	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "right",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestConsumeAuthorizationCode_WrongClientOrRedirect(t *testing.T) {
	s := setupTestStore(t)
	svc := newAuthorizationService(t, s)
	client := createTestClient(t, s, nil)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	issue := func() string {
		req, err := svc.ValidateAuthorizationRequest(
			ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "", "", "",
		)
		require.NoError(t, err)
		code, err := svc.CreateAuthorizationCode(ctx, req, user.ID)
		require.NoError(t, err)
		return code
	}

	_, _, err := svc.ConsumeAuthorizationCode(
		ctx, issue(), "other-client", "https://rp.example.com/cb", "",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)

	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, issue(), client.ClientID, "https://rp.example.com/other", "",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestConsumeAuthorizationCode_Expired(t *testing.T) {
	s := setupTestStore(t)
	cfg := testConfig()
	cfg.AuthCodeExpiration = -time.Second
	svc := NewAuthorizationService(s, cfg, disabledAudit(t, s))
	client := createTestClient(t, s, nil)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	req, err := svc.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", "openid", "xyz", "", "", "",
	)
	require.NoError(t, err)
	code, err := svc.CreateAuthorizationCode(ctx, req, user.ID)
	require.NoError(t, err)

	_, _, err = svc.ConsumeAuthorizationCode(
		ctx, code, client.ClientID, "https://rp.example.com/cb", "",
	)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"
	"github.com/mitradev/ssogate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires real services over an in-memory store for handler tests
type testEnv struct {
	store         *store.Store
	cfg           *config.Config
	authorization *services.AuthorizationService
	tokens        *services.TokenService
	access        *services.AccessService
	clients       *services.ClientService
	audit         *services.AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	cfg := &config.Config{
		Issuer:                 "https://sso.example.com",
		JWTSecret:              "test-secret-256-bit-value-for-hs256",
		AccessTokenExpiration:  time.Hour,
		IDTokenExpiration:      time.Hour,
		AuthCodeExpiration:     10 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
	}
	audit := services.NewAuditService(s, false, 10)
	recorder := metrics.NewNoopRecorder()

	return &testEnv{
		store:         s,
		cfg:           cfg,
		authorization: services.NewAuthorizationService(s, cfg, audit),
		tokens:        services.NewTokenService(s, cfg, token.NewProvider(cfg), audit, recorder),
		access:        services.NewAccessService(s, audit),
		clients:       services.NewClientService(s, audit),
		audit:         audit,
	}
}

func (e *testEnv) createClient(t *testing.T, mutate func(*models.Client)) (*models.Client, string) {
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

	ctx := context.Background()
	var secret string
	if !client.IsPublic() {
		var err error
		secret, err = client.GenerateClientSecret(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, e.store.CreateClient(ctx, client))
	return client, secret
}

func (e *testEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		ID:         uuid.New().String(),
		EmployeeID: uuid.New().String(),
		Email:      uuid.New().String() + "@example.com",
		Name:       "Test User",
		Status:     models.UserStatusActive,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// issueCode runs validation and code creation, returning an unconsumed
// authorization code ready for the token endpoint.
func (e *testEnv) issueCode(
	t *testing.T,
	client *models.Client,
	user *models.User,
	scope, verifier string,
) string {
	t.Helper()
	ctx := context.Background()

	challenge, method := "", ""
	if verifier != "" {
		challenge, method = s256(verifier), "S256"
	}

	req, err := e.authorization.ValidateAuthorizationRequest(
		ctx, client.ClientID, "https://rp.example.com/cb", "code", scope, "xyz", "nonce-1",
		challenge, method,
	)
	require.NoError(t, err)

	code, err := e.authorization.CreateAuthorizationCode(ctx, req, user.ID)
	require.NoError(t, err)
	return code
}

func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// withUser attaches a user the way the session middleware chain would
func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

func postForm(
	router *gin.Engine,
	path string,
	form url.Values,
	modify func(*http.Request),
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if modify != nil {
		modify(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(
	router *gin.Engine,
	path string,
	payload any,
	modify func(*http.Request),
) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if modify != nil {
		modify(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getRequest(
	router *gin.Engine,
	path string,
	modify func(*http.Request),
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if modify != nil {
		modify(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

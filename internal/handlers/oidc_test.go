package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOIDCRouter(e *testEnv) *gin.Engine {
	h := NewOIDCHandler(e.tokens, e.clients, e.audit, e.cfg, metrics.NewNoopRecorder())
	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-session-secret"))))
	router.GET("/.well-known/openid-configuration", h.Discovery)
	router.GET("/oauth/userinfo", h.UserInfo)
	router.POST("/oauth/userinfo", h.UserInfo)
	router.GET("/oauth/logout", h.EndSession)
	return router
}

func TestDiscovery(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)

	w := getRequest(router, "/.well-known/openid-configuration", nil)
	require.Equal(t, http.StatusOK, w.Code)

	meta := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "https://sso.example.com", meta["issuer"])
	assert.Equal(t, "https://sso.example.com/oauth/authorize", meta["authorization_endpoint"])
	assert.Equal(t, "https://sso.example.com/oauth/token", meta["token_endpoint"])
	assert.Equal(t, "https://sso.example.com/oauth/userinfo", meta["userinfo_endpoint"])
	assert.Equal(t, "https://sso.example.com/oauth/logout", meta["end_session_endpoint"])
	assert.Equal(t, []any{"code"}, meta["response_types_supported"])
	assert.Equal(t, []any{"S256"}, meta["code_challenge_methods_supported"])
	assert.Equal(t, []any{"HS256"}, meta["id_token_signing_alg_values_supported"])
}

func TestUserInfo(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)
	user := e.createUser(t)
	ctx := context.Background()

	result, err := e.tokens.ValidateAccessToken(ctx, accessToken(t, e, user, "openid profile email"))
	require.NoError(t, err)
	require.Equal(t, user.ID, result.UserID)

	w := getRequest(router, "/oauth/userinfo", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+accessToken(t, e, user, "openid profile email"))
	})
	require.Equal(t, http.StatusOK, w.Code)

	claims := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, user.ID, claims["sub"])
	assert.Equal(t, user.Name, claims["name"])
	assert.Equal(t, user.Email, claims["email"])
}

func TestUserInfo_ScopeGating(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)
	user := e.createUser(t)

	w := getRequest(router, "/oauth/userinfo", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+accessToken(t, e, user, "openid"))
	})
	require.Equal(t, http.StatusOK, w.Code)

	claims := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, user.ID, claims["sub"])
	assert.NotContains(t, claims, "email")
	assert.NotContains(t, claims, "name")
}

func TestUserInfo_MissingBearer(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)

	w := getRequest(router, "/oauth/userinfo", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestUserInfo_BadToken(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)

	w := getRequest(router, "/oauth/userinfo", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-real-token")
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserInfo_DisabledUser(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)
	user := e.createUser(t)
	ctx := context.Background()

	tokenString := accessToken(t, e, user, "openid")
	require.NoError(t, e.store.SetUserStatus(ctx, user.ID, models.UserStatusDisabled))

	// The signature still verifies but the subject is gone
	w := getRequest(router, "/oauth/userinfo", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tokenString)
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndSession_RedirectsToRegisteredURI(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)
	client, _ := e.createClient(t, func(c *models.Client) {
		c.PostLogoutURIs = models.StringArray{"https://rp.example.com/bye"}
	})

	query := url.Values{
		"client_id":                {client.ClientID},
		"post_logout_redirect_uri": {"https://rp.example.com/bye"},
		"state":                    {"after-logout"},
	}
	w := getRequest(router, "/oauth/logout?"+query.Encode(), nil)

	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "rp.example.com", location.Host)
	assert.Equal(t, "/bye", location.Path)
	assert.Equal(t, "after-logout", location.Query().Get("state"))
}

func TestEndSession_UnregisteredURIFallsBack(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)
	client, _ := e.createClient(t, func(c *models.Client) {
		c.PostLogoutURIs = models.StringArray{"https://rp.example.com/bye"}
	})

	cases := []struct {
		name  string
		query url.Values
	}{
		{"unregistered uri", url.Values{
			"client_id":                {client.ClientID},
			"post_logout_redirect_uri": {"https://evil.example.com/phish"},
		}},
		{"unknown client", url.Values{
			"client_id":                {"no-such-client"},
			"post_logout_redirect_uri": {"https://rp.example.com/bye"},
		}},
		{"missing client_id", url.Values{
			"post_logout_redirect_uri": {"https://rp.example.com/bye"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := getRequest(router, "/oauth/logout?"+tc.query.Encode(), nil)
			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))
		})
	}
}

func TestEndSession_NoParams(t *testing.T) {
	e := newTestEnv(t)
	router := newOIDCRouter(e)

	w := getRequest(router, "/oauth/logout", nil)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

// accessToken runs the full code flow and returns just the access token
func accessToken(t *testing.T, e *testEnv, user *models.User, scope string) string {
	t.Helper()
	client, secret := e.createClient(t, nil)
	router := newTokenRouter(e)

	code := e.issueCode(t, client, user, scope, "")
	w := postForm(router, "/oauth/token", map[string][]string{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"https://rp.example.com/cb"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, secret)
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w.Body.Bytes())
	return resp["access_token"].(string)
}

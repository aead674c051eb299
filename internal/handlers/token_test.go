package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(e *testEnv) *gin.Engine {
	h := NewTokenHandler(e.tokens, e.authorization, e.cfg)
	router := gin.New()
	router.POST("/oauth/token", h.Token)
	return router
}

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestToken_AuthorizationCodeGrant(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid profile", "verifier-value")

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://rp.example.com/cb"},
		"code_verifier": {"verifier-value"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, secret)
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	resp := decodeJSON(t, w.Body.Bytes())
	assert.NotEmpty(t, resp["access_token"])
	assert.Equal(t, "Bearer", resp["token_type"])
	assert.NotEmpty(t, resp["refresh_token"])
	assert.NotEmpty(t, resp["id_token"])
	assert.Equal(t, "openid profile", resp["scope"])
}

func TestToken_BodyCredentials(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid", "")

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://rp.example.com/cb"},
		"client_id":     {client.ClientID},
		"client_secret": {secret},
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToken_JSONBody(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid", "json-verifier")

	w := postJSON(router, "/oauth/token", map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  "https://rp.example.com/cb",
		"code_verifier": "json-verifier",
		"client_id":     client.ClientID,
		"client_secret": secret,
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.NotEmpty(t, resp["access_token"])
	assert.NotEmpty(t, resp["refresh_token"])

	// Refresh also accepts a JSON body
	w = postJSON(router, "/oauth/token", map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": resp["refresh_token"].(string),
		"client_id":     client.ClientID,
		"client_secret": secret,
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToken_InvalidClient(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, _ := e.createClient(t, nil)

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type": {"authorization_code"},
		"code":       {"whatever"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, "wrong-secret")
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_client", resp["error"])
}

func TestToken_UnsupportedGrantType(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type": {"password"},
		"username":   {"x"},
		"password":   {"y"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, secret)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "unsupported_grant_type", resp["error"])
}

func TestToken_MissingCode(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type": {"authorization_code"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, secret)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_request", resp["error"])
}

func TestToken_CodeReplay(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid", "")
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"https://rp.example.com/cb"},
	}
	auth := func(r *http.Request) { r.SetBasicAuth(client.ClientID, secret) }

	w := postForm(router, "/oauth/token", form, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(router, "/oauth/token", form, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_grant", resp["error"])
}

func TestToken_WrongVerifierBurnsCode(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid", "right-verifier")
	auth := func(r *http.Request) { r.SetBasicAuth(client.ClientID, secret) }

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://rp.example.com/cb"},
		"code_verifier": {"wrong-verifier"},
	}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The failed attempt consumed the code; the correct verifier is too late
	w = postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://rp.example.com/cb"},
		"code_verifier": {"right-verifier"},
	}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_grant", resp["error"])
}

func TestToken_RefreshGrant(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)
	user := e.createUser(t)
	auth := func(r *http.Request) { r.SetBasicAuth(client.ClientID, secret) }

	code := e.issueCode(t, client, user, "openid", "")
	w := postForm(router, "/oauth/token", url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"https://rp.example.com/cb"},
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeJSON(t, w.Body.Bytes())

	w = postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {first["refresh_token"].(string)},
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeJSON(t, w.Body.Bytes())

	// Rotated value, no ID token on refresh
	assert.NotEqual(t, first["refresh_token"], second["refresh_token"])
	assert.NotContains(t, second, "id_token")

	// The rotated-out value is rejected
	w = postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {first["refresh_token"].(string)},
	}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_grant", resp["error"])
}

func TestToken_RefreshMissingValue(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, secret := e.createClient(t, nil)

	w := postForm(router, "/oauth/token", url.Values{
		"grant_type": {"refresh_token"},
	}, func(r *http.Request) {
		r.SetBasicAuth(client.ClientID, secret)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "invalid_request", resp["error"])
}

func TestToken_PublicClientPKCE(t *testing.T) {
	e := newTestEnv(t)
	router := newTokenRouter(e)
	client, _ := e.createClient(t, func(c *models.Client) {
		c.TokenEndpointAuthMethod = models.AuthMethodNone
	})
	user := e.createUser(t)

	code := e.issueCode(t, client, user, "openid", "public-verifier")

	// No secret: the public client authenticates by identifier alone
	w := postForm(router, "/oauth/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {"https://rp.example.com/cb"},
		"code_verifier": {"public-verifier"},
		"client_id":     {client.ClientID},
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/middleware"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// OIDCHandler serves the OIDC Discovery, UserInfo, and end-session
// endpoints
type OIDCHandler struct {
	tokenService  *services.TokenService
	clientService *services.ClientService
	auditService  *services.AuditService
	config        *config.Config
	metrics       metrics.Recorder
}

func NewOIDCHandler(
	ts *services.TokenService,
	cs *services.ClientService,
	audit *services.AuditService,
	cfg *config.Config,
	m metrics.Recorder,
) *OIDCHandler {
	return &OIDCHandler{
		tokenService:  ts,
		clientService: cs,
		auditService:  audit,
		config:        cfg,
		metrics:       m,
	}
}

// discoveryMetadata holds the OIDC Provider Metadata returned by the discovery endpoint.
type discoveryMetadata struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	EndSessionEndpoint               string   `json:"end_session_endpoint"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
	CodeChallengeMethodsSupported    []string `json:"code_challenge_methods_supported"`
}

// Discovery godoc
//
//	@Summary		OIDC Discovery
//	@Description	OpenID Connect Provider Metadata (OIDC Discovery 1.0)
//	@Tags			OIDC
//	@Produce		json
//	@Success		200	{object}	discoveryMetadata	"Provider metadata"
//	@Router			/.well-known/openid-configuration [get]
func (h *OIDCHandler) Discovery(c *gin.Context) {
	base := strings.TrimRight(h.config.Issuer, "/")
	meta := discoveryMetadata{
		Issuer:                           base,
		AuthorizationEndpoint:            base + "/oauth/authorize",
		TokenEndpoint:                    base + "/oauth/token",
		UserinfoEndpoint:                 base + "/oauth/userinfo",
		EndSessionEndpoint:               base + "/oauth/logout",
		ResponseTypesSupported:           []string{"code"},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"HS256"},
		ScopesSupported:                  []string{"openid", "profile", "email"},
		TokenEndpointAuthMethods: []string{
			"client_secret_basic",
			"client_secret_post",
			"none",
		},
		GrantTypesSupported: []string{
			GrantTypeAuthorizationCode,
			GrantTypeRefreshToken,
		},
		ClaimsSupported: []string{
			"sub",
			"name",
			"email",
			"employee_id",
			"department",
			"position",
			"avatar_url",
			"role_id",
			"role_name",
		},
		CodeChallengeMethodsSupported: []string{"S256"},
	}
	c.JSON(http.StatusOK, meta)
}

// UserInfo godoc
//
//	@Summary		UserInfo endpoint
//	@Description	Returns claims about the authenticated end-user (OIDC Core 1.0 §5.3). Supports GET and POST. Claims reflect the live user record; tokens for deactivated users are rejected.
//	@Tags			OIDC
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string											true	"Bearer token"
//	@Success		200				{object}	object											"User claims gated by the granted scopes"
//	@Failure		401				{object}	object{error=string,error_description=string}	"Invalid, expired, or missing Bearer token"
//	@Router			/oauth/userinfo [get]
//	@Router			/oauth/userinfo [post]
func (h *OIDCHandler) UserInfo(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		h.metrics.RecordUserInfoRequest("invalid_token")
		c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_token",
			"error_description": "Bearer token required",
		})
		return
	}

	start := time.Now()
	result, err := h.tokenService.ValidateAccessToken(c.Request.Context(), tokenString)
	if err != nil {
		h.metrics.RecordTokenValidation("invalid", time.Since(start))
		h.metrics.RecordUserInfoRequest("invalid_token")
		c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_token",
			"error_description": "Token is invalid or expired",
		})
		return
	}
	h.metrics.RecordTokenValidation("valid", time.Since(start))

	claims, err := h.tokenService.UserInfoClaims(
		c.Request.Context(), result.UserID, result.Scopes,
	)
	if err != nil {
		// The subject no longer resolves to an active user; the token is
		// treated as invalid even though its signature still checks out.
		h.metrics.RecordUserInfoRequest("user_disabled")
		c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_token",
			"error_description": "Token subject is no longer active",
		})
		return
	}

	h.metrics.RecordUserInfoRequest("success")
	c.JSON(http.StatusOK, claims)
}

// EndSession godoc
//
//	@Summary		RP-initiated logout
//	@Description	Terminates the SSO session (OIDC RP-Initiated Logout 1.0). Redirects to post_logout_redirect_uri when it is registered for the identified client, otherwise to the login page.
//	@Tags			OIDC
//	@Param			client_id					query	string	false	"Client identifier, required to honor post_logout_redirect_uri"
//	@Param			post_logout_redirect_uri	query	string	false	"Registered post-logout redirect URI (exact match)"
//	@Param			state						query	string	false	"Opaque value echoed back on the redirect"
//	@Success		302	{string}	string	"Redirect to the post-logout target or the login page"
//	@Router			/oauth/logout [get]
func (h *OIDCHandler) EndSession(c *gin.Context) {
	session := sessions.Default(c)
	userID, _ := session.Get(middleware.SessionUserID).(string)
	session.Clear()
	_ = session.Save()

	h.metrics.RecordLogout()
	if userID != "" {
		h.auditService.Log(c, services.AuditLogEntry{
			EventType:    models.EventLogout,
			Severity:     models.SeverityInfo,
			ActorUserID:  userID,
			ResourceType: models.ResourceUser,
			ResourceID:   userID,
			Action:       "Session ended via OIDC logout",
			Success:      true,
		})
	}

	c.Redirect(http.StatusFound, h.postLogoutTarget(c))
}

// postLogoutTarget resolves where the browser goes after logout. The
// redirect URI is honored only when it is byte-exact registered for the
// named client; anything else falls back to the login page.
func (h *OIDCHandler) postLogoutTarget(c *gin.Context) string {
	postLogout := c.Query("post_logout_redirect_uri")
	clientID := c.Query("client_id")
	if postLogout == "" || clientID == "" {
		return "/login"
	}

	client, err := h.clientService.GetClient(c.Request.Context(), clientID)
	if err != nil || !client.PostLogoutURIs.Contains(postLogout) {
		return "/login"
	}

	target, err := url.Parse(postLogout)
	if err != nil {
		return "/login"
	}
	if state := c.Query("state"); state != "" {
		query := target.Query()
		query.Set("state", state)
		target.RawQuery = query.Encode()
	}
	return target.String()
}

package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/middleware"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/templates"

	"github.com/gin-gonic/gin"
)

const (
	maxStateLength = 1024
	maxNonceLength = 1024
)

// AuthorizeHandler implements the authorization endpoint (RFC 6749
// §4.1.1) including the consent step.
type AuthorizeHandler struct {
	authorizationService *services.AuthorizationService
	accessService        *services.AccessService
	auditService         *services.AuditService
	config               *config.Config
	metrics              metrics.Recorder
}

func NewAuthorizeHandler(
	as *services.AuthorizationService,
	acs *services.AccessService,
	audit *services.AuditService,
	cfg *config.Config,
	m metrics.Recorder,
) *AuthorizeHandler {
	return &AuthorizeHandler{
		authorizationService: as,
		accessService:        acs,
		auditService:         audit,
		config:               cfg,
		metrics:              m,
	}
}

// authorizeParams collects the request parameters from either the
// query string (GET) or the consent form (POST).
type authorizeParams struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

func paramsFromQuery(c *gin.Context) authorizeParams {
	return authorizeParams{
		ClientID:            c.Query("client_id"),
		RedirectURI:         c.Query("redirect_uri"),
		ResponseType:        c.Query("response_type"),
		Scope:               c.Query("scope"),
		State:               c.Query("state"),
		Nonce:               c.Query("nonce"),
		CodeChallenge:       c.Query("code_challenge"),
		CodeChallengeMethod: c.Query("code_challenge_method"),
	}
}

func paramsFromForm(c *gin.Context) authorizeParams {
	return authorizeParams{
		ClientID:            c.PostForm("client_id"),
		RedirectURI:         c.PostForm("redirect_uri"),
		ResponseType:        "code",
		Scope:               c.PostForm("scope"),
		State:               c.PostForm("state"),
		Nonce:               c.PostForm("nonce"),
		CodeChallenge:       c.PostForm("code_challenge"),
		CodeChallengeMethod: c.PostForm("code_challenge_method"),
	}
}

// Authorize godoc
//
//	@Summary		Authorization endpoint
//	@Description	Starts the OAuth 2.0 authorization code flow with PKCE (RFC 6749 §4.1, RFC 7636). Renders the consent page or redirects back to the client with a code.
//	@Tags			OAuth
//	@Produce		html
//	@Param			client_id				query	string	true	"Client identifier"
//	@Param			redirect_uri			query	string	true	"Registered redirect URI (exact match)"
//	@Param			response_type			query	string	true	"Must be 'code'"
//	@Param			scope					query	string	false	"Space-separated scopes, defaults to 'openid'"
//	@Param			state					query	string	true	"Opaque client CSRF value, echoed back"
//	@Param			nonce					query	string	false	"OIDC nonce, echoed in the ID token"
//	@Param			code_challenge			query	string	false	"PKCE code challenge"
//	@Param			code_challenge_method	query	string	false	"Must be 'S256' when a challenge is sent"
//	@Success		302	{string}	string	"Redirect with code and state, or with an error"
//	@Failure		400	{string}	string	"Terminal validation error rendered as HTML"
//	@Router			/oauth/authorize [get]
func (h *AuthorizeHandler) Authorize(c *gin.Context) {
	params := paramsFromQuery(c)

	req, err := h.validate(c, params)
	if err != nil {
		return // validate rendered or redirected
	}

	user := middleware.GetUser(c)
	if user == nil {
		// RequireAuth should have caught this; render rather than loop
		templates.RenderTempl(c, http.StatusForbidden, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "access_denied",
			Message: "Sign-in required.",
		}))
		return
	}

	allowed, err := h.accessService.HasAccess(c.Request.Context(), user, req.Client)
	if err != nil {
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "server_error",
			Message: "Could not evaluate access. Please try again.",
		}))
		return
	}
	if !allowed {
		h.metrics.RecordAuthorizationRequest("access_denied")
		h.auditAccessDenied(c, user, req.Client)
		templates.RenderTempl(c, http.StatusForbidden, templates.AccessDeniedPage(templates.AccessDeniedPageProps{
			UserName:   user.Name,
			ClientName: req.Client.Name,
		}))
		return
	}

	// First-party clients skip the consent screen
	if req.Client.IsFirstParty {
		h.issueCodeAndRedirect(c, req, user)
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.ConsentPage(templates.ConsentPageProps{
		BaseProps:           templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		UserName:            user.Name,
		ClientName:          req.Client.Name,
		ClientDescription:   req.Client.Description,
		ClientID:            req.Client.ClientID,
		RedirectURI:         req.RedirectURI,
		Scope:               strings.Join(req.Scopes, " "),
		ScopeList:           req.Scopes,
		State:               req.State,
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
	}))
}

// Consent godoc
//
//	@Summary		Consent decision
//	@Description	Handles the approve/deny decision from the consent page and redirects back to the client.
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			action	formData	string	true	"'approve' or 'deny'"
//	@Success		302		{string}	string	"Redirect with code, or with error=access_denied"
//	@Router			/oauth/authorize [post]
func (h *AuthorizeHandler) Consent(c *gin.Context) {
	params := paramsFromForm(c)

	req, err := h.validate(c, params)
	if err != nil {
		return
	}

	user := middleware.GetUser(c)
	if user == nil {
		templates.RenderTempl(c, http.StatusForbidden, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "access_denied",
			Message: "Sign-in required.",
		}))
		return
	}

	if c.PostForm("action") != "approve" {
		h.metrics.RecordAuthorizationRequest("denied")
		redirectWithError(c, req.RedirectURI, "access_denied", req.State)
		return
	}

	// Re-check the gate; grants may have been revoked while the consent
	// page was open.
	allowed, err := h.accessService.HasAccess(c.Request.Context(), user, req.Client)
	if err != nil {
		h.metrics.RecordAuthorizationRequest("error")
		redirectWithError(c, req.RedirectURI, "server_error", req.State)
		return
	}
	if !allowed {
		h.metrics.RecordAuthorizationRequest("access_denied")
		h.auditAccessDenied(c, user, req.Client)
		redirectWithError(c, req.RedirectURI, "access_denied", req.State)
		return
	}

	h.issueCodeAndRedirect(c, req, user)
}

// validate runs the ordered parameter checks and handles the error
// rendering split: terminal failures render HTML, failures after the
// redirect target is trusted redirect back to the client.
func (h *AuthorizeHandler) validate(
	c *gin.Context,
	params authorizeParams,
) (*services.AuthorizationRequest, error) {
	// Oversized state or nonce values are rejected before they reach
	// storage or get echoed anywhere.
	if len(params.State) > maxStateLength || len(params.Nonce) > maxNonceLength {
		h.metrics.RecordAuthorizationRequest("error")
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "invalid_request",
			Message: "state or nonce parameter is too long.",
		}))
		return nil, services.ErrMissingParameter
	}

	req, err := h.authorizationService.ValidateAuthorizationRequest(
		c.Request.Context(),
		params.ClientID,
		params.RedirectURI,
		params.ResponseType,
		params.Scope,
		params.State,
		params.Nonce,
		params.CodeChallenge,
		params.CodeChallengeMethod,
	)
	if err == nil {
		return req, nil
	}

	h.metrics.RecordAuthorizationRequest("error")

	switch {
	case errors.Is(err, services.ErrMissingParameter):
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "invalid_request",
			Message: "client_id, redirect_uri, and state are required.",
		}))
	case errors.Is(err, services.ErrClientNotFound):
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "invalid_request",
			Message: "Unknown or inactive client.",
		}))
	case errors.Is(err, services.ErrInvalidRedirectURI):
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "invalid_request",
			Message: "redirect_uri is not registered for this client.",
		}))
	case errors.Is(err, services.ErrUnsupportedResponseType):
		redirectWithError(c, req.RedirectURI, "unsupported_response_type", req.State)
	case errors.Is(err, services.ErrInvalidScope):
		redirectWithError(c, req.RedirectURI, "invalid_scope", req.State)
	case errors.Is(err, services.ErrInvalidChallengeMethod):
		redirectWithError(c, req.RedirectURI, "invalid_request", req.State)
	default:
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "server_error",
			Message: "Unexpected error while validating the request.",
		}))
	}
	return nil, err
}

// auditAccessDenied records a gated client turning a user away
func (h *AuthorizeHandler) auditAccessDenied(
	c *gin.Context,
	user *models.User,
	client *models.Client,
) {
	h.auditService.Log(c, services.AuditLogEntry{
		EventType:    models.EventAuthorizationDenied,
		Severity:     models.SeverityWarning,
		ActorUserID:  user.ID,
		ActorName:    user.Name,
		ResourceType: models.ResourceClient,
		ResourceID:   client.ClientID,
		ResourceName: client.Name,
		Action:       "Authorization denied by access gate",
		Details:      models.AuditDetails{"reason": "no_access_grant"},
		Success:      false,
	})
}

func (h *AuthorizeHandler) issueCodeAndRedirect(
	c *gin.Context,
	req *services.AuthorizationRequest,
	user *models.User,
) {
	code, err := h.authorizationService.CreateAuthorizationCode(
		c.Request.Context(), req, user.ID,
	)
	if err != nil {
		h.metrics.RecordAuthorizationRequest("error")
		redirectWithError(c, req.RedirectURI, "server_error", req.State)
		return
	}

	h.metrics.RecordAuthorizationRequest("issued")

	target, _ := url.Parse(req.RedirectURI)
	query := target.Query()
	query.Set("code", code)
	query.Set("state", req.State)
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// redirectWithError carries a protocol error back to the verified
// redirect URI per RFC 6749 §4.1.2.1
func redirectWithError(c *gin.Context, redirectURI, errCode, state string) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error:   errCode,
			Message: "The request could not be completed.",
		}))
		return
	}

	query := target.Query()
	query.Set("error", errCode)
	if state != "" {
		query.Set("state", state)
	}
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}

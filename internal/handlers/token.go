package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	// https://datatracker.ietf.org/doc/html/rfc6749#section-4.1
	GrantTypeAuthorizationCode = "authorization_code"
	// https://datatracker.ietf.org/doc/html/rfc6749#section-6
	GrantTypeRefreshToken = "refresh_token"
)

type TokenHandler struct {
	tokenService         *services.TokenService
	authorizationService *services.AuthorizationService
	config               *config.Config
}

func NewTokenHandler(
	ts *services.TokenService,
	as *services.AuthorizationService,
	cfg *config.Config,
) *TokenHandler {
	return &TokenHandler{
		tokenService:         ts,
		authorizationService: as,
		config:               cfg,
	}
}

// tokenRequest carries the token endpoint parameters, accepted as a
// form-encoded or JSON body.
type tokenRequest struct {
	GrantType    string `form:"grant_type"    json:"grant_type"`
	Code         string `form:"code"          json:"code"`
	RedirectURI  string `form:"redirect_uri"  json:"redirect_uri"`
	CodeVerifier string `form:"code_verifier" json:"code_verifier"`
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
	ClientID     string `form:"client_id"     json:"client_id"`
	ClientSecret string `form:"client_secret" json:"client_secret"`
}

// Token godoc
//
//	@Summary		Token endpoint
//	@Description	Exchange an authorization code or refresh token for tokens (RFC 6749 §4.1.3, §6)
//	@Tags			OAuth
//	@Accept			x-www-form-urlencoded
//	@Accept			json
//	@Produce		json
//	@Param			grant_type		formData	string	true	"'authorization_code' or 'refresh_token'"
//	@Param			code			formData	string	false	"Authorization code (authorization_code grant)"
//	@Param			redirect_uri	formData	string	false	"Redirect URI used at the authorization endpoint"
//	@Param			code_verifier	formData	string	false	"PKCE verifier (required when the code carries a challenge)"
//	@Param			refresh_token	formData	string	false	"Refresh token (refresh_token grant)"
//	@Param			client_id		formData	string	false	"Client ID (ignored when Basic auth is used)"
//	@Param			client_secret	formData	string	false	"Client secret (ignored when Basic auth is used)"
//	@Success		200	{object}	object{access_token=string,token_type=string,expires_in=int,refresh_token=string,id_token=string,scope=string}	"Tokens issued"
//	@Failure		400	{object}	object{error=string,error_description=string}	"invalid_request, invalid_grant, unsupported_grant_type, unauthorized_client"
//	@Failure		401	{object}	object{error=string,error_description=string}	"invalid_client"
//	@Router			/oauth/token [post]
func (h *TokenHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Malformed request body",
		})
		return
	}

	client, err := h.authenticateClient(c, &req)
	if err != nil {
		return // authenticateClient wrote the response
	}

	switch req.GrantType {
	case GrantTypeAuthorizationCode:
		h.handleAuthorizationCodeGrant(c, client, &req)
	case GrantTypeRefreshToken:
		h.handleRefreshTokenGrant(c, client, &req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported_grant_type",
			"error_description": "Supported grant types: authorization_code, refresh_token",
		})
	}
}

// authenticateClient resolves the client from Basic auth or body
// parameters. On failure it writes the RFC 6749 §5.2 invalid_client
// response and returns a nil client.
func (h *TokenHandler) authenticateClient(
	c *gin.Context,
	req *tokenRequest,
) (*models.Client, error) {
	basicID, basicSecret, _ := c.Request.BasicAuth()

	client, err := h.tokenService.AuthenticateClient(
		c.Request.Context(),
		basicID, basicSecret,
		req.ClientID, req.ClientSecret,
	)
	if err != nil {
		c.Header("WWW-Authenticate", `Basic realm="ssogate"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_client",
			"error_description": "Client authentication failed",
		})
		return nil, err
	}
	return client, nil
}

func (h *TokenHandler) handleAuthorizationCodeGrant(
	c *gin.Context,
	client *models.Client,
	req *tokenRequest,
) {
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "code is required",
		})
		return
	}

	// Consume first: a mismatched request burns the code, and a replay
	// or concurrent duplicate always loses.
	codeData, grantID, err := h.authorizationService.ConsumeAuthorizationCode(
		c.Request.Context(),
		req.Code, client.ClientID, req.RedirectURI, req.CodeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_grant",
			"error_description": "Authorization code is invalid, expired, or already used",
		})
		return
	}

	issued, err := h.tokenService.ExchangeAuthorizationCode(
		c.Request.Context(), client, codeData, grantID,
	)
	if err != nil {
		h.writeGrantError(c, err)
		return
	}

	h.writeTokenResponse(c, issued)
}

func (h *TokenHandler) handleRefreshTokenGrant(
	c *gin.Context,
	client *models.Client,
	req *tokenRequest,
) {
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "refresh_token is required",
		})
		return
	}

	issued, err := h.tokenService.RefreshAccessToken(
		c.Request.Context(), client, req.RefreshToken,
	)
	if err != nil {
		h.writeGrantError(c, err)
		return
	}

	h.writeTokenResponse(c, issued)
}

func (h *TokenHandler) writeGrantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorizedClient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unauthorized_client",
			"error_description": "Client is not authorized for this grant type",
		})
	case errors.Is(err, services.ErrInvalidGrant):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_grant",
			"error_description": "Grant is invalid, expired, or revoked",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Token issuance failed",
		})
	}
}

func (h *TokenHandler) writeTokenResponse(c *gin.Context, issued *services.IssuedTokens) {
	// RFC 6749 §5.1: token responses must not be cached
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")

	resp := gin.H{
		"access_token": issued.AccessToken,
		"token_type":   issued.TokenType,
		"expires_in":   issued.ExpiresIn,
		"scope":        strings.Join(issued.Scopes, " "),
	}
	if issued.RefreshToken != "" {
		resp["refresh_token"] = issued.RefreshToken
	}
	if issued.IDToken != "" {
		resp["id_token"] = issued.IDToken
	}

	c.JSON(http.StatusOK, resp)
}

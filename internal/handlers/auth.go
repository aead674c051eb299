package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitradev/ssogate/internal/auth"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/middleware"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const oauthStateKey = "oauth_state"

// AuthHandler serves the interactive sign-in surface: the local login
// form, logout, and the upstream GitHub sign-in.
type AuthHandler struct {
	userService *services.UserService
	config      *config.Config
	metrics     metrics.Recorder
}

func NewAuthHandler(
	us *services.UserService,
	cfg *config.Config,
	m metrics.Recorder,
) *AuthHandler {
	return &AuthHandler{
		userService: us,
		config:      cfg,
		metrics:     m,
	}
}

// ShowLogin renders the sign-in form. An already-authenticated session
// is sent straight to its destination.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	session := sessions.Default(c)
	redirect := safeRedirect(c.Query("redirect"))

	if session.Get(middleware.SessionUserID) != nil {
		c.Redirect(http.StatusFound, redirect)
		return
	}

	h.renderLogin(c, "", redirect)
}

// Login handles the local email/password sign-in
func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	redirect := safeRedirect(c.PostForm("redirect"))

	if email == "" || password == "" {
		h.renderLogin(c, "Email and password are required.", redirect)
		return
	}

	user, err := h.userService.Authenticate(c, email, password)
	if err != nil {
		h.metrics.RecordLogin("local", false)
		if errors.Is(err, auth.ErrUserDisabled) {
			h.renderLogin(c, "This account has been deactivated.", redirect)
			return
		}
		h.renderLogin(c, "Invalid email or password.", redirect)
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		h.renderLogin(c, "Could not establish a session. Please try again.", redirect)
		return
	}

	h.metrics.RecordLogin("local", true)
	c.Redirect(http.StatusFound, redirect)
}

// Logout terminates the session and returns to the login page
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	h.metrics.RecordLogout()
	c.Redirect(http.StatusFound, "/login")
}

// GitHubLogin starts the upstream sign-in by redirecting to GitHub
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	provider := h.userService.OAuthProvider()
	if provider == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	state := randomState()
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	session.Set("oauth_redirect", safeRedirect(c.Query("redirect")))
	if err := session.Save(); err != nil {
		h.renderLogin(c, "Could not establish a session. Please try again.", "/")
		return
	}

	c.Redirect(http.StatusFound, provider.GetAuthURL(state))
}

// GitHubCallback completes the upstream sign-in. The upstream identity
// must match an existing active user by verified email.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	provider := h.userService.OAuthProvider()
	if provider == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	session := sessions.Default(c)
	expectedState, _ := session.Get(oauthStateKey).(string)
	redirect, _ := session.Get("oauth_redirect").(string)
	session.Delete(oauthStateKey)
	session.Delete("oauth_redirect")
	_ = session.Save()

	if redirect == "" {
		redirect = "/"
	}

	if expectedState == "" || c.Query("state") != expectedState {
		h.metrics.RecordLogin("github", false)
		h.renderLogin(c, "Sign-in attempt could not be verified. Please try again.", redirect)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.metrics.RecordLogin("github", false)
		h.renderLogin(c, "GitHub sign-in was cancelled.", redirect)
		return
	}

	token, err := provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.metrics.RecordLogin("github", false)
		h.renderLogin(c, "GitHub sign-in failed. Please try again.", redirect)
		return
	}

	info, err := provider.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		h.metrics.RecordLogin("github", false)
		h.renderLogin(c, "Could not read your GitHub profile.", redirect)
		return
	}

	user, err := h.userService.AuthenticateUpstream(c, info)
	if err != nil {
		h.metrics.RecordLogin("github", false)
		h.renderLogin(c, "No active account matches your GitHub email.", redirect)
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		h.renderLogin(c, "Could not establish a session. Please try again.", redirect)
		return
	}

	h.metrics.RecordLogin("github", true)
	c.Redirect(http.StatusFound, redirect)
}

func (h *AuthHandler) establishSession(c *gin.Context, userID string) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, userID)
	return session.Save()
}

func (h *AuthHandler) renderLogin(c *gin.Context, errMsg, redirect string) {
	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusUnauthorized
	}
	templates.RenderTempl(c, status, templates.LoginPage(templates.LoginPageProps{
		BaseProps:     templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)},
		Error:         errMsg,
		Redirect:      redirect,
		GitHubEnabled: h.userService.OAuthProvider() != nil,
	}))
}

// safeRedirect restricts post-login redirects to local paths so the
// login form cannot be used as an open redirector
func safeRedirect(target string) string {
	if target == "" {
		return "/"
	}
	decoded, err := url.QueryUnescape(target)
	if err != nil {
		return "/"
	}
	if !strings.HasPrefix(decoded, "/") || strings.HasPrefix(decoded, "//") ||
		strings.HasPrefix(decoded, "/\\") {
		return "/"
	}
	return decoded
}

func randomState() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic("oauth state: failed to read random bytes: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

package middleware

import (
	"net/http"
	"net/url"

	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// GetUser returns the user attached by LoadUser, or nil
func GetUser(c *gin.Context) *models.User {
	if val, exists := c.Get("user"); exists {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

const (
	SessionUserID = "user_id"
)

// RequireAuth requires a signed-in session. Unauthenticated requests
// are redirected to the login page with the original URL, query string
// included, preserved in the redirect parameter.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserID)

		if userID == nil {
			returnTo := url.QueryEscape(c.Request.URL.String())
			c.Redirect(http.StatusFound, "/login?redirect="+returnTo)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// LoadUser resolves the session user record and attaches it to the
// context for handlers and the audit trail. Must run after RequireAuth.
// A session whose user has been deleted or disabled is terminated.
func LoadUser(userService *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := userService.GetUserByID(c.Request.Context(), userID.(string))
		if err != nil || !user.IsActive() {
			session := sessions.Default(c)
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// RequireAdmin requires the session user to hold the admin role. Runs
// after LoadUser; the admin surface is a JSON API, so failures are JSON.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden",
			})
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":             "forbidden",
				"error_description": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/service"
)

const (
	// SessionCookie identifies the browser session across the login form
	// and the timing connection
	SessionCookie = "stepgate_session"

	// sessionKeyContext is the gin context key holding the session key
	sessionKeyContext = "sessionKey"

	// sessionCookieMaxAge bounds the cookie lifetime in seconds
	sessionCookieMaxAge = 12 * 60 * 60
)

// EnsureSession resolves the browser session cookie, creating one when the
// request has none.
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookie)
		if err != nil || key == "" {
			key = uuid.New().String()
			c.SetCookie(SessionCookie, key, sessionCookieMaxAge, "/", "", false, true)
		}

		c.Set(sessionKeyContext, key)
		c.Next()
	}
}

// RequireSession resolves the browser session cookie and rejects requests
// without one. The timing connection must be attributable to a known
// session, so it never creates cookies.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookie)
		if err != nil || key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session required"})
			return
		}

		c.Set(sessionKeyContext, key)
		c.Next()
	}
}

// SessionKey returns the session key resolved by the session middleware
func SessionKey(c *gin.Context) string {
	return c.GetString(sessionKeyContext)
}

// AuthMiddleware creates middleware that validates granted session tokens
func AuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set("username", claims.Subject)
		c.Set("domain", claims.Domain)

		c.Next()
	}
}

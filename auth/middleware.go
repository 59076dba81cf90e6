package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gunjanghate/chat-bot-task/models"
)

const (
	// SessionCookie holds the signed session token in the browser.
	SessionCookie = "session_token"

	identityKey = "identity"
)

// Identify resolves the session token on each request, if any, and stores
// the identity for IdentityFrom. Requests without a valid token pass through.
func Identify(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email, err := sessions.Parse(tokenFrom(c)); err == nil {
			c.Set(identityKey, email)
		}
		c.Next()
	}
}

// RequireIdentity aborts with 401 unless Identify found a valid session.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the signed-in email, or "" for anonymous requests.
func IdentityFrom(c *gin.Context) string {
	return c.GetString(identityKey)
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	token, _ := c.Cookie(SessionCookie)
	return token
}

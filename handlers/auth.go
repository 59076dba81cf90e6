package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/models"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// AuthHandler handles sign-in with the identity provider and the session cookie
type AuthHandler struct {
	provider      auth.Provider
	sessions      *auth.Sessions
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider auth.Provider, sessions *auth.Sessions, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		provider:      provider,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

// SignIn redirects the browser to the provider's consent page
func (h *AuthHandler) SignIn(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, stateCookie, state, stateTTL)
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback completes sign-in and issues the session cookie
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	expected, _ := c.Cookie(stateCookie)
	h.setCookie(c, stateCookie, "", -1)

	if reason := c.Query("error"); reason != "" {
		slog.WarnContext(ctx, "sign-in declined", "reason", reason)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}
	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid sign-in state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing authorization code"})
		return
	}

	email, err := h.provider.Identify(ctx, code)
	if err != nil {
		if errors.Is(err, auth.ErrUnverifiedEmail) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}
		slog.ErrorContext(ctx, "identifying account", logger.Err(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	token, err := h.sessions.Issue(email)
	if err != nil {
		slog.ErrorContext(ctx, "issuing session", logger.Err(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	slog.InfoContext(ctx, "signed in", "email", email)
	h.setCookie(c, auth.SessionCookie, token, h.sessions.TTL())
	c.Redirect(http.StatusFound, "/")
}

// SignOut clears the session cookie
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.setCookie(c, auth.SessionCookie, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

// Session describes the signed-in account
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, models.SessionResponse{Email: auth.IdentityFrom(c)})
}

// setCookie writes an HttpOnly cookie; a negative ttl deletes it
func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := -1
	if ttl >= 0 {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}

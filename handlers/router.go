package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/services"
)

//go:embed templates/*.html
var templates embed.FS

// Deps are the services the router wires into its handlers
type Deps struct {
	Chats         *services.ChatService
	Completions   Completer
	Sessions      *auth.Sessions
	Provider      auth.Provider
	SecureCookies bool
}

// NewRouter builds the HTTP surface: JSON API, sign-in flow and chat page
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(), cors(), auth.Identify(d.Sessions))
	router.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	chatHandler := NewChatHandler(d.Chats, d.Completions)
	authHandler := NewAuthHandler(d.Provider, d.Sessions, d.SecureCookies)
	pageHandler := NewPageHandler(d.Chats, d.Completions)

	// Chat routes
	router.GET("/history", auth.RequireIdentity(), chatHandler.GetHistory)
	router.POST("/chat/save", auth.RequireIdentity(), chatHandler.SaveHistory)
	router.POST("/completion", chatHandler.Complete)

	// Sign-in routes
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/signin", authHandler.SignIn)
		authGroup.GET("/callback", authHandler.Callback)
		authGroup.GET("/signout", authHandler.SignOut)
		authGroup.POST("/signout", authHandler.SignOut)
		authGroup.GET("/session", auth.RequireIdentity(), authHandler.Session)
	}

	// Chat page
	router.GET("/", pageHandler.Show)
	router.POST("/", pageHandler.Send)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return router
}

// requestID tags each request's context with an ID the log handler prints
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// cors allows cross-origin API calls for local development
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

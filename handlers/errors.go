package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/models"
)

// abortWithError maps err to its status and a fixed body. Bad requests are
// answered with invalidMsg; internal errors are logged with logMsg and never
// shown to the caller.
func abortWithError(c *gin.Context, err error, invalidMsg, logMsg string) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, models.ErrBadRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: invalidMsg})
	default:
		slog.ErrorContext(c.Request.Context(), logMsg, "path", c.FullPath(), logger.Err(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal Server Error"})
	}
}

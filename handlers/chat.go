package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/services"
)

// Completer generates a bot reply for one user message
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// ChatHandler handles history and completion requests
type ChatHandler struct {
	chats       *services.ChatService
	completions Completer
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats *services.ChatService, completions Completer) *ChatHandler {
	return &ChatHandler{
		chats:       chats,
		completions: completions,
	}
}

// GetHistory returns the signed-in account's stored messages
func (h *ChatHandler) GetHistory(c *gin.Context) {
	messages, err := h.chats.History(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		abortWithError(c, err, "Invalid request", "Error fetching chat history")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SaveHistory replaces the signed-in account's stored messages with the request's list
func (h *ChatHandler) SaveHistory(c *gin.Context) {
	var req models.SaveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.chats.Save(c.Request.Context(), auth.IdentityFrom(c), req.Messages); err != nil {
		abortWithError(c, err, "Invalid request body", "Error saving chat")
		return
	}

	c.JSON(http.StatusOK, models.SaveHistoryResponse{Success: true})
}

// Complete returns the generated reply for one message
func (h *ChatHandler) Complete(c *gin.Context) {
	var req models.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}

	reply, err := h.completions.Complete(c.Request.Context(), req.Message)
	if err != nil {
		abortWithError(c, err, "Message is required", "Completion API error")
		return
	}

	c.JSON(http.StatusOK, models.CompletionResponse{Reply: reply})
}

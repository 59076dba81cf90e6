package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/gunjanghate/chat-bot-task/models"
)

// ChatCompleter is the part of the OpenAI-compatible client the service needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionService turns one user message into one generated reply
type CompletionService struct {
	client ChatCompleter
	model  string
}

// NewCompletionService creates a completion service talking to an
// OpenAI-compatible endpoint at baseURL
func NewCompletionService(apiKey, baseURL, model string) *CompletionService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return NewCompletionServiceWithClient(openai.NewClientWithConfig(cfg), model)
}

// NewCompletionServiceWithClient creates a completion service using client
func NewCompletionServiceWithClient(client ChatCompleter, model string) *CompletionService {
	return &CompletionService{
		client: client,
		model:  model,
	}
}

// Complete wraps message in the instruction prompt and returns the model's
// text unchanged
func (s *CompletionService) Complete(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", models.ErrBadRequest)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(message)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: requesting completion: %w", models.ErrInternal, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion response", models.ErrInternal)
	}

	return resp.Choices[0].Message.Content, nil
}

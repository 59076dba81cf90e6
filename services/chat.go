package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/store"
)

// ChatService reads and replaces the persisted conversation of an identity
type ChatService struct {
	store store.ChatStore
	now   func() time.Time
}

// NewChatService creates a chat service backed by s
func NewChatService(s store.ChatStore) *ChatService {
	return &ChatService{
		store: s,
		now:   time.Now,
	}
}

// History returns the stored messages for identity, or an empty list when
// the identity has never saved.
func (s *ChatService) History(ctx context.Context, identity string) ([]models.Message, error) {
	if identity == "" {
		return nil, models.ErrUnauthorized
	}

	record, err := s.store.FindByOwner(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.Message{}, nil
		}
		return nil, fmt.Errorf("%w: loading history: %w", models.ErrInternal, err)
	}

	if record.Messages == nil {
		return []models.Message{}, nil
	}
	return record.Messages, nil
}

// Save replaces the whole stored conversation of identity with messages.
// Nothing is merged: the last save for an identity wins.
func (s *ChatService) Save(ctx context.Context, identity string, messages []models.Message) error {
	if identity == "" {
		return models.ErrUnauthorized
	}
	for i, msg := range messages {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}

	record := models.ChatRecord{
		OwnerIdentity: identity,
		Messages:      models.WithDefaults(messages, s.now().UTC()),
	}
	if err := s.store.Replace(ctx, record); err != nil {
		return fmt.Errorf("%w: saving history: %w", models.ErrInternal, err)
	}
	return nil
}

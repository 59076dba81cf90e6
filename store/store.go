// Package store persists chat records keyed by owner identity.
package store

import (
	"context"
	"errors"

	"github.com/gunjanghate/chat-bot-task/models"
)

// ErrNotFound is returned when no record exists for an owner.
var ErrNotFound = errors.New("chat record not found")

// ChatStore is a keyed document store for chat records. Replace is a full
// create-or-replace of the record; concurrent writers for one owner race and
// the last write wins.
type ChatStore interface {
	FindByOwner(ctx context.Context, owner string) (*models.ChatRecord, error)
	Replace(ctx context.Context, record models.ChatRecord) error
	Close(ctx context.Context) error
}

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/gunjanghate/chat-bot-task/models"
)

// MemoryStore is a process-local ChatStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]models.Message)}
}

func (m *MemoryStore) FindByOwner(_ context.Context, owner string) (*models.ChatRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages, ok := m.records[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.ChatRecord{
		OwnerIdentity: owner,
		Messages:      slices.Clone(messages),
	}, nil
}

func (m *MemoryStore) Replace(_ context.Context, record models.ChatRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := slices.Clone(record.Messages)
	if messages == nil {
		messages = []models.Message{}
	}
	m.records[record.OwnerIdentity] = messages
	return nil
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

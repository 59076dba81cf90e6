package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies who produced a message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Valid reports whether r is one of the two conversation roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// Message represents one turn in a conversation
type Message struct {
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Validate checks the fields a stored message must carry
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: invalid role %q", ErrBadRequest, m.Role)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: empty %s message content", ErrBadRequest, m.Role)
	}
	return nil
}

// TimestampPrecision is the resolution every store keeps. BSON dates hold
// milliseconds, so finer digits are dropped before anything is written.
const TimestampPrecision = time.Millisecond

// WithDefaults returns a copy of messages with missing timestamps set to now
// and every timestamp normalized to UTC at TimestampPrecision.
// The input slice is not modified.
func WithDefaults(messages []Message, now time.Time) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		msg.Timestamp = msg.Timestamp.UTC().Truncate(TimestampPrecision)
		out[i] = msg
	}
	return out
}

// ChatRecord is the single persisted conversation of one account
type ChatRecord struct {
	OwnerIdentity string    `json:"ownerIdentity" bson:"ownerIdentity"`
	Messages      []Message `json:"messages" bson:"messages"`
}

// SaveHistoryRequest is the request body for replacing the stored history
type SaveHistoryRequest struct {
	Messages []Message `json:"messages"`
}

// SaveHistoryResponse is the response for a successful save
type SaveHistoryResponse struct {
	Success bool `json:"success"`
}

// CompletionRequest is the request body for a bot reply
type CompletionRequest struct {
	Message string `json:"message"`
}

// CompletionResponse carries the generated text
type CompletionResponse struct {
	Reply string `json:"reply"`
}

// SessionResponse describes the signed-in account
type SessionResponse struct {
	Email string `json:"email"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// Package session holds the client-side state of one chat session and the
// transitions driven by user input and backend results.
package session

import (
	"slices"
	"strings"
	"time"

	"github.com/gunjanghate/chat-bot-task/models"
)

// Phase is where the session is within a chat turn.
type Phase int

const (
	Idle Phase = iota
	AwaitingCompletion
	AwaitingSave
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingCompletion:
		return "awaiting_completion"
	case AwaitingSave:
		return "awaiting_save"
	default:
		return "unknown"
	}
}

// User-facing error messages.
const (
	ErrMsgHistory    = "Failed to fetch chat history."
	ErrMsgCompletion = "Failed to get response from bot."
	ErrMsgSave       = "Failed to save chat history."
)

// State is an immutable snapshot of a session. Reduce never modifies the
// value it is given.
type State struct {
	Messages  []models.Message
	Input     string
	Phase     Phase
	Composing bool
	Err       string

	// list to restore if the in-flight completion fails
	rollback []models.Message
}

// CanSubmit reports whether the send action is enabled.
func (s State) CanSubmit() bool {
	return s.Phase != AwaitingCompletion
}

// Event is a discrete input to Reduce.
type Event interface {
	event()
}

// HistoryLoaded replaces the local list with the stored history.
type HistoryLoaded struct {
	Messages []models.Message
}

// HistoryFailed empties the local list and reports the failure.
type HistoryFailed struct{}

// InputChanged updates the text being composed.
type InputChanged struct {
	Text string
}

// Submitted optimistically appends the user's message.
type Submitted struct {
	Text string
	At   time.Time
}

// CompletionSucceeded appends the bot reply.
type CompletionSucceeded struct {
	Reply string
	At    time.Time
}

// CompletionFailed drops the optimistic user message.
type CompletionFailed struct{}

// Saved marks the full list as persisted.
type Saved struct{}

// SaveFailed keeps the list but reports that it was not persisted.
type SaveFailed struct{}

func (HistoryLoaded) event()       {}
func (HistoryFailed) event()       {}
func (InputChanged) event()        {}
func (Submitted) event()           {}
func (CompletionSucceeded) event() {}
func (CompletionFailed) event()    {}
func (Saved) event()               {}
func (SaveFailed) event()          {}

// Reduce returns the state that follows s after e.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case HistoryLoaded:
		s.Messages = cloneMessages(e.Messages)
		s.Err = ""

	case HistoryFailed:
		s.Messages = []models.Message{}
		s.Err = ErrMsgHistory

	case InputChanged:
		s.Input = e.Text

	case Submitted:
		if strings.TrimSpace(e.Text) == "" || !s.CanSubmit() {
			return s
		}
		s.rollback = s.Messages
		s.Messages = appendMessage(s.Messages, models.Message{Role: models.RoleUser, Content: e.Text, Timestamp: e.At})
		s.Input = ""
		s.Phase = AwaitingCompletion
		s.Composing = true
		s.Err = ""

	case CompletionSucceeded:
		if s.Phase != AwaitingCompletion {
			return s
		}
		s.Messages = appendMessage(s.Messages, models.Message{Role: models.RoleBot, Content: e.Reply, Timestamp: e.At})
		s.rollback = nil
		s.Composing = false
		s.Phase = AwaitingSave

	case CompletionFailed:
		if s.Phase != AwaitingCompletion {
			return s
		}
		s.Messages = cloneMessages(s.rollback)
		s.rollback = nil
		s.Composing = false
		s.Phase = Idle
		s.Err = ErrMsgCompletion

	case Saved:
		// a newer turn may already be in flight
		if s.Phase == AwaitingSave {
			s.Phase = Idle
			s.Err = ""
		}

	case SaveFailed:
		if s.Phase == AwaitingSave {
			s.Phase = Idle
		}
		s.Err = ErrMsgSave
	}
	return s
}

func appendMessage(messages []models.Message, msg models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages)+1)
	out = append(out, messages...)
	return append(out, msg)
}

func cloneMessages(messages []models.Message) []models.Message {
	if messages == nil {
		return []models.Message{}
	}
	return slices.Clone(messages)
}

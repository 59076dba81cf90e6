package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gunjanghate/chat-bot-task/models"
)

// ErrBusy is returned when a message is submitted while a reply is pending.
var ErrBusy = errors.New("a reply is still being generated")

// Backend is the server API a session talks to.
type Backend interface {
	History(ctx context.Context) ([]models.Message, error)
	Complete(ctx context.Context, message string) (string, error)
	Save(ctx context.Context, messages []models.Message) error
}

// Controller runs chat turns for one session and publishes every state
// change to its subscribers.
type Controller struct {
	backend Backend
	now     func() time.Time

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSub     int
}

func NewController(backend Backend) *Controller {
	return &Controller{
		backend:     backend,
		now:         time.Now,
		state:       State{Messages: []models.Message{}},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe registers fn to receive each new state. The returned func removes it.
// fn must not call methods on c.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Load replaces the local list with the stored history. A failure leaves the
// list empty and sets the error message; input stays enabled.
func (c *Controller) Load(ctx context.Context) error {
	messages, err := c.backend.History(ctx)
	if err != nil {
		c.dispatch(HistoryFailed{})
		return fmt.Errorf("loading history: %w", err)
	}
	c.dispatch(HistoryLoaded{Messages: messages})
	return nil
}

// SetInput records the text being composed.
func (c *Controller) SetInput(text string) {
	c.dispatch(InputChanged{Text: text})
}

// Submit runs one turn for text: optimistic append, completion, bot append and
// save of the full list. Blank text is ignored. A failed completion rolls the
// list back to what it was before the submit; a failed save keeps both new
// messages. The returned error is the step failure, already reflected in State.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	if !c.state.CanSubmit() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.apply(Submitted{Text: text, At: c.timestamp()})
	c.mu.Unlock()

	reply, err := c.backend.Complete(ctx, text)
	if err != nil {
		c.dispatch(CompletionFailed{})
		return fmt.Errorf("getting completion: %w", err)
	}

	st := c.dispatch(CompletionSucceeded{Reply: reply, At: c.timestamp()})

	if err := c.backend.Save(ctx, st.Messages); err != nil {
		c.dispatch(SaveFailed{})
		return fmt.Errorf("saving history: %w", err)
	}
	c.dispatch(Saved{})
	return nil
}

func (c *Controller) dispatch(e Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(e)
}

// apply must be called with mu held. Subscribers run under the lock so they
// observe states in order; they must not call back into the Controller.
func (c *Controller) apply(e Event) State {
	c.state = Reduce(c.state, e)
	st := c.snapshot()
	for _, fn := range c.subscribers {
		fn(st)
	}
	return st
}

func (c *Controller) snapshot() State {
	st := c.state
	st.Messages = cloneMessages(st.Messages)
	return st
}

// timestamps match the precision the stores keep
func (c *Controller) timestamp() time.Time {
	return c.now().UTC().Truncate(models.TimestampPrecision)
}

package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/logger"
	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/render"
	"github.com/gunjanghate/chat-bot-task/services"
	"github.com/gunjanghate/chat-bot-task/session"
)

// PageHandler serves the server-rendered chat page. Each form post runs one
// session turn in-process against the same services the JSON API uses.
type PageHandler struct {
	chats       *services.ChatService
	completions Completer
}

// NewPageHandler creates a new page handler
func NewPageHandler(chats *services.ChatService, completions Completer) *PageHandler {
	return &PageHandler{
		chats:       chats,
		completions: completions,
	}
}

type messageView struct {
	Bot  bool
	Text string
	HTML template.HTML
	Time string
}

type pageView struct {
	Email     string
	Messages  []messageView
	Error     string
	Input     string
	CanSubmit bool
}

// Show renders the sign-in page or the signed-in account's conversation
func (h *PageHandler) Show(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity == "" {
		c.HTML(http.StatusOK, "index.html", pageView{})
		return
	}

	ctrl := session.NewController(h.backend(identity))
	if err := ctrl.Load(c.Request.Context()); err != nil {
		slog.ErrorContext(c.Request.Context(), "loading page history", logger.Err(err))
	}
	c.HTML(http.StatusOK, "index.html", newPageView(identity, ctrl.State()))
}

// Send runs one chat turn for the posted message and renders the result
func (h *PageHandler) Send(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity == "" {
		c.Redirect(http.StatusSeeOther, "/auth/signin")
		return
	}
	ctx := c.Request.Context()

	ctrl := session.NewController(h.backend(identity))
	unsubscribe := ctrl.Subscribe(func(st session.State) {
		slog.DebugContext(ctx, "chat turn", "phase", st.Phase.String(), "messages", len(st.Messages))
	})
	defer unsubscribe()

	message := c.PostForm("message")
	// Saving replaces the stored list, so a turn on top of an unread history
	// would drop it. Hand the text back instead.
	if err := ctrl.Load(ctx); err != nil {
		slog.ErrorContext(ctx, "loading page history, turn skipped", logger.Err(err))
		ctrl.SetInput(message)
		c.HTML(http.StatusOK, "index.html", newPageView(identity, ctrl.State()))
		return
	}
	if err := ctrl.Submit(ctx, message); err != nil {
		slog.ErrorContext(ctx, "chat turn failed", logger.Err(err))
	}

	c.HTML(http.StatusOK, "index.html", newPageView(identity, ctrl.State()))
}

func (h *PageHandler) backend(identity string) *localBackend {
	return &localBackend{
		identity:    identity,
		chats:       h.chats,
		completions: h.completions,
	}
}

func newPageView(identity string, st session.State) pageView {
	return pageView{
		Email:     identity,
		Error:     st.Err,
		Input:     st.Input,
		CanSubmit: st.CanSubmit(),
		Messages: lo.Map(st.Messages, func(m models.Message, _ int) messageView {
			view := messageView{
				Bot:  m.Role == models.RoleBot,
				Text: m.Content,
			}
			if view.Bot {
				view.HTML = render.Markdown(m.Content)
			}
			if !m.Timestamp.IsZero() {
				view.Time = m.Timestamp.Format("Jan 2 15:04")
			}
			return view
		}),
	}
}

// localBackend serves a session controller from the in-process services
type localBackend struct {
	identity    string
	chats       *services.ChatService
	completions Completer
}

func (b *localBackend) History(ctx context.Context) ([]models.Message, error) {
	return b.chats.History(ctx, b.identity)
}

func (b *localBackend) Complete(ctx context.Context, message string) (string, error) {
	return b.completions.Complete(ctx, message)
}

func (b *localBackend) Save(ctx context.Context, messages []models.Message) error {
	return b.chats.Save(ctx, b.identity, messages)
}

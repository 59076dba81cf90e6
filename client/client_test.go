package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sashabaranov/go-openai"

	"github.com/gunjanghate/chat-bot-task/auth"
	"github.com/gunjanghate/chat-bot-task/client"
	"github.com/gunjanghate/chat-bot-task/handlers"
	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/services"
	"github.com/gunjanghate/chat-bot-task/session"
	"github.com/gunjanghate/chat-bot-task/store"
)

// scriptedAPI answers completion requests with replies in order.
type scriptedAPI struct {
	replies []string
	calls   int
}

func (s *scriptedAPI) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := s.calls
	s.calls++
	reply := "ok"
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
		},
	}, nil
}

type toggleStore struct {
	*store.MemoryStore
	failWrites atomic.Bool
}

func (t *toggleStore) Replace(ctx context.Context, record models.ChatRecord) error {
	if t.failWrites.Load() {
		return errors.New("not primary")
	}
	return t.MemoryStore.Replace(ctx, record)
}

func newServer(t *testing.T, s store.ChatStore, replies ...string) (*httptest.Server, *auth.Sessions) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := auth.NewSessions("test-secret", time.Hour)
	router := handlers.NewRouter(handlers.Deps{
		Chats:       services.NewChatService(s),
		Completions: services.NewCompletionServiceWithClient(&scriptedAPI{replies: replies}, "test-model"),
		Sessions:    sessions,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func newClient(t *testing.T, srv *httptest.Server, sessions *auth.Sessions, email string) *client.Client {
	t.Helper()
	token, err := sessions.Issue(email)
	if err != nil {
		t.Fatal(err)
	}
	return client.New(srv.URL, token)
}

var ignoreTimestamps = cmpopts.IgnoreFields(models.Message{}, "Timestamp")

func TestControllerOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv, sessions := newServer(t, store.NewMemoryStore(), "Hi there")
	api := newClient(t, srv, sessions, "a@example.com")

	email, err := api.Session(ctx)
	if err != nil || email != "a@example.com" {
		t.Fatalf("Session() = %q, %v", email, err)
	}

	ctrl := session.NewController(api)
	if err := ctrl.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ctrl.State().Messages) != 0 {
		t.Fatalf("new account has history: %+v", ctrl.State().Messages)
	}

	if err := ctrl.Submit(ctx, "hello"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	local := ctrl.State().Messages
	want := []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleBot, Content: "Hi there"},
	}
	if diff := cmp.Diff(want, local, ignoreTimestamps); diff != "" {
		t.Errorf("local list (-want +got):\n%s", diff)
	}

	stored, err := api.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(local, stored); diff != "" {
		t.Errorf("stored history differs from local list (-local +stored):\n%s", diff)
	}
}

func TestControllerOverHTTPSaveFailureThenRecovery(t *testing.T) {
	ctx := context.Background()
	st := &toggleStore{MemoryStore: store.NewMemoryStore()}
	st.failWrites.Store(true)
	srv, sessions := newServer(t, st, "first reply", "second reply")
	api := newClient(t, srv, sessions, "a@example.com")

	ctrl := session.NewController(api)
	if err := ctrl.Load(ctx); err != nil {
		t.Fatal(err)
	}

	err := ctrl.Submit(ctx, "one")
	if !errors.Is(err, models.ErrInternal) {
		t.Fatalf("Submit() error = %v, want ErrInternal", err)
	}
	if got := ctrl.State(); got.Err != session.ErrMsgSave || len(got.Messages) != 2 {
		t.Fatalf("state after failed save = %+v", got)
	}

	st.failWrites.Store(false)
	if err := ctrl.Submit(ctx, "two"); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	stored, err := api.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Message{
		{Role: models.RoleUser, Content: "one"},
		{Role: models.RoleBot, Content: "first reply"},
		{Role: models.RoleUser, Content: "two"},
		{Role: models.RoleBot, Content: "second reply"},
	}
	if diff := cmp.Diff(want, stored, ignoreTimestamps); diff != "" {
		t.Errorf("stored history (-want +got):\n%s", diff)
	}
}

func TestClientErrorKinds(t *testing.T) {
	ctx := context.Background()
	srv, sessions := newServer(t, store.NewMemoryStore())

	anonymous := client.New(srv.URL, "")
	if _, err := anonymous.History(ctx); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("anonymous History() error = %v, want ErrUnauthorized", err)
	}
	if err := anonymous.Save(ctx, nil); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("anonymous Save() error = %v, want ErrUnauthorized", err)
	}

	api := newClient(t, srv, sessions, "a@example.com")
	if _, err := api.Complete(ctx, "   "); !errors.Is(err, models.ErrBadRequest) {
		t.Errorf("blank Complete() error = %v, want ErrBadRequest", err)
	}

	unreachable := client.New("http://127.0.0.1:1", "")
	if _, err := unreachable.Complete(ctx, "hello"); !errors.Is(err, models.ErrInternal) {
		t.Errorf("unreachable Complete() error = %v, want ErrInternal", err)
	}
}

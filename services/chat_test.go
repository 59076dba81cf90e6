package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gunjanghate/chat-bot-task/models"
	"github.com/gunjanghate/chat-bot-task/store"
)

type failingStore struct {
	err error
}

func (f failingStore) FindByOwner(context.Context, string) (*models.ChatRecord, error) {
	return nil, f.err
}

func (f failingStore) Replace(context.Context, models.ChatRecord) error {
	return f.err
}

func (f failingStore) Close(context.Context) error {
	return nil
}

// bsonStore keeps records in their BSON encoding, as MongoStore does.
type bsonStore struct {
	docs map[string][]byte
}

func (b *bsonStore) FindByOwner(_ context.Context, owner string) (*models.ChatRecord, error) {
	doc, ok := b.docs[owner]
	if !ok {
		return nil, store.ErrNotFound
	}
	var record models.ChatRecord
	if err := bson.Unmarshal(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *bsonStore) Replace(_ context.Context, record models.ChatRecord) error {
	doc, err := bson.Marshal(record)
	if err != nil {
		return err
	}
	b.docs[record.OwnerIdentity] = doc
	return nil
}

func (b *bsonStore) Close(context.Context) error {
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHistoryEmptyForNewIdentity(t *testing.T) {
	svc := NewChatService(store.NewMemoryStore())

	got, err := svc.History(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("History() = %#v, want empty non-nil slice", got)
	}
}

func TestSaveThenHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(store.NewMemoryStore())
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	want := []models.Message{
		{Role: models.RoleUser, Content: "hello", Timestamp: ts},
		{Role: models.RoleBot, Content: "Hi there", Timestamp: ts.Add(time.Second)},
		{Role: models.RoleUser, Content: "how are you?", Timestamp: ts.Add(2 * time.Second)},
	}
	if err := svc.Save(ctx, "a@example.com", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := svc.History(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveReplacesWholeList(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(store.NewMemoryStore())
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m1 := []models.Message{
		{Role: models.RoleUser, Content: "first", Timestamp: ts},
		{Role: models.RoleBot, Content: "reply", Timestamp: ts},
	}
	m2 := []models.Message{{Role: models.RoleUser, Content: "second", Timestamp: ts}}

	if err := svc.Save(ctx, "a@example.com", m1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx, "a@example.com", m2); err != nil {
		t.Fatal(err)
	}

	got, err := svc.History(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m2, got); diff != "" {
		t.Errorf("History() after second save (-want +got):\n%s", diff)
	}
}

func TestSaveDefaultsTimestamp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	svc := NewChatService(store.NewMemoryStore())
	svc.now = fixedClock(now)

	if err := svc.Save(ctx, "a@example.com", []models.Message{{Role: models.RoleUser, Content: "hello"}}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.History(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, now)
	}
}

func TestSaveKeepsStoredPrecision(t *testing.T) {
	ctx := context.Background()
	fine := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	stores := map[string]store.ChatStore{
		"memory": store.NewMemoryStore(),
		"bson":   &bsonStore{docs: map[string][]byte{}},
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			svc := NewChatService(s)
			svc.now = fixedClock(fine.Add(time.Minute))

			saved := []models.Message{
				{Role: models.RoleUser, Content: "hello", Timestamp: fine},
				{Role: models.RoleBot, Content: "Hi there"},
			}
			if err := svc.Save(ctx, "a@example.com", saved); err != nil {
				t.Fatal(err)
			}
			got, err := svc.History(ctx, "a@example.com")
			if err != nil {
				t.Fatal(err)
			}

			want := []models.Message{
				{Role: models.RoleUser, Content: "hello", Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 123000000, time.UTC)},
				{Role: models.RoleBot, Content: "Hi there", Timestamp: time.Date(2024, 5, 1, 12, 1, 0, 123000000, time.UTC)},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("History() mismatch (-want +got):\n%s", diff)
			}

			// a second round trip returns exactly what was read
			if err := svc.Save(ctx, "a@example.com", got); err != nil {
				t.Fatal(err)
			}
			again, err := svc.History(ctx, "a@example.com")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("second round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveEmptyListClearsHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(store.NewMemoryStore())

	if err := svc.Save(ctx, "a@example.com", []models.Message{{Role: models.RoleUser, Content: "hello"}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx, "a@example.com", nil); err != nil {
		t.Fatal(err)
	}

	got, err := svc.History(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("History() = %v, want empty", got)
	}
}

func TestChatServiceErrors(t *testing.T) {
	ctx := context.Background()
	broken := NewChatService(failingStore{err: errors.New("connection refused")})
	valid := []models.Message{{Role: models.RoleUser, Content: "hello"}}

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"history without identity", func() error {
			_, err := NewChatService(store.NewMemoryStore()).History(ctx, "")
			return err
		}, models.ErrUnauthorized},
		{"save without identity", func() error {
			return NewChatService(store.NewMemoryStore()).Save(ctx, "", valid)
		}, models.ErrUnauthorized},
		{"save invalid role", func() error {
			return NewChatService(store.NewMemoryStore()).Save(ctx, "a@example.com", []models.Message{{Role: "system", Content: "x"}})
		}, models.ErrBadRequest},
		{"history store fault", func() error {
			_, err := broken.History(ctx, "a@example.com")
			return err
		}, models.ErrInternal},
		{"save store fault", func() error {
			return broken.Save(ctx, "a@example.com", valid)
		}, models.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

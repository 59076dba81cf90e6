package store

import (
	"context"
	"os"
	"testing"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM chat_records")
		_ = s.Close(ctx)
	})
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_records"); err != nil {
		t.Fatalf("cleaning table: %v", err)
	}

	testChatStore(t, s)
}

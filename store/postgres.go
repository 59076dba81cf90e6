package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/gunjanghate/chat-bot-task/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps each chat record as one JSONB document row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool to url and applies pending migrations.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// Migrate applies the embedded schema migrations and returns how many ran.
func Migrate(db *sql.DB) (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       "migrations",
	}
	n, err := migrate.Exec(db, "postgres", source, migrate.Up)
	if err != nil {
		return 0, fmt.Errorf("applying migrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner string) (*models.ChatRecord, error) {
	const query = `
		SELECT messages
		FROM chat_records
		WHERE owner_identity = $1
	`

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, owner).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching chat record: %w", err)
	}

	record := models.ChatRecord{OwnerIdentity: owner}
	if err := json.Unmarshal(raw, &record.Messages); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	return &record, nil
}

func (s *PostgresStore) Replace(ctx context.Context, record models.ChatRecord) error {
	const query = `
		INSERT INTO chat_records (owner_identity, messages, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner_identity)
		DO UPDATE SET
			messages = EXCLUDED.messages,
			updated_at = EXCLUDED.updated_at
	`

	messages := record.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, record.OwnerIdentity, raw); err != nil {
		return fmt.Errorf("saving chat record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close(_ context.Context) error {
	return s.db.Close()
}

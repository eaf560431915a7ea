package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starkline/phone-mirror/backend/internal/model/chat"
)

const sqliteMigrations = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT NOT NULL,
	persona_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	sender     TEXT NOT NULL,
	text       TEXT NOT NULL,
	sent_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (persona_id, position)
);
`

// SQLiteStore persists transcripts to a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the transcript for a persona, oldest first. Returns (nil, nil)
// when nothing has been saved.
func (s *SQLiteStore) Load(ctx context.Context, personaID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, text, sent_at FROM messages WHERE persona_id = ? ORDER BY position`,
		personaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []chat.Message
	for rows.Next() {
		msg := chat.Message{PersonaID: personaID}
		var sender string
		if err := rows.Scan(&msg.ID, &sender, &msg.Text, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msg.Sender = chat.Sender(sender)
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return history, nil
}

// Save replaces the persisted transcript for a persona atomically.
func (s *SQLiteStore) Save(ctx context.Context, personaID string, history []chat.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE persona_id = ?`, personaID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	for i, msg := range history {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, persona_id, position, sender, text, sent_at) VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, personaID, i, string(msg.Sender), msg.Text, msg.SentAt); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

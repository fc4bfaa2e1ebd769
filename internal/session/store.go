package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boardeasy/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists sessions in a local sqlite file so a restart does not log
// everyone out. Only the token and profile live here; booking drafts never do.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the credential database.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			chat_id    INTEGER PRIMARY KEY,
			token      TEXT NOT NULL,
			user_json  TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored session for a chat, or nil when none exists.
func (s *Store) Load(ctx context.Context, chatID int64) (*Context, error) {
	var token, userJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json FROM sessions WHERE chat_id = ?`, chatID,
	).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("decode session profile: %w", err)
	}

	return &Context{ChatID: chatID, Token: token, User: user}, nil
}

// Save upserts a session.
func (s *Store) Save(ctx context.Context, sess *Context) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, token, user_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at`,
		sess.ChatID, sess.Token, string(userJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear logs a chat out.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

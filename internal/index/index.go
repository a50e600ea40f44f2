// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides a searchable index over persisted chat messages.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/winfunc/deepreasoning/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed       = errors.New("index is closed")
	ErrInvalidQuery = errors.New("empty search query")
)

// =============================================================================
// MESSAGE INDEX
// =============================================================================

// Schema is the message index table layout. Messages are stored with a
// case-folded copy of their text so queries match regardless of case,
// including non-ASCII text.
const Schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	chat_id    TEXT NOT NULL,
	chat_title TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	thinking   TEXT NOT NULL DEFAULT '',
	folded     TEXT NOT NULL,
	timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id);
CREATE INDEX IF NOT EXISTS idx_messages_folded ON messages(folded);
`

// SearchResult is one matching message with enough context to jump to it.
type SearchResult struct {
	MessageID string
	ChatID    string
	ChatTitle string
	Role      string
	Content   string
	Timestamp time.Time
}

// MessageIndex indexes chat messages in SQLite for fast search.
type MessageIndex struct {
	mu     sync.Mutex
	db     *sql.DB
	folder cases.Caser
	closed bool
}

// Open opens (or creates) the index database at the given path.
func Open(path string) (*MessageIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &MessageIndex{
		db:     db,
		folder: cases.Fold(),
	}, nil
}

// Close closes the index and releases resources.
func (idx *MessageIndex) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil
	}
	idx.closed = true
	return idx.db.Close()
}

// =============================================================================
// INDEXING
// =============================================================================

// Rebuild replaces the index contents with the given chat set. The rebuild
// runs in one transaction so a crash never leaves a half-indexed state.
func (idx *MessageIndex) Rebuild(ctx context.Context, chats []*model.Chat) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrClosed
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, chat_id, chat_title, role, content, thinking, folded, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, chat := range chats {
		for _, msg := range chat.Messages {
			folded := idx.folder.String(msg.Content + "\n" + msg.Thinking)
			_, err := stmt.ExecContext(ctx,
				msg.ID, chat.ID, chat.Title, msg.Role.String(),
				msg.Content, msg.Thinking, folded,
				msg.Timestamp.Format(time.RFC3339Nano))
			if err != nil {
				return fmt.Errorf("failed to index message: %w", err)
			}
		}
	}

	return tx.Commit()
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns messages whose content or reasoning contains the query,
// case-insensitively, newest first.
func (idx *MessageIndex) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return nil, ErrClosed
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(idx.folder.String(query)) + "%"
	rows, err := idx.db.QueryContext(ctx, `
		SELECT id, chat_id, chat_title, role, content, timestamp
		FROM messages
		WHERE folded LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var ts string
		if err := rows.Scan(&r.MessageID, &r.ChatID, &r.ChatTitle, &r.Role, &r.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of indexed messages.
func (idx *MessageIndex) Count(ctx context.Context) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return 0, ErrClosed
	}

	var n int
	err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// escapeLike escapes LIKE metacharacters in a query term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

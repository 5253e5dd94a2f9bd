// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/chatdesk/internal/model"
)

// ErrClosed is returned by operations on a closed archive.
var ErrClosed = errors.New("archive is closed")

// DefaultPath returns ~/.chatdesk/conversations.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chatdesk", "conversations.db")
	}
	return filepath.Join(home, ".chatdesk", "conversations.db")
}

// Archive persists conversations to SQLite. It is safe for concurrent use.
type Archive struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &Archive{db: db}, nil
}

// SaveConversation upserts the conversation name and inserts the messages
// not stored yet. Messages are append-only so only the tail is written.
func (a *Archive) SaveConversation(conv model.Conversation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO conversations (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		conv.ID, conv.Name,
	); err != nil {
		return fmt.Errorf("failed to save conversation %d: %w", conv.ID, err)
	}

	var stored int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conv.ID).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	if stored < len(conv.Messages) {
		stmt, err := tx.Prepare(`INSERT INTO messages (conversation_id, seq, sender, text, image_url) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for seq := stored; seq < len(conv.Messages); seq++ {
			m := conv.Messages[seq]
			if _, err := stmt.Exec(conv.ID, seq, string(m.Sender), m.Text, m.ImageURL); err != nil {
				return fmt.Errorf("failed to save message %d: %w", seq, err)
			}
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored conversation ordered by id.
func (a *Archive) LoadAll() ([]model.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}

	rows, err := a.db.Query(`SELECT id, name FROM conversations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	var convs []model.Conversation
	index := make(map[int64]int)
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		index[c.ID] = len(convs)
		convs = append(convs, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	msgRows, err := a.db.Query(`SELECT conversation_id, sender, text, image_url FROM messages ORDER BY conversation_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer msgRows.Close()
	for msgRows.Next() {
		var (
			id     int64
			sender string
			m      model.Message
		)
		if err := msgRows.Scan(&id, &sender, &m.Text, &m.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Sender = model.Sender(sender)
		if i, ok := index[id]; ok {
			convs[i].Messages = append(convs[i].Messages, m)
		}
	}
	return convs, msgRows.Err()
}

// Close closes the database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

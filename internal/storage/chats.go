// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for the deepreasoning TUI.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/util"
)

// chatsFile is the single file holding the entire chat set.
const chatsFile = "chats.json"

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore persists the whole chat set as one JSON document. Every save
// rewrites the file atomically, so a crash mid-write never leaves a
// truncated chat set behind.
type ChatStore struct {
	// BaseDir is the directory holding the chats file.
	// Default: ~/.deepreasoning/
	BaseDir string
}

// NewChatStore creates a store rooted in the user's home directory.
func NewChatStore() (*ChatStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewChatStoreWithDir(filepath.Join(homeDir, ".deepreasoning"))
}

// NewChatStoreWithDir creates a store with a custom directory.
func NewChatStoreWithDir(baseDir string) (*ChatStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &ChatStore{BaseDir: baseDir}, nil
}

// filePath returns the path of the chats file.
func (s *ChatStore) filePath() string {
	return filepath.Join(s.BaseDir, chatsFile)
}

// =============================================================================
// SAVE AND LOAD
// =============================================================================

// Save persists the full chat set.
func (s *ChatStore) Save(chats []*model.Chat) error {
	if chats == nil {
		chats = []*model.Chat{}
	}
	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.filePath(), data, 0644)
}

// Load reads the stored chat set. A missing file or an unreadable document
// is treated as no stored data, not an error, so a corrupted file never
// blocks startup.
func (s *ChatStore) Load() []*model.Chat {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return nil
	}

	var chats []*model.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil
	}
	return chats
}

// Clear removes the stored chat set.
func (s *ChatStore) Clear() error {
	err := os.Remove(s.filePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

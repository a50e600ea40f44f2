// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/winfunc/deepreasoning/internal/model"
)

func newTestStore(t *testing.T) *ChatStore {
	t.Helper()
	store, err := NewChatStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewChatStoreWithDir: %v", err)
	}
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	chat := model.NewChat()
	chat.AddUserMessage("hello there")
	chat.ApplyAssistantTurn(model.TurnSnapshot{Thinking: "pondering", Content: "hi"})

	if err := store.Save([]*model.Chat{chat}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != 1 {
		t.Fatalf("loaded %d chats, want 1", len(loaded))
	}
	got := loaded[0]
	if got.ID != chat.ID || got.Title != chat.Title {
		t.Errorf("identity mismatch: %q/%q vs %q/%q", got.ID, got.Title, chat.ID, chat.Title)
	}
	if got.MessageCount() != 2 {
		t.Fatalf("message count = %d, want 2", got.MessageCount())
	}
	if got.Messages[1].Thinking != "pondering" {
		t.Errorf("thinking not persisted: %q", got.Messages[1].Thinking)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	if chats := store.Load(); chats != nil {
		t.Errorf("Load on empty dir = %v, want nil", chats)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.BaseDir, chatsFile)
	if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if chats := store.Load(); chats != nil {
		t.Errorf("Load of corrupt file = %v, want nil", chats)
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save([]*model.Chat{model.NewChat()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if chats := store.Load(); chats != nil {
		t.Error("chats survived Clear")
	}

	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

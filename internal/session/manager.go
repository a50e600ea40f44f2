// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the chat set and the active chat selection.
package session

import (
	"errors"
	"sync"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/storage"
)

// ErrChatNotFound indicates the requested chat id is not in the set.
var ErrChatNotFound = errors.New("chat not found")

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the chat set. Every mutation rewrites the persisted set, so
// the in-memory state is authoritative and the disk copy trails it by at
// most one operation. A persistence failure is recorded but never blocks a
// mutation; the current session keeps running on memory alone.
type Manager struct {
	mu sync.Mutex

	store    *storage.ChatStore
	chats    []*model.Chat
	activeID string

	lastPersistErr error
}

// NewManager creates a manager backed by the given store. Any stored chat
// set is loaded first, then a fresh chat is unconditionally created and
// made active, so the application always starts on a new chat.
func NewManager(store *storage.ChatStore) *Manager {
	m := &Manager{store: store}
	if store != nil {
		m.chats = store.Load()
	}
	m.createChatLocked()
	return m
}

// =============================================================================
// CHAT SET OPERATIONS
// =============================================================================

// CreateChat adds a new empty chat and makes it active.
func (m *Manager) CreateChat() *model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createChatLocked()
}

func (m *Manager) createChatLocked() *model.Chat {
	chat := model.NewChat()
	m.chats = append(m.chats, chat)
	m.activeID = chat.ID
	m.persistLocked()
	return chat
}

// SelectChat switches the active chat. Any in-flight streaming turn must be
// cancelled by the caller before switching; the manager does not track it.
func (m *Manager) SelectChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, chat := range m.chats {
		if chat.ID == id {
			m.activeID = id
			return nil
		}
	}
	return ErrChatNotFound
}

// DeleteChat removes a chat from the set. Deleting the active chat leaves
// no chat active.
func (m *Manager) DeleteChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, chat := range m.chats {
		if chat.ID == id {
			m.chats = append(m.chats[:i], m.chats[i+1:]...)
			if m.activeID == id {
				m.activeID = ""
			}
			m.persistLocked()
			return nil
		}
	}
	return ErrChatNotFound
}

// ClearAll removes every chat and the active reference.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chats = nil
	m.activeID = ""
	m.persistLocked()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveChat returns the active chat, or nil when none is active.
func (m *Manager) ActiveChat() *model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeChatLocked()
}

func (m *Manager) activeChatLocked() *model.Chat {
	if m.activeID == "" {
		return nil
	}
	for _, chat := range m.chats {
		if chat.ID == m.activeID {
			return chat
		}
	}
	return nil
}

// EnsureActive returns the active chat, creating one if none is active.
func (m *Manager) EnsureActive() *model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chat := m.activeChatLocked(); chat != nil {
		return chat
	}
	return m.createChatLocked()
}

// Chats returns the chat set in creation order.
func (m *Manager) Chats() []*model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Chat, len(m.chats))
	copy(out, m.chats)
	return out
}

// ChatCount returns the number of chats in the set.
func (m *Manager) ChatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats)
}

// FindChat returns the chat with the given id, or nil.
func (m *Manager) FindChat(id string) *model.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, chat := range m.chats {
		if chat.ID == id {
			return chat
		}
	}
	return nil
}

// =============================================================================
// CONVERSATION MUTATIONS
// =============================================================================

// AddUserMessage appends a user message to the active chat, creating one
// if needed, and persists the set.
func (m *Manager) AddUserMessage(content string) *model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat := m.activeChatLocked()
	if chat == nil {
		chat = m.createChatLocked()
	}
	msg := chat.AddUserMessage(content)
	m.persistLocked()
	return msg
}

// ApplyAssistantTurn folds a turn snapshot into the active chat. Persists
// only when the chat actually changed. Returns false when nothing changed
// or no chat is active.
func (m *Manager) ApplyAssistantTurn(snapshot model.TurnSnapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat := m.activeChatLocked()
	if chat == nil {
		return false
	}
	if !chat.ApplyAssistantTurn(snapshot) {
		return false
	}
	m.persistLocked()
	return true
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the full chat set through the store.
func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	m.lastPersistErr = m.store.Save(m.chats)
}

// LastPersistError returns the error from the most recent save, if any.
func (m *Manager) LastPersistError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPersistErr
}

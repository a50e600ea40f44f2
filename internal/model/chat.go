// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/winfunc/deepreasoning/internal/api"
)

// TitleRunes is how many characters of the first user message become the
// chat title. Once derived the title never changes.
const TitleRunes = 20

// DefaultTitle is shown for chats with no messages yet.
const DefaultTitle = "New Chat"

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds one conversation with its metadata. The message list is the
// only field mutated after creation; identity and title are fixed once set.
type Chat struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
}

// NewChat creates a new empty chat with a generated ID.
func NewChat() *Chat {
	now := time.Now()
	return &Chat{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUserMessage appends a new user message. The first user message also
// fixes the chat title.
func (c *Chat) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	return msg
}

// ApplyAssistantTurn folds an accumulator snapshot into the message list.
// If the last message is an assistant message it is replaced in place, but
// only when the snapshot actually differs by value; applying an identical
// snapshot is a no-op. If the last message is not an assistant message a
// new one is appended. Returns true when the chat changed.
func (c *Chat) ApplyAssistantTurn(snapshot TurnSnapshot) bool {
	last := c.LastMessage()
	if last != nil && last.Role == RoleAssistant {
		current := TurnSnapshot{Content: last.Content, Thinking: last.Thinking}
		if current.Equal(snapshot) {
			return false
		}
		last.Content = snapshot.Content
		last.Thinking = snapshot.Thinking
		c.UpdatedAt = time.Now()
		return true
	}

	msg := NewAssistantMessage()
	msg.Content = snapshot.Content
	msg.Thinking = snapshot.Thinking
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return true
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Chat) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// updateTitle derives the title from the first user message, once.
func (c *Chat) updateTitle() {
	if c.Title != "" && c.Title != DefaultTitle {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(TitleRunes)
			return
		}
	}
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// ToWireMessages converts the chat history to the request message format.
// Only role and content travel on the wire: reasoning from earlier turns is
// dropped, and system prompts are carried in the request's own field rather
// than the message list.
func (c *Chat) ToWireMessages() []api.Message {
	messages := make([]api.Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		if msg.Content == "" {
			continue
		}
		messages = append(messages, api.Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return messages
}

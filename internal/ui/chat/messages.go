// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat screen:
//   - Streaming: stream lifecycle, content delivery, usage, errors
//   - Chats: create, select, delete
//   - Ticks: frame-rate-capped streaming and spinner ticks
package chat

import (
	"time"

	"github.com/winfunc/deepreasoning/internal/api"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a streaming request was accepted and the
// reasoning phase has begun.
type StreamStartMsg struct {
	ChatID    string
	StartTime time.Time
}

// ReasoningDoneMsg signals that the reasoning phase finished and the answer
// phase is streaming. Sent at most once per turn.
type ReasoningDoneMsg struct {
	ChatID  string
	Elapsed time.Duration
}

// StreamUsageMsg delivers the usage event for the current turn. Costs are
// computed upstream and passed through as-is.
type StreamUsageMsg struct {
	ChatID string
	Usage  api.CombinedUsage
}

// StreamCompleteMsg signals that the stream finished, cleanly or not.
type StreamCompleteMsg struct {
	ChatID string
	Err    error
}

// StreamErrorMsg signals a protocol-level error event inside the stream.
type StreamErrorMsg struct {
	ChatID  string
	Message string
	Code    int
}

// StreamTickMsg is sent at a capped rate during streaming to drain the
// content buffer. Rendering happens on ticks, never per delta.
type StreamTickMsg struct {
	Time time.Time
}

// SpinnerTickMsg advances the spinner animation.
type SpinnerTickMsg struct {
	Time time.Time
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// NewChatMsg requests a fresh chat.
type NewChatMsg struct{}

// SelectChatMsg activates a stored chat by ID.
type SelectChatMsg struct {
	ID string
}

// DeleteChatMsg deletes a stored chat by ID.
type DeleteChatMsg struct {
	ID string
}

// ConfigReloadedMsg delivers a freshly loaded configuration from the
// config file watcher.
type ConfigReloadedMsg struct {
	ShowThinking bool
	Markdown     bool
	SystemPrompt string
	Verbose      bool
}

// =============================================================================
// HELPER CONSTRUCTORS
// =============================================================================

// NewStreamStartMsg creates a StreamStartMsg stamped with the current time.
func NewStreamStartMsg(chatID string) StreamStartMsg {
	return StreamStartMsg{
		ChatID:    chatID,
		StartTime: time.Now(),
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

func TestChatTitleDerivation(t *testing.T) {
	chat := NewChat()
	if chat.Title != DefaultTitle {
		t.Errorf("empty chat title = %q, want %q", chat.Title, DefaultTitle)
	}

	chat.AddUserMessage("What is the airspeed velocity of an unladen swallow?")
	if chat.Title != "What is the airspeed" {
		t.Errorf("title = %q, want first 20 characters", chat.Title)
	}

	// Later messages never change the title.
	chat.AddUserMessage("Different question entirely")
	if chat.Title != "What is the airspeed" {
		t.Errorf("title changed to %q after second message", chat.Title)
	}
}

func TestChatTitleShortMessage(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("hi")
	if chat.Title != "hi" {
		t.Errorf("title = %q, want %q", chat.Title, "hi")
	}
}

func TestApplyAssistantTurnAppendsAfterUser(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("question")

	changed := chat.ApplyAssistantTurn(TurnSnapshot{Thinking: "hmm"})
	if !changed {
		t.Error("first snapshot must report a change")
	}
	if chat.MessageCount() != 2 {
		t.Fatalf("count = %d, want 2", chat.MessageCount())
	}
	last := chat.LastMessage()
	if last.Role != RoleAssistant || last.Thinking != "hmm" {
		t.Errorf("last = %+v", last)
	}
}

func TestApplyAssistantTurnUpdatesInPlace(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("question")
	chat.ApplyAssistantTurn(TurnSnapshot{Thinking: "h"})
	chat.ApplyAssistantTurn(TurnSnapshot{Thinking: "hmm", Content: "partial"})

	if chat.MessageCount() != 2 {
		t.Fatalf("count = %d, want 2 (update in place, not append)", chat.MessageCount())
	}
	last := chat.LastMessage()
	if last.Thinking != "hmm" || last.Content != "partial" {
		t.Errorf("last = %q / %q", last.Thinking, last.Content)
	}
}

func TestApplyAssistantTurnIdempotent(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("question")
	snapshot := TurnSnapshot{Thinking: "t", Content: "c"}
	chat.ApplyAssistantTurn(snapshot)

	if chat.ApplyAssistantTurn(snapshot) {
		t.Error("identical snapshot must be a no-op")
	}
	if chat.MessageCount() != 2 {
		t.Errorf("count = %d, want 2", chat.MessageCount())
	}
}

func TestUserMessagesAlwaysAppend(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("one")
	chat.AddUserMessage("one")
	if chat.MessageCount() != 2 {
		t.Errorf("count = %d, want 2 (user messages never dedupe)", chat.MessageCount())
	}
}

func TestUserMessageNeverHasThinking(t *testing.T) {
	chat := NewChat()
	msg := chat.AddUserMessage("hello")
	if msg.HasThinking() {
		t.Error("user message must not carry thinking")
	}
}

func TestToWireMessagesDropsThinking(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("q1")
	chat.ApplyAssistantTurn(TurnSnapshot{Thinking: "secret", Content: "a1"})
	chat.AddUserMessage("q2")

	wire := chat.ToWireMessages()
	if len(wire) != 3 {
		t.Fatalf("wire count = %d, want 3", len(wire))
	}
	for _, m := range wire {
		if m.Content == "secret" {
			t.Error("thinking leaked into wire messages")
		}
	}
	if wire[1].Role != "assistant" || wire[1].Content != "a1" {
		t.Errorf("wire[1] = %+v", wire[1])
	}
}

func TestToWireMessagesSkipsEmptyAssistant(t *testing.T) {
	chat := NewChat()
	chat.AddUserMessage("q")
	// In-flight assistant message with no visible content yet.
	chat.ApplyAssistantTurn(TurnSnapshot{Thinking: "only reasoning so far"})

	wire := chat.ToWireMessages()
	if len(wire) != 1 {
		t.Errorf("wire count = %d, want 1 (empty content skipped)", len(wire))
	}
}

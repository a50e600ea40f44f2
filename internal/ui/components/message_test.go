// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"short line untouched", "hello world", 20, "hello world"},
		{"wraps at word boundary", "one two three four", 9, "one two\nthree\nfour"},
		{"preserves existing newlines", "a\nb", 10, "a\nb"},
		{"zero width untouched", "hello world", 0, "hello world"},
		{"long word hard broken", "abcdefghij", 4, "abcd\nefgh\nij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordWrap(tt.text, tt.width); got != tt.want {
				t.Errorf("wordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWordWrapWideRunes(t *testing.T) {
	// Four CJK runes are eight columns wide; at width 4 they split in two.
	got := wordWrap("日本語字", 4)
	if lines := strings.Split(got, "\n"); len(lines) != 2 {
		t.Errorf("wide rune wrap produced %d lines, want 2: %q", len(lines), got)
	}
}

func TestMaxLineWidth(t *testing.T) {
	if got := maxLineWidth("ab\nabcd\nabc"); got != 4 {
		t.Errorf("maxLineWidth = %d, want 4", got)
	}
	if got := maxLineWidth(""); got != 0 {
		t.Errorf("maxLineWidth of empty = %d, want 0", got)
	}
}

func TestRendererHidesThinkingWhenDisabled(t *testing.T) {
	r := NewMessageRenderer(styles.NewThemeForMode(true))
	r.Markdown = false
	r.SetWidth(80)

	msg := model.NewAssistantMessage()
	msg.Content = "the answer"
	msg.Thinking = "secret reasoning trace"

	r.ShowThinking = true
	if out := r.Render(msg); !strings.Contains(out, "secret reasoning trace") {
		t.Error("thinking trace missing when ShowThinking is on")
	}

	r.ShowThinking = false
	if out := r.Render(msg); strings.Contains(out, "secret reasoning trace") {
		t.Error("thinking trace rendered when ShowThinking is off")
	}
}

func TestRendererUserBubbleContainsContent(t *testing.T) {
	r := NewMessageRenderer(styles.NewThemeForMode(true))
	r.SetWidth(80)

	out := r.Render(model.NewUserMessage("hello there"))
	if !strings.Contains(out, "hello there") {
		t.Errorf("user bubble missing content: %q", out)
	}
	if !strings.Contains(out, "you") {
		t.Error("user bubble missing role label")
	}
}

func TestRendererPlainFallback(t *testing.T) {
	r := NewMessageRenderer(styles.NewThemeForMode(true))
	r.Markdown = false
	r.SetWidth(80)

	msg := model.NewAssistantMessage()
	msg.Content = "plain answer text"

	if out := r.Render(msg); !strings.Contains(out, "plain answer text") {
		t.Errorf("plain fallback missing content: %q", out)
	}
}

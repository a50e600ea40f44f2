// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/winfunc/deepreasoning/internal/api"
)

// =============================================================================
// TURN ACCUMULATOR
// =============================================================================

// Turn accumulates one in-flight assistant turn. It owns the two-phase
// classifier: every turn starts in the reasoning phase, the open sentinel
// re-enters it, the close sentinel switches to the answer phase. Sentinel
// fragments flip state only and are never appended to either buffer.
//
// Turn is transient. When the stream completes its buffers fold into a
// Message and the Turn is discarded.
type Turn struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	thinking strings.Builder
	content  strings.Builder

	inThinking    bool
	reasoningDone bool
	started       time.Time
	finishedAt    time.Time
}

// NewTurn creates an accumulator for a fresh assistant turn.
func NewTurn() *Turn {
	return &Turn{
		inThinking: true,
		started:    time.Now(),
	}
}

// Feed classifies one content fragment and appends its text to the active
// buffer. Returns true when this fragment finalized the reasoning phase,
// so callers can freeze an elapsed-time display.
func (t *Turn) Feed(block api.ContentBlock) bool {
	if block.IsOpenSentinel() {
		t.inThinking = true
		return false
	}
	if block.IsCloseSentinel() {
		t.inThinking = false
		if t.reasoningDone {
			return false
		}
		t.reasoningDone = true
		t.finishedAt = time.Now()
		return true
	}

	if t.inThinking {
		t.thinking.WriteString(block.Text)
	} else {
		t.content.WriteString(block.Text)
	}
	return false
}

// Thinking returns the accumulated reasoning text.
func (t *Turn) Thinking() string {
	return t.thinking.String()
}

// Content returns the accumulated answer text.
func (t *Turn) Content() string {
	return t.content.String()
}

// InThinking reports whether the accumulator is in the reasoning phase.
func (t *Turn) InThinking() bool {
	return t.inThinking
}

// ReasoningDone reports whether the close sentinel has been seen.
func (t *Turn) ReasoningDone() bool {
	return t.reasoningDone
}

// ReasoningElapsed returns how long the reasoning phase has run. Once the
// close sentinel arrives the value freezes.
func (t *Turn) ReasoningElapsed() time.Duration {
	if t.reasoningDone {
		return t.finishedAt.Sub(t.started)
	}
	return time.Since(t.started)
}

// Snapshot returns the current buffers as an assistant message. The same
// message value is produced for the same buffer contents, which lets the
// store's equality short-circuit suppress redundant updates.
func (t *Turn) Snapshot() TurnSnapshot {
	return TurnSnapshot{
		Content:  t.content.String(),
		Thinking: t.thinking.String(),
	}
}

// TurnSnapshot is a value copy of an accumulator's buffers, compared by
// value when applied to a chat.
type TurnSnapshot struct {
	Content  string
	Thinking string
}

// Equal reports whether two snapshots carry identical text.
func (s TurnSnapshot) Equal(other TurnSnapshot) bool {
	return s.Content == other.Content && s.Thinking == other.Thinking
}

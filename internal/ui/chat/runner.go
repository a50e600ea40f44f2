// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/winfunc/deepreasoning/internal/api"
)

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner executes streaming requests in a goroutine and feeds the
// results back into the Bubble Tea program. Content blocks go through the
// shared StreamingBuffer; lifecycle transitions go through program.Send
// directly so they are never delayed behind a render tick.
type StreamRunner struct {
	program *tea.Program
	client  *api.Client
	buffer  *StreamingBuffer
}

// NewStreamRunner creates a stream runner bound to a program and client.
func NewStreamRunner(program *tea.Program, client *api.Client, buffer *StreamingBuffer) *StreamRunner {
	return &StreamRunner{
		program: program,
		client:  client,
		buffer:  buffer,
	}
}

// Run executes one streaming chat request. Blocks until the stream ends;
// callers run it in a goroutine.
func (r *StreamRunner) Run(ctx context.Context, chatID string, req api.ChatRequest) {
	if r.client == nil || r.program == nil {
		return
	}

	startMsg := NewStreamStartMsg(chatID)
	start := startMsg.StartTime
	r.program.Send(startMsg)

	reasoningDone := false

	err := r.client.ChatStream(ctx, req, func(event api.StreamEvent) {
		switch event.Type {
		case api.EventContent:
			for _, block := range event.Content {
				if block.IsCloseSentinel() && !reasoningDone {
					reasoningDone = true
					r.program.Send(ReasoningDoneMsg{
						ChatID:  chatID,
						Elapsed: time.Since(start),
					})
				}
				r.buffer.Write(block)
			}

		case api.EventUsage:
			if event.Usage != nil {
				r.program.Send(StreamUsageMsg{ChatID: chatID, Usage: *event.Usage})
			}

		case api.EventError:
			r.program.Send(StreamErrorMsg{
				ChatID:  chatID,
				Message: event.Message,
				Code:    event.Code,
			})
		}
	})

	r.program.Send(StreamCompleteMsg{ChatID: chatID, Err: err})
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements streaming render batching. The server can emit
// hundreds of text_delta blocks per second; rendering each one would burn
// CPU and flicker. Blocks are instead accumulated in a StreamingBuffer and
// drained on StreamTickMsg at a capped frame rate.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/winfunc/deepreasoning/internal/api"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches content blocks between render frames.
// Blocks are drained when either:
//  1. The batch size threshold is reached, or
//  2. Enough time has passed since the last drain (33ms for 30fps).
//
// Thread-safety: the streaming goroutine writes while the Bubble Tea loop
// drains, so all operations hold the mutex.
type StreamingBuffer struct {
	mu        sync.Mutex
	blocks    []api.ContentBlock
	lastFlush time.Time

	batchSize  int
	maxFPS     int
	minFlushMs time.Duration
}

// NewStreamingBuffer creates a buffer with default settings: batch size 15,
// 30fps cap.
func NewStreamingBuffer() *StreamingBuffer {
	const (
		defaultBatchSize = 15
		defaultMaxFPS    = 30
	)
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a buffer with custom settings.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &StreamingBuffer{
		batchSize:  batchSize,
		maxFPS:     maxFPS,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// Write adds a content block to the buffer. Called from the streaming
// goroutine.
func (sb *StreamingBuffer) Write(block api.ContentBlock) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.blocks = append(sb.blocks, block)
}

// Flush returns the accumulated blocks if a drain is due, per the size or
// time threshold. Called from the Bubble Tea loop on StreamTickMsg.
func (sb *StreamingBuffer) Flush() ([]api.ContentBlock, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if len(sb.blocks) == 0 || !sb.shouldFlushLocked() {
		return nil, false
	}
	return sb.drainLocked()
}

// ForceFlush returns all buffered blocks regardless of thresholds. Used
// when a stream completes so no trailing content is dropped.
func (sb *StreamingBuffer) ForceFlush() ([]api.ContentBlock, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if len(sb.blocks) == 0 {
		return nil, false
	}
	return sb.drainLocked()
}

func (sb *StreamingBuffer) drainLocked() ([]api.ContentBlock, bool) {
	blocks := sb.blocks
	sb.blocks = nil
	sb.lastFlush = time.Now()
	return blocks, true
}

func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if len(sb.blocks) >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

// Reset discards buffered blocks without draining. Used when a stream is
// cancelled.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.blocks = nil
	sb.lastFlush = time.Now()
}

// Pending returns the number of blocks waiting to be drained.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return len(sb.blocks)
}

// GetConfig returns the buffer configuration.
func (sb *StreamingBuffer) GetConfig() (batchSize, maxFPS int, minFlushMs time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.batchSize, sb.maxFPS, sb.minFlushMs
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd re-arms the streaming tick at 30fps.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// spinnerTickCmd re-arms the spinner tick.
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg{Time: t}
	})
}

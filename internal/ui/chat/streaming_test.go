// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"testing"
	"time"

	"github.com/winfunc/deepreasoning/internal/api"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func block(text string) api.ContentBlock {
	return api.ContentBlock{Type: api.BlockTextDelta, Text: text}
}

func TestNewStreamingBuffer(t *testing.T) {
	sb := NewStreamingBuffer()

	batchSize, maxFPS, minFlushMs := sb.GetConfig()
	if batchSize != 15 {
		t.Errorf("Expected default batch size 15, got %d", batchSize)
	}
	if maxFPS != 30 {
		t.Errorf("Expected default maxFPS 30, got %d", maxFPS)
	}
	expected := time.Duration(1000/30) * time.Millisecond
	if minFlushMs != expected {
		t.Errorf("Expected minFlushMs %v, got %v", expected, minFlushMs)
	}
}

func TestStreamingBufferWrite(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write(block("Hello"))
	sb.Write(block(" "))
	sb.Write(block("World"))

	if pending := sb.Pending(); pending != 3 {
		t.Errorf("Expected 3 pending blocks, got %d", pending)
	}
}

func TestStreamingBufferFlushBySize(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write(block("A"))
	sb.Write(block("B"))

	if _, ok := sb.Flush(); ok {
		t.Error("Should not flush before reaching batch size")
	}

	sb.Write(block("C"))

	blocks, ok := sb.Flush()
	if !ok {
		t.Fatal("Should flush after reaching batch size")
	}
	if len(blocks) != 3 {
		t.Errorf("Expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "A" || blocks[2].Text != "C" {
		t.Errorf("Blocks out of order: %v", blocks)
	}
	if pending := sb.Pending(); pending != 0 {
		t.Errorf("Expected 0 pending after flush, got %d", pending)
	}
}

func TestStreamingBufferFlushByTime(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 30)

	sb.Write(block("A"))

	if _, ok := sb.Flush(); ok {
		t.Error("Should not flush before time threshold")
	}

	time.Sleep(40 * time.Millisecond)

	blocks, ok := sb.Flush()
	if !ok {
		t.Fatal("Should flush after time threshold")
	}
	if len(blocks) != 1 || blocks[0].Text != "A" {
		t.Errorf("Unexpected blocks: %v", blocks)
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)

	sb.Write(block("tail"))

	blocks, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush should drain regardless of thresholds")
	}
	if len(blocks) != 1 || blocks[0].Text != "tail" {
		t.Errorf("Unexpected blocks: %v", blocks)
	}

	if _, ok := sb.ForceFlush(); ok {
		t.Error("ForceFlush on empty buffer should report nothing")
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.Write(block("discard"))
	sb.Reset()

	if pending := sb.Pending(); pending != 0 {
		t.Errorf("Expected 0 pending after reset, got %d", pending)
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("Reset buffer should have nothing to drain")
	}
}

func TestStreamingBufferConfigClamping(t *testing.T) {
	sb := NewStreamingBufferWithConfig(0, 200)

	batchSize, maxFPS, _ := sb.GetConfig()
	if batchSize != 15 {
		t.Errorf("Invalid batch size should fall back to 15, got %d", batchSize)
	}
	if maxFPS != 30 {
		t.Errorf("Invalid maxFPS should fall back to 30, got %d", maxFPS)
	}
}

// =============================================================================
// CANCEL MANAGER TESTS
// =============================================================================

func TestCancelManager(t *testing.T) {
	cm := newCancelManager()

	// Cancel with nothing set is a no-op.
	cm.cancel()

	called := 0
	cm.set(func() { called++ })

	cm.cancel()
	if called != 1 {
		t.Errorf("Expected 1 cancel call, got %d", called)
	}

	// Second cancel must not re-invoke.
	cm.cancel()
	if called != 1 {
		t.Errorf("Expected cancel to be one-shot, got %d calls", called)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the deepreasoning inference API.
package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// =============================================================================
// SENTINELS
// =============================================================================

// Reasoning delimiters embedded in the text channel by the server.
// Each sentinel always arrives as a single complete "text" block; it is never
// split across two delta fragments. This is a property of the upstream
// protocol, not something the client re-derives defensively.
const (
	ThinkingOpen  = "<thinking>"
	ThinkingClose = "</thinking>"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event kinds carried in the "type" field of each data payload.
const (
	EventStart   = "start"
	EventContent = "content"
	EventUsage   = "usage"
	EventError   = "error"
	EventDone    = "done"
)

// Content block kinds.
const (
	BlockText      = "text"
	BlockTextDelta = "text_delta"
)

// ContentBlock is one fragment of streamed text.
// A "text" block is a complete unit and may be a phase sentinel; a
// "text_delta" block is an incremental unit and never is.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsDelta reports whether the block is an incremental fragment.
func (b ContentBlock) IsDelta() bool {
	return b.Type == BlockTextDelta
}

// IsOpenSentinel reports whether a complete text block opens the reasoning phase.
func (b ContentBlock) IsOpenSentinel() bool {
	return b.Type == BlockText && strings.HasPrefix(b.Text, ThinkingOpen)
}

// IsCloseSentinel reports whether a complete text block closes the reasoning phase.
func (b ContentBlock) IsCloseSentinel() bool {
	return b.Type == BlockText && strings.HasSuffix(b.Text, ThinkingClose)
}

// StreamEvent is one decoded event from the response stream.
// Only the fields for the given Type are populated.
type StreamEvent struct {
	Type string `json:"type"`

	// start
	Created time.Time `json:"created,omitempty"`

	// content
	Content []ContentBlock `json:"content,omitempty"`

	// usage
	Usage *CombinedUsage `json:"usage,omitempty"`

	// error
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// =============================================================================
// USAGE TYPES
// =============================================================================

// CombinedUsage aggregates token usage reported by both upstream models.
// Costs are computed server-side; the client only displays them.
type CombinedUsage struct {
	TotalCost      string         `json:"total_cost"`
	DeepSeekUsage  DeepSeekUsage  `json:"deepseek_usage"`
	AnthropicUsage AnthropicUsage `json:"anthropic_usage"`
}

// DeepSeekUsage holds token counts for the reasoning model.
type DeepSeekUsage struct {
	InputTokens       int    `json:"input_tokens"`
	OutputTokens      int    `json:"output_tokens"`
	ReasoningTokens   int    `json:"reasoning_tokens"`
	CachedInputTokens int    `json:"cached_input_tokens"`
	TotalTokens       int    `json:"total_tokens"`
	TotalCost         string `json:"total_cost"`
}

// AnthropicUsage holds token counts for the answer model.
type AnthropicUsage struct {
	InputTokens       int    `json:"input_tokens"`
	OutputTokens      int    `json:"output_tokens"`
	CachedWriteTokens int    `json:"cached_write_tokens"`
	CachedReadTokens  int    `json:"cached_read_tokens"`
	TotalTokens       int    `json:"total_tokens"`
	TotalCost         string `json:"total_cost"`
}

// =============================================================================
// LINE PARSER
// =============================================================================

// dataPrefix marks the payload line of each SSE event. "event:" lines carry
// no information the payload does not, so only data lines drive state.
var dataPrefix = []byte("data: ")

// ParseLine decodes one logical line from the stream.
//
// Returns nil for blank separator lines, for lines without the data prefix
// (such as "event: content" framing lines), and for payloads that fail to
// decode. A malformed payload is dropped rather than aborting the stream:
// one corrupted line should not discard an otherwise valid long-running turn.
func ParseLine(line []byte) *StreamEvent {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return nil
	}
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil
	}

	var ev StreamEvent
	if err := json.Unmarshal(bytes.TrimPrefix(line, dataPrefix), &ev); err != nil {
		return nil
	}
	if ev.Type == "" {
		return nil
	}
	return &ev
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat screen of the deepreasoning
// TUI: the Bubble Tea model, its message types, keyboard bindings, and the
// streaming machinery that pumps server events into the update loop.
//
// Streaming runs in a goroutine owned by StreamRunner and crosses into the
// Bubble Tea loop through program.Send. Content blocks are written to a
// shared StreamingBuffer and drained at a capped frame rate by
// StreamTickMsg, so render frequency stays bounded no matter how fast the
// server emits deltas.
package chat

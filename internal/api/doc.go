// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the deepreasoning inference API.
//
// The API multiplexes two upstream models over a single server-sent event
// stream: a reasoning trace produced by DeepSeek and a final answer produced
// by Claude. Reasoning is delimited in the text channel itself by the
// <thinking> and </thinking> sentinels, each of which always arrives as one
// complete "text" block.
//
// # Components
//
//   - Client: request construction, streaming and non-streaming chat calls
//   - StreamReader: chunk-to-line re-assembly with carry-over buffering
//   - ParseLine: SSE data-line decoding into typed StreamEvent values
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{
//	    DeepSeekToken:  dsToken,
//	    AnthropicToken: antToken,
//	})
//	err := client.ChatStream(ctx, req, func(ev api.StreamEvent) {
//	    // events arrive strictly in stream order
//	})
package api

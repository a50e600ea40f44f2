// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChatStreamSendsTokenHeaders(t *testing.T) {
	var gotDeepSeek, gotAnthropic, gotAccept string
	var gotBody ChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeepSeek = r.Header.Get("X-DeepSeek-API-Token")
		gotAnthropic = r.Header.Get("X-Anthropic-API-Token")
		gotAccept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"done\"}\n"))
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{
		BaseURL:        srv.URL,
		DeepSeekToken:  "ds-token",
		AnthropicToken: "ant-token",
	})

	req := ChatRequest{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}
	if err := client.ChatStream(context.Background(), req, func(StreamEvent) {}); err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}

	if gotDeepSeek != "ds-token" {
		t.Errorf("X-DeepSeek-API-Token = %q", gotDeepSeek)
	}
	if gotAnthropic != "ant-token" {
		t.Errorf("X-Anthropic-API-Token = %q", gotAnthropic)
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if !gotBody.Stream {
		t.Error("stream flag not set on streaming request")
	}
	if gotBody.System != "be brief" {
		t.Errorf("system = %q", gotBody.System)
	}
}

func TestChatNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream flag set on non-streaming request")
		}
		resp := ChatResponse{
			Content: []ContentBlock{
				{Type: BlockText, Text: "<thinking>\nhmm\n</thinking>"},
				{Type: BlockText, Text: "the answer"},
			},
			CombinedUsage: CombinedUsage{TotalCost: "$0.02"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if len(resp.Content) != 2 {
		t.Fatalf("got %d content blocks, want 2", len(resp.Content))
	}
	if resp.Content[1].Text != "the answer" {
		t.Errorf("answer block = %q", resp.Content[1].Text)
	}
	if resp.CombinedUsage.TotalCost != "$0.02" {
		t.Errorf("total cost = %q", resp.CombinedUsage.TotalCost)
	}
}

func TestChatErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"bad request", http.StatusBadRequest,
			`{"error":{"message":"system prompt duplicated","type":"invalid_request_error"}}`,
			IsBadRequest},
		{"unauthorized", http.StatusUnauthorized,
			`{"error":{"message":"missing token","type":"auth_error"}}`,
			IsAuth},
		{"rate limited", http.StatusTooManyRequests, "", func(err error) bool {
			var ce *ClientError
			return errors.As(err, &ce) && ce.Type == ErrTypeRateLimited
		}},
		{"upstream failure", http.StatusBadGateway,
			`{"error":{"message":"deepseek unavailable","type":"upstream_error"}}`,
			func(err error) bool {
				var ce *ClientError
				return errors.As(err, &ce) && ce.Type == ErrTypeUpstream
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
			_, err := client.Chat(context.Background(), ChatRequest{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %v failed classification check", err)
			}
		})
	}
}

func TestChatUnreachable(t *testing.T) {
	// Port 1 is never listening.
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Chat(context.Background(), ChatRequest{})
	if !IsUnreachable(err) {
		t.Errorf("error = %v, want unreachable", err)
	}
}

func TestChatStreamCancelDuringConnect(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hold the connection open until the client gives up.
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	err := client.ChatStream(ctx, ChatRequest{}, func(StreamEvent) {})

	if err == nil {
		t.Fatal("expected error after cancel")
	}
	// The cancel must stay visible through the chain so callers can
	// tell a user abort from a real timeout.
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not unwrap to context.Canceled", err)
	}
	if !IsTimeout(err) {
		t.Errorf("error %v not classified as timeout type", err)
	}
}

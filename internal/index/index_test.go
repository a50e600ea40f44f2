// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/winfunc/deepreasoning/internal/model"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func buildChats() []*model.Chat {
	chat := model.NewChat()
	chat.AddUserMessage("How do sailboats work?")
	chat.ApplyAssistantTurn(model.TurnSnapshot{
		Thinking: "lift on the sail acts like a wing",
		Content:  "Sailboats harness wind via the sail.",
	})

	other := model.NewChat()
	other.AddUserMessage("Recipe for sourdough bread")
	other.ApplyAssistantTurn(model.TurnSnapshot{
		Content: "Mix flour, water, and starter.",
	})

	return []*model.Chat{chat, other}
}

func TestRebuildAndCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Rebuild(ctx, buildChats()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	n, err := idx.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Errorf("indexed %d messages, want 4", n)
	}

	// Rebuild replaces rather than accumulates.
	if err := idx.Rebuild(ctx, buildChats()[:1]); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	n, _ = idx.Count(ctx)
	if n != 2 {
		t.Errorf("after rebuild indexed %d messages, want 2", n)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	if err := idx.Rebuild(ctx, buildChats()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search(ctx, "SAILBOATS", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.ChatTitle == "" || r.ChatID == "" {
			t.Errorf("result missing chat context: %+v", r)
		}
	}
}

func TestSearchMatchesThinking(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	if err := idx.Rebuild(ctx, buildChats()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search(ctx, "like a wing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (reasoning text must be searchable)", len(results))
	}
	if results[0].Role != "assistant" {
		t.Errorf("result role = %q", results[0].Role)
	}
}

func TestSearchEscapesLikeMetacharacters(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chat := model.NewChat()
	chat.AddUserMessage("literal percent: 100% done")
	if err := idx.Rebuild(ctx, []*model.Chat{chat}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search(ctx, "100%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}

	// A bare % must not act as a wildcard matching everything.
	results, err = idx.Search(ctx, "zzz%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("wildcard leaked: got %d results, want 0", len(results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Search(context.Background(), "   ", 10); err != ErrInvalidQuery {
		t.Errorf("Search(blank) = %v, want ErrInvalidQuery", err)
	}
}

func TestClosedIndex(t *testing.T) {
	idx := newTestIndex(t)
	idx.Close()

	if err := idx.Rebuild(context.Background(), nil); err != ErrClosed {
		t.Errorf("Rebuild after close = %v, want ErrClosed", err)
	}
	if _, err := idx.Search(context.Background(), "x", 10); err != ErrClosed {
		t.Errorf("Search after close = %v, want ErrClosed", err)
	}
}

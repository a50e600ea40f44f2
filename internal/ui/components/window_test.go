// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"testing"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

func testWindow(t *testing.T, count int) *MessageWindow {
	t.Helper()
	w := NewMessageWindow(styles.NewThemeForMode(true))
	// Markdown rendering is not under test and makes heights unpredictable.
	w.renderer.Markdown = false
	w.SetSize(80, 10)

	messages := make([]*model.Message, 0, count)
	for i := 0; i < count; i++ {
		messages = append(messages, model.NewUserMessage(fmt.Sprintf("message %d", i)))
	}
	w.SetMessages(messages)
	return w
}

func TestWindowOffsetsArePrefixSums(t *testing.T) {
	w := testWindow(t, 50)

	if w.offsets[0] != 0 {
		t.Errorf("offsets[0] = %d, want 0", w.offsets[0])
	}
	for i := range w.heights {
		if got := w.offsets[i+1] - w.offsets[i]; got != w.heights[i] {
			t.Errorf("offset delta at row %d = %d, want height %d", i, got, w.heights[i])
		}
	}
	if w.TotalHeight() != w.offsets[len(w.offsets)-1] {
		t.Errorf("TotalHeight = %d, want %d", w.TotalHeight(), w.offsets[len(w.offsets)-1])
	}
}

func TestWindowDistantRowsStayEstimated(t *testing.T) {
	w := testWindow(t, 100)
	w.GotoTop()

	_, end := w.VisibleRange()
	if end >= 100 {
		t.Fatalf("visible range covers all rows, end = %d", end)
	}

	// A row well beyond the window keeps its estimated height.
	far := end + 10
	if w.measured[far] {
		t.Errorf("row %d measured, want estimated", far)
	}
	if w.heights[far] != estimatedRowHeight {
		t.Errorf("heights[%d] = %d, want estimate %d", far, w.heights[far], estimatedRowHeight)
	}
}

func TestWindowMeasureReplacesEstimate(t *testing.T) {
	w := testWindow(t, 100)
	w.GotoTop()

	start, end := w.VisibleRange()
	for i := start; i < end; i++ {
		if !w.measured[i] {
			t.Errorf("visible row %d not measured", i)
		}
	}
}

func TestRowAt(t *testing.T) {
	w := testWindow(t, 30)

	for i := range w.heights {
		if got := w.rowAt(w.offsets[i]); got != i {
			t.Errorf("rowAt(offset of %d) = %d", i, got)
		}
		if got := w.rowAt(w.offsets[i+1] - 1); got != i {
			t.Errorf("rowAt(last line of %d) = %d", i, got)
		}
	}
}

func TestVisibleRangeOverscan(t *testing.T) {
	w := testWindow(t, 100)
	w.GotoTop()

	start, end := w.VisibleRange()
	if start != 0 {
		t.Errorf("start at top = %d, want 0", start)
	}
	if end == 100 {
		t.Error("entire list materialized at top")
	}

	w.GotoBottom()
	_, end = w.VisibleRange()
	if end != 100 {
		t.Errorf("end at bottom = %d, want 100", end)
	}
}

func TestCacheEvictsRowsOutsideWindow(t *testing.T) {
	w := testWindow(t, 100)
	w.GotoTop()

	topID := w.messages[0].ID
	if _, ok := w.cache[topID]; !ok {
		t.Fatal("first row not cached while visible")
	}

	w.GotoBottom()
	if _, ok := w.cache[topID]; ok {
		t.Error("first row still cached after scrolling to bottom")
	}

	start, end := w.VisibleRange()
	for i := start; i < end; i++ {
		if _, ok := w.cache[w.messages[i].ID]; !ok {
			t.Errorf("visible row %d missing from cache", i)
		}
	}
}

func TestRowHashTracksContent(t *testing.T) {
	msg := model.NewUserMessage("hello")
	before := rowHash(msg)

	if rowHash(msg) != before {
		t.Error("hash changed without mutation")
	}

	msg.Content = "hello!"
	if rowHash(msg) == before {
		t.Error("hash unchanged after content mutation")
	}

	msg.Content = "hello"
	msg.Thinking = "trace"
	if rowHash(msg) == before {
		t.Error("hash unchanged after thinking mutation")
	}
}

func TestUpdateLastRerenders(t *testing.T) {
	w := testWindow(t, 3)
	w.GotoBottom()

	last := w.messages[2]
	before := w.cache[last.ID]

	last.Content = "message 2 with considerably more text appended to it"
	w.UpdateLast()

	after := w.cache[last.ID]
	if after.text == before.text {
		t.Error("cached render not refreshed after mutation")
	}
	if after.hash == before.hash {
		t.Error("cached hash not refreshed after mutation")
	}
}

func TestScrollToBottomCoalesces(t *testing.T) {
	w := testWindow(t, 50)

	w.RequestScrollToBottom()
	w.RequestScrollToBottom()
	w.RequestScrollToBottom()

	if !w.ScrollPending() {
		t.Fatal("no scroll pending after requests")
	}

	w.FlushScroll()
	if w.ScrollPending() {
		t.Error("scroll still pending after flush")
	}
	if !w.AtBottom() {
		t.Error("not at bottom after flush")
	}
	if !w.AutoScrollEnabled() {
		t.Error("auto-scroll not engaged after flush")
	}

	// A flush without a request is a no-op.
	w.ScrollUp(5)
	offset := w.viewport.YOffset
	w.FlushScroll()
	if w.viewport.YOffset != offset {
		t.Error("flush without pending request moved the viewport")
	}
}

func TestAutoScrollDisengagesOnScrollUp(t *testing.T) {
	w := testWindow(t, 50)
	w.GotoBottom()

	if !w.AutoScrollEnabled() {
		t.Fatal("auto-scroll off at bottom")
	}

	w.ScrollUp(10)
	if w.AutoScrollEnabled() {
		t.Error("auto-scroll still on after scrolling away")
	}

	w.GotoBottom()
	if !w.AutoScrollEnabled() {
		t.Error("auto-scroll not re-engaged by GotoBottom")
	}
}

func TestAutoScrollSurvivesNearBottom(t *testing.T) {
	w := testWindow(t, 50)
	w.GotoBottom()

	// Within the threshold the follow flag stays on.
	w.ScrollUp(bottomThreshold)
	if !w.AutoScrollEnabled() {
		t.Error("auto-scroll dropped within bottom threshold")
	}
}

func TestResizeInvalidatesMeasurements(t *testing.T) {
	w := testWindow(t, 20)
	w.GotoBottom()

	w.SetSize(40, 10)
	if len(w.cache) == 0 {
		t.Skip("nothing re-materialized at new size")
	}
	for id, row := range w.cache {
		if row.text == "" {
			t.Errorf("cached row %s empty after resize", id)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the deepreasoning TUI.
package components

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// =============================================================================
// MESSAGE WINDOW - virtualized scrollable message area
// =============================================================================

const (
	// estimatedRowHeight is assumed for rows that have never been rendered.
	// Once a row is materialized its measured height replaces the estimate
	// and every offset below it shifts accordingly.
	estimatedRowHeight = 4

	// overscanRows is how many rows beyond the visible range are
	// materialized so small scrolls don't hit unrendered gaps.
	overscanRows = 3

	// bottomThreshold is how close (in lines) the viewport bottom must be
	// to the content bottom for auto-scroll to stay engaged.
	bottomThreshold = 2
)

// renderedRow is a cached render of one message.
type renderedRow struct {
	hash   string
	text   string
	height int
}

// MessageWindow maps the unbounded message list onto a bounded visible
// window. Row heights start as estimates and are replaced by measured
// heights as rows render; offsets are recomputed on each change. Rendered
// rows are cached by content hash and recycled while their message is
// unchanged, and evicted once they leave the window.
type MessageWindow struct {
	viewport viewport.Model
	theme    *styles.Theme
	renderer *MessageRenderer

	messages []*model.Message
	width    int
	height   int
	ready    bool

	// heights[i] is the measured height of row i, or the estimate if the
	// row has not been materialized yet.
	heights  []int
	measured []bool
	// offsets[i] is the line offset of row i; offsets[len] is total height.
	offsets []int

	cache map[string]renderedRow

	autoScroll    bool
	scrollPending bool
}

// NewMessageWindow creates an empty message window.
func NewMessageWindow(theme *styles.Theme) *MessageWindow {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return &MessageWindow{
		viewport:   vp,
		theme:      theme,
		renderer:   NewMessageRenderer(theme),
		width:      80,
		height:     20,
		autoScroll: true,
		cache:      make(map[string]renderedRow),
	}
}

// SetSize updates the window dimensions. Measured heights depend on wrap
// width, so a resize invalidates them all.
func (w *MessageWindow) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.viewport.Width = width
	w.viewport.Height = height
	w.renderer.SetWidth(width - 2)
	w.ready = true

	w.invalidate()
}

// SetShowThinking toggles reasoning trace rendering. The toggle changes
// rendered output without changing message content, so the cache and
// measurements are invalidated wholesale.
func (w *MessageWindow) SetShowThinking(show bool) {
	if w.renderer.ShowThinking == show {
		return
	}
	w.renderer.ShowThinking = show
	w.invalidate()
}

// SetMarkdown toggles glamour rendering of assistant answers.
func (w *MessageWindow) SetMarkdown(enabled bool) {
	if w.renderer.Markdown == enabled {
		return
	}
	w.renderer.Markdown = enabled
	w.invalidate()
}

// ShowThinking reports whether reasoning traces render.
func (w *MessageWindow) ShowThinking() bool {
	return w.renderer.ShowThinking
}

// invalidate drops all cached renders and measurements and re-materializes.
func (w *MessageWindow) invalidate() {
	w.cache = make(map[string]renderedRow)
	for i := range w.measured {
		w.measured[i] = false
		w.heights[i] = estimatedRowHeight
	}
	w.recomputeOffsets()
	w.materialize()
}

// SetMessages replaces the displayed message list wholesale.
func (w *MessageWindow) SetMessages(messages []*model.Message) {
	w.messages = messages

	w.heights = make([]int, len(messages))
	w.measured = make([]bool, len(messages))
	for i := range w.heights {
		w.heights[i] = estimatedRowHeight
	}
	w.recomputeOffsets()
	w.materialize()

	if w.autoScroll {
		w.RequestScrollToBottom()
	}
}

// UpdateLast re-renders after the last message mutated in place. Its
// cached row is invalidated by the content hash changing.
func (w *MessageWindow) UpdateLast() {
	if n := len(w.messages); n > 0 {
		w.measured[n-1] = false
	}
	w.materialize()

	if w.autoScroll {
		w.RequestScrollToBottom()
	}
}

// =============================================================================
// OFFSET MODEL
// =============================================================================

// recomputeOffsets rebuilds the prefix-sum offset table from heights.
func (w *MessageWindow) recomputeOffsets() {
	w.offsets = make([]int, len(w.heights)+1)
	for i, h := range w.heights {
		w.offsets[i+1] = w.offsets[i] + h
	}
}

// TotalHeight returns the modeled height of all rows in lines.
func (w *MessageWindow) TotalHeight() int {
	if len(w.offsets) == 0 {
		return 0
	}
	return w.offsets[len(w.offsets)-1]
}

// rowAt returns the index of the row containing the given line offset.
func (w *MessageWindow) rowAt(line int) int {
	lo, hi := 0, len(w.heights)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if w.offsets[mid] <= line {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// VisibleRange returns the materialized row range [start, end) for the
// current scroll position, including overscan.
func (w *MessageWindow) VisibleRange() (int, int) {
	if len(w.messages) == 0 {
		return 0, 0
	}

	top := w.viewport.YOffset
	bottom := top + w.height

	start := w.rowAt(top) - overscanRows
	if start < 0 {
		start = 0
	}
	end := w.rowAt(bottom) + 1 + overscanRows
	if end > len(w.messages) {
		end = len(w.messages)
	}
	return start, end
}

// =============================================================================
// MATERIALIZATION
// =============================================================================

// materialize renders the windowed rows into the viewport. Rows outside
// the window are represented by blank filler lines of their modeled
// height, so scroll geometry stays correct without rendering them.
func (w *MessageWindow) materialize() {
	if len(w.messages) == 0 {
		w.viewport.SetContent("")
		return
	}

	start, end := w.VisibleRange()

	var sb strings.Builder
	if above := w.offsets[start]; above > 0 {
		sb.WriteString(strings.Repeat("\n", above))
	}

	changed := false
	for i := start; i < end; i++ {
		row := w.renderRow(i)
		sb.WriteString(row.text)
		sb.WriteString("\n")

		if !w.measured[i] || w.heights[i] != row.height {
			w.heights[i] = row.height
			w.measured[i] = true
			changed = true
		}
	}
	if changed {
		w.recomputeOffsets()
	}

	if below := w.TotalHeight() - w.offsets[end]; below > 0 {
		sb.WriteString(strings.Repeat("\n", below-1))
	}

	w.viewport.SetContent(sb.String())
	w.evictOutside(start, end)
}

// renderRow returns the cached render for row i, re-rendering when the
// message content changed.
func (w *MessageWindow) renderRow(i int) renderedRow {
	msg := w.messages[i]
	hash := rowHash(msg)

	if row, ok := w.cache[msg.ID]; ok && row.hash == hash {
		return row
	}

	text := w.renderer.Render(msg)
	row := renderedRow{
		hash:   hash,
		text:   text,
		height: strings.Count(text, "\n") + 2, // trailing separator line
	}
	w.cache[msg.ID] = row
	return row
}

// evictOutside drops cached rows that left the window.
func (w *MessageWindow) evictOutside(start, end int) {
	inWindow := make(map[string]bool, end-start)
	for i := start; i < end; i++ {
		inWindow[w.messages[i].ID] = true
	}
	for id := range w.cache {
		if !inWindow[id] {
			delete(w.cache, id)
		}
	}
}

// rowHash fingerprints the render-relevant fields of a message.
func rowHash(msg *model.Message) string {
	h := sha256.New()
	h.Write([]byte(msg.Role))
	h.Write([]byte{0})
	h.Write([]byte(msg.Content))
	h.Write([]byte{0})
	h.Write([]byte(msg.Thinking))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// =============================================================================
// SCROLLING
// =============================================================================

// RequestScrollToBottom schedules a scroll-to-bottom for the next frame.
// Repeated requests before the frame collapse into one.
func (w *MessageWindow) RequestScrollToBottom() {
	w.scrollPending = true
}

// FlushScroll performs the pending scroll, if any. Called once per frame.
func (w *MessageWindow) FlushScroll() {
	if !w.scrollPending {
		return
	}
	w.scrollPending = false
	w.viewport.GotoBottom()
	w.materialize()
	w.viewport.GotoBottom()
	w.autoScroll = true
}

// ScrollPending reports whether a scroll-to-bottom is queued.
func (w *MessageWindow) ScrollPending() bool {
	return w.scrollPending
}

// AutoScrollEnabled reports whether the window follows new content.
func (w *MessageWindow) AutoScrollEnabled() bool {
	return w.autoScroll
}

// recomputeAutoScroll re-evaluates the follow flag from the current scroll
// position. Runs after every scroll event.
func (w *MessageWindow) recomputeAutoScroll() {
	maxOffset := w.TotalHeight() - w.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	w.autoScroll = maxOffset-w.viewport.YOffset <= bottomThreshold
}

// ScrollUp scrolls up by the given number of lines.
func (w *MessageWindow) ScrollUp(lines int) {
	w.viewport.SetYOffset(w.viewport.YOffset - lines)
	w.recomputeAutoScroll()
	w.materialize()
}

// ScrollDown scrolls down by the given number of lines.
func (w *MessageWindow) ScrollDown(lines int) {
	w.viewport.SetYOffset(w.viewport.YOffset + lines)
	w.recomputeAutoScroll()
	w.materialize()
}

// PageUp scrolls up by one page.
func (w *MessageWindow) PageUp() {
	w.ScrollUp(w.height)
}

// PageDown scrolls down by one page.
func (w *MessageWindow) PageDown() {
	w.ScrollDown(w.height)
}

// GotoTop jumps to the first message.
func (w *MessageWindow) GotoTop() {
	w.viewport.GotoTop()
	w.recomputeAutoScroll()
	w.materialize()
}

// GotoBottom jumps to the last message and re-engages follow mode.
func (w *MessageWindow) GotoBottom() {
	w.viewport.GotoBottom()
	w.autoScroll = true
	w.materialize()
}

// AtBottom reports whether the viewport is at the content bottom.
func (w *MessageWindow) AtBottom() bool {
	return w.viewport.AtBottom()
}

// =============================================================================
// BUBBLETEA INTEGRATION
// =============================================================================

// Update handles scroll-related messages.
func (w *MessageWindow) Update(msg tea.Msg) (*MessageWindow, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			w.ScrollUp(3)
		case tea.MouseButtonWheelDown:
			w.ScrollDown(3)
		}
	}
	return w, nil
}

// View renders the window.
func (w *MessageWindow) View() string {
	if !w.ready {
		return "Initializing..."
	}
	return w.viewport.View()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders chat messages into styled terminal rows. Assistant
// answers render through glamour when markdown is enabled; reasoning traces
// render as a muted block above the answer.
type MessageRenderer struct {
	theme *styles.Theme
	width int

	// ShowThinking controls whether reasoning traces are rendered.
	ShowThinking bool
	// Markdown enables glamour rendering of assistant answers.
	Markdown bool

	markdown *glamour.TermRenderer
}

// NewMessageRenderer creates a renderer with markdown and thinking enabled.
func NewMessageRenderer(theme *styles.Theme) *MessageRenderer {
	r := &MessageRenderer{
		theme:        theme,
		width:        80,
		ShowThinking: true,
		Markdown:     true,
	}
	r.rebuildMarkdown()
	return r
}

// SetWidth updates the wrap width. Glamour bakes the word-wrap width into
// its renderer, so it is rebuilt here.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.rebuildMarkdown()
}

func (r *MessageRenderer) rebuildMarkdown() {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.width-8),
	)
	if err != nil {
		r.markdown = nil
		return
	}
	r.markdown = renderer
}

// Render renders one message.
func (r *MessageRenderer) Render(msg *model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return r.renderUser(msg)
	case model.RoleAssistant:
		return r.renderAssistant(msg)
	default:
		return r.renderPlain(msg)
	}
}

// ==========================================================================
// USER MESSAGES - blue bubble, pushed right
// ==========================================================================

func (r *MessageRenderer) renderUser(msg *model.Message) string {
	content := msg.Content
	if content == "" {
		content = "..."
	}

	maxContentWidth := r.width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, r.width-8)

	bubble := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		Render(wrapped)

	label := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("you")

	leftMargin := r.width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	margin := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(lipgloss.Right,
		margin.Render(label),
		margin.Render(bubble))
}

// ==========================================================================
// ASSISTANT MESSAGES - thinking block above the answer
// ==========================================================================

func (r *MessageRenderer) renderAssistant(msg *model.Message) string {
	var parts []string

	label := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("assistant")
	parts = append(parts, label)

	if r.ShowThinking && msg.HasThinking() {
		parts = append(parts, r.renderThinking(msg.Thinking))
	}

	content := msg.Content
	if content == "" && !msg.HasThinking() {
		content = "..."
	}
	if content != "" {
		parts = append(parts, r.renderAnswer(content))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderThinking renders the reasoning trace as a muted left-bordered block.
func (r *MessageRenderer) renderThinking(thinking string) string {
	header := r.theme.ThinkingHeader.Render("thinking")

	maxWidth := r.width - 8
	if maxWidth < 20 {
		maxWidth = 20
	}
	body := r.theme.ThinkingText.Render(wordWrap(strings.TrimSpace(thinking), maxWidth))

	return r.theme.ThinkingBlock.Render(header + "\n" + body)
}

// renderAnswer renders the visible answer, through glamour when enabled.
func (r *MessageRenderer) renderAnswer(content string) string {
	if r.Markdown && r.markdown != nil {
		if out, err := r.markdown.Render(content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}

	// Plain fallback: wrap and highlight fenced code blocks only.
	maxWidth := r.width - 8
	if maxWidth < 20 {
		maxWidth = 20
	}
	return ParseCodeBlocks(wordWrap(content, maxWidth), r.width-4)
}

func (r *MessageRenderer) renderPlain(msg *model.Message) string {
	return lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(wordWrap(msg.Content, r.width-4))
}

// =============================================================================
// WRAP HELPERS
// =============================================================================

// wordWrap wraps text at word boundaries using display width, so CJK and
// other wide runes wrap where they appear on screen, not at byte counts.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, word := range strings.Fields(line) {
			w := runewidth.StringWidth(word)
			if currentWidth > 0 && currentWidth+1+w > width {
				out = append(out, current.String())
				current.Reset()
				currentWidth = 0
			}
			if currentWidth > 0 {
				current.WriteByte(' ')
				currentWidth++
			}
			// A single word longer than the width is hard-broken.
			for w > width {
				truncated := runewidth.Truncate(word, width, "")
				out = append(out, truncated)
				word = strings.TrimPrefix(word, truncated)
				w = runewidth.StringWidth(word)
			}
			current.WriteString(word)
			currentWidth += w
		}
		if current.Len() > 0 {
			out = append(out, current.String())
		}
	}
	return strings.Join(out, "\n")
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View implements tea.Model.
// Layout: header (1) + messages (window) + input (3) + status (2).
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.showChatList {
		return m.renderChatList()
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.statusBar.View()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.window.View(),
		input,
		status,
	)
}

// renderHeader renders the one-line title bar.
func (m Model) renderHeader() string {
	title := model.DefaultTitle
	if chat := m.session.ActiveChat(); chat != nil {
		title = chat.Title
	}

	left := m.theme.HeaderTitle.Render("deepreasoning")
	right := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(title)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.Header.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + right)
}

// renderInput renders the bordered input area, with the spinner and any
// error line folded in.
func (m Model) renderInput() string {
	var prefix string
	switch m.state {
	case StateStreaming:
		prefix = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Render(m.spinnerView() + " ")
	case StateError:
		prefix = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Render("! ")
	}

	line := prefix + m.input.View()
	if m.state == StateError && m.lastError != "" {
		errLine := m.theme.ErrorMessage.Render(truncateLine(m.lastError, m.width-6))
		line = errLine + "\n" + line
	}

	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}

// =============================================================================
// CHAT LIST OVERLAY
// =============================================================================

// renderChatList renders the stored chat picker as a full-screen overlay.
func (m Model) renderChatList() string {
	chats := m.session.Chats()
	active := m.session.ActiveChat()

	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Chats"))
	sb.WriteString("\n\n")

	if len(chats) == 0 {
		sb.WriteString(m.theme.ChatMeta.Render("no chats yet"))
	}

	for i, chat := range chats {
		marker := "  "
		if active != nil && chat.ID == active.ID {
			marker = "* "
		}

		line := fmt.Sprintf("%s%s  %s",
			marker,
			truncateLine(chat.Title, 30),
			m.theme.ChatMeta.Render(fmt.Sprintf("%d messages, %s",
				chat.MessageCount(), chat.UpdatedAt.Format("Jan 2 15:04"))))

		if i == m.chatListIndex {
			line = m.theme.ChatItemSelected.Render(line)
		} else {
			line = m.theme.ChatItem.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.ShortcutDesc.Render("enter select  C-x delete  esc close"))

	return m.theme.ChatList.
		Width(m.width - 4).
		Height(m.height - 2).
		Render(sb.String())
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders the keyboard reference.
func (m Model) renderHelpOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n\n")

	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.ShortcutKey.Render(padRight(help.Key, 12)),
				m.theme.ShortcutDesc.Render(help.Desc)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.ShortcutDesc.Render("press ? or esc to close"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width - 4).
		Render(sb.String())
}

// =============================================================================
// TEXT HELPERS
// =============================================================================

// truncateLine cuts s to max runes, appending an ellipsis when cut.
func truncateLine(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/winfunc/deepreasoning/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.window.Update(msg)
		return m, nil

	case StreamStartMsg:
		// The runner stamps the start; the status bar timer was armed at
		// submit. Nothing else to do.
		return m, nil

	case StreamTickMsg:
		return m.handleStreamTick()

	case SpinnerTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		return m.advanceSpinner(msg.Time), spinnerTickCmd()

	case ReasoningDoneMsg:
		if m.staleStream(msg.ChatID) {
			return m, nil
		}
		m.statusBar.FinishReasoning()
		return m, nil

	case StreamUsageMsg:
		if m.staleStream(msg.ChatID) {
			return m, nil
		}
		usage := msg.Usage
		m.statusBar.SetUsage(&usage)
		return m, nil

	case StreamErrorMsg:
		if m.staleStream(msg.ChatID) {
			return m, nil
		}
		m.lastError = msg.Message
		return m, nil

	case StreamCompleteMsg:
		// A completion from an abandoned stream must not flip state or
		// cancel the context of a stream started since.
		if m.staleStream(msg.ChatID) {
			return m, nil
		}
		return m.finishStream(msg.Err), nil

	case NewChatMsg:
		return m.handleNewChat(), nil

	case SelectChatMsg:
		return m.handleSelectChat(msg.ID), nil

	case DeleteChatMsg:
		return m.handleDeleteChat(msg.ID), nil

	case ConfigReloadedMsg:
		m.systemPrompt = msg.SystemPrompt
		m.verbose = msg.Verbose
		m.window.SetShowThinking(msg.ShowThinking)
		m.window.SetMarkdown(msg.Markdown)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleStreamTick drains the streaming buffer and re-arms the tick while
// the stream is alive.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if blocks, ok := m.buffer.Flush(); ok {
		m = m.drainBlocks(blocks)
		m.window.FlushScroll()
	}
	return m, streamTickCmd()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The chat list overlay captures navigation keys while open.
	if m.showChatList {
		return m.handleChatListKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m = m.stopStreaming()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming {
			return m.stopStreaming(), nil
		}
		if m.state == StateError {
			m.state = StateReady
			m.lastError = ""
			m.statusBar.SetStatus(components.StatusReady)
			return m, nil
		}
		// Esc with nothing in flight clears the input.
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit(strings.TrimSpace(m.input.Value()))

	case key.Matches(msg, m.keyMap.NewChat):
		return m.handleNewChat(), nil

	case key.Matches(msg, m.keyMap.ChatList):
		m.showChatList = true
		m.chatListIndex = 0
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleThink):
		m.window.SetShowThinking(!m.window.ShowThinking())
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		// Only when the input is empty, so "?" stays typeable.
		if m.input.Value() == "" {
			m.showHelp = true
			return m, nil
		}

	case key.Matches(msg, m.keyMap.Up):
		m.window.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.window.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.window.PageUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.window.PageDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.window.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.window.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleChatListKey drives the chat list overlay.
func (m Model) handleChatListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chats := m.session.Chats()

	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keyMap.ChatList):
		m.showChatList = false
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.chatListIndex > 0 {
			m.chatListIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.chatListIndex < len(chats)-1 {
			m.chatListIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if m.chatListIndex < len(chats) {
			m = m.handleSelectChat(chats[m.chatListIndex].ID)
		}
		m.showChatList = false
		return m, nil

	case key.Matches(msg, m.keyMap.DeleteChat):
		if m.chatListIndex < len(chats) {
			m = m.handleDeleteChat(chats[m.chatListIndex].ID)
			if m.chatListIndex >= m.session.ChatCount() && m.chatListIndex > 0 {
				m.chatListIndex--
			}
		}
		return m, nil
	}
	return m, nil
}

// =============================================================================
// CHAT MANAGEMENT
// =============================================================================

// handleNewChat starts a fresh chat. A stream in flight is cancelled and
// untracked, so its late completion message is dropped on arrival.
func (m Model) handleNewChat() Model {
	m = m.stopStreaming()
	m.streamChatID = ""
	m.session.CreateChat()
	m.liveMsg = nil
	m.turn = nil
	m.state = StateReady
	m.lastError = ""
	m.statusBar.SetStatus(components.StatusReady)
	m.syncWindow()
	m.window.FlushScroll()
	return m
}

func (m Model) handleSelectChat(id string) Model {
	m = m.stopStreaming()
	m.streamChatID = ""
	if err := m.session.SelectChat(id); err != nil {
		m.lastError = err.Error()
		return m
	}
	m.liveMsg = nil
	m.turn = nil
	m.state = StateReady
	m.syncWindow()
	m.window.GotoBottom()
	return m
}

func (m Model) handleDeleteChat(id string) Model {
	if err := m.session.DeleteChat(id); err != nil {
		m.lastError = err.Error()
		return m
	}
	m.syncWindow()
	m.window.FlushScroll()
	return m
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/config"
	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/session"
	"github.com/winfunc/deepreasoning/internal/ui/components"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat screen.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming response
	StateError                  // Showing an error
)

// spinnerFrames is the ASCII-safe streaming spinner.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// =============================================================================
// CHAT MODEL
// =============================================================================

// runnerHandle shares the stream runner between the program-owned model
// copies and the wiring code that creates the runner after the program
// exists. Bubble Tea copies the model by value, so the handle is a pointer.
type runnerHandle struct {
	runner *StreamRunner
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	state State

	theme  *styles.Theme
	width  int
	height int

	// Domain
	session *session.Manager
	client  *api.Client

	// Per-request configuration
	systemPrompt string
	verbose      bool

	// Active streaming turn. Both are nil outside StateStreaming.
	turn    *model.Turn
	liveMsg *model.Message

	// Chat the in-flight stream belongs to. Empty when no stream is
	// tracked; lifecycle messages stamped with any other ID are stale
	// and dropped.
	streamChatID string

	// Streaming machinery
	buffer    *StreamingBuffer
	cancelMgr *cancelManager
	handle    *runnerHandle

	// UI components
	window    *components.MessageWindow
	statusBar *components.StatusBar
	input     textinput.Model
	keyMap    KeyMap

	spinnerFrame int

	// Chat list overlay
	showChatList  bool
	chatListIndex int

	// Help overlay
	showHelp bool

	lastError string
}

// New creates a chat model wired to a session manager and API client.
func New(theme *styles.Theme, mgr *session.Manager, client *api.Client, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask anything..."
	ti.CharLimit = 8192
	ti.Focus()

	window := components.NewMessageWindow(theme)
	statusBar := components.NewStatusBar(theme)

	m := Model{
		state:     StateReady,
		theme:     theme,
		session:   mgr,
		client:    client,
		buffer:    NewStreamingBuffer(),
		cancelMgr: newCancelManager(),
		handle:    &runnerHandle{},
		window:    window,
		statusBar: statusBar,
		input:     ti,
		keyMap:    DefaultKeyMap(),
	}

	if cfg != nil {
		m.systemPrompt = cfg.Chat.SystemPrompt
		m.verbose = cfg.Chat.Verbose
		window.SetShowThinking(cfg.UI.ShowThinking)
		window.SetMarkdown(cfg.UI.Markdown)
	}
	if client != nil {
		statusBar.ServerURL = client.GetConfig().BaseURL
	}

	m.syncWindow()
	return m
}

// AttachRunner binds the stream runner once the Bubble Tea program exists.
// Must be called before the first submit.
func (m Model) AttachRunner(runner *StreamRunner) {
	m.handle.runner = runner
}

// Buffer exposes the streaming buffer for runner construction.
func (m Model) Buffer() *StreamingBuffer {
	return m.buffer
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// IsStreaming reports whether a response is currently streaming.
func (m Model) IsStreaming() bool {
	return m.state == StateStreaming
}

// =============================================================================
// STREAM LIFECYCLE
// =============================================================================

// submit sends the input content as a user message and starts streaming.
// Rejected outright while a stream is in flight; the input keeps its text
// so nothing the user typed is lost.
func (m Model) submit(content string) (Model, tea.Cmd) {
	if m.state == StateStreaming {
		return m, nil
	}
	if content == "" {
		return m, nil
	}
	if m.handle.runner == nil || m.client == nil {
		m.lastError = "not connected"
		m.state = StateError
		return m, nil
	}

	chat := m.session.EnsureActive()
	m.session.AddUserMessage(content)

	m.turn = model.NewTurn()
	m.liveMsg = model.NewAssistantMessage()
	m.lastError = ""
	m.input.Reset()
	m.syncWindow()
	m.window.RequestScrollToBottom()

	req := api.ChatRequest{
		Stream:   true,
		Verbose:  m.verbose,
		System:   m.systemPrompt,
		Messages: chat.ToWireMessages(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)
	m.buffer.Reset()

	runner := m.handle.runner
	chatID := chat.ID
	m.streamChatID = chatID
	go runner.Run(ctx, chatID, req)

	m.state = StateStreaming
	m.statusBar.StartReasoning()

	return m, tea.Batch(streamTickCmd(), spinnerTickCmd())
}

// stopStreaming cancels the in-flight request. Completion still arrives as
// a StreamCompleteMsg carrying the cancellation error.
func (m Model) stopStreaming() Model {
	if m.state != StateStreaming {
		return m
	}
	m.cancelMgr.cancel()
	return m
}

// drainBlocks feeds buffered content into the active turn and refreshes
// the live assistant message.
func (m Model) drainBlocks(blocks []api.ContentBlock) Model {
	if m.turn == nil || m.liveMsg == nil {
		return m
	}
	for _, block := range blocks {
		m.turn.Feed(block)
	}
	snap := m.turn.Snapshot()
	m.liveMsg.Content = snap.Content
	m.liveMsg.Thinking = snap.Thinking
	m.window.UpdateLast()
	return m
}

// finishStream folds the turn into the conversation and resets state.
func (m Model) finishStream(err error) Model {
	if blocks, ok := m.buffer.ForceFlush(); ok {
		m = m.drainBlocks(blocks)
	}

	if m.turn != nil {
		snap := m.turn.Snapshot()
		if snap.Content != "" || snap.Thinking != "" {
			m.session.ApplyAssistantTurn(snap)
		}
	}
	m.turn = nil
	m.liveMsg = nil
	m.streamChatID = ""
	m.cancelMgr.cancel()

	if err != nil && !isCancellation(err) {
		m.lastError = err.Error()
		m.state = StateError
		m.statusBar.SetStatus(components.StatusError)
	} else {
		m.state = StateReady
		m.statusBar.SetStatus(components.StatusReady)
	}

	// The stream tick stops re-arming once the state leaves streaming,
	// so the queued scroll must be flushed here, not on the next tick.
	m.syncWindow()
	m.window.RequestScrollToBottom()
	m.window.FlushScroll()
	return m
}

// staleStream reports whether a lifecycle message stamped with chatID
// belongs to a stream the model no longer tracks.
func (m Model) staleStream(chatID string) bool {
	return chatID != m.streamChatID
}

// isCancellation reports whether err stems from a user-initiated stop.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// =============================================================================
// WINDOW SYNC
// =============================================================================

// syncWindow pushes the active chat's messages, plus the live streaming
// message if present, into the message window.
func (m *Model) syncWindow() {
	var messages []*model.Message
	if chat := m.session.ActiveChat(); chat != nil {
		messages = append(messages, chat.Messages...)
	}
	if m.liveMsg != nil {
		messages = append(messages, m.liveMsg)
	}
	m.window.SetMessages(messages)
}

// resize propagates new dimensions to every component.
func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	// header (1) + input (3) + status (2)
	windowHeight := height - 6
	if windowHeight < 3 {
		windowHeight = 3
	}
	m.window.SetSize(width, windowHeight)
	m.statusBar.SetWidth(width)
	m.input.Width = width - 4
	return m
}

// spinnerView returns the current spinner frame while streaming.
func (m Model) spinnerView() string {
	return spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
}

// advanceSpinner moves the spinner one frame.
func (m Model) advanceSpinner(_ time.Time) Model {
	m.spinnerFrame++
	return m
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL chat with input history.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/config"
	"github.com/winfunc/deepreasoning/internal/index"
	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/session"
	"github.com/winfunc/deepreasoning/internal/storage"
	"github.com/winfunc/deepreasoning/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI wraps liner with persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history stored in the config dir.
func NewChatCLI() (*ChatCLI, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		line.Close()
		return nil, err
	}
	if err := config.EnsureConfigDir(); err != nil {
		line.Close()
		return nil, err
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.loadHistory()
	return cli, nil
}

// loadHistory reads prior inputs from the history file. Missing files are
// fine on first run.
func (c *ChatCLI) loadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.ReadHistory(f)
}

// saveHistory persists input history with owner-only permissions.
func (c *ChatCLI) saveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// ReadInput prompts for one line of input.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// replState holds the pieces of one REPL session.
type replState struct {
	client    *api.Client
	manager   *session.Manager
	store     *storage.ChatStore
	cfg       *config.Config
	showThink bool
}

// HandleChat runs the interactive REPL. Returns an exit code.
func HandleChat(args Args) int {
	cfg, err := LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if args.System != "" {
		cfg.Chat.SystemPrompt = args.System
	}

	store, err := storage.NewChatStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: chat persistence unavailable: %v\n", err)
	}

	state := &replState{
		client:    api.NewClientWithConfig(ClientConfigFrom(cfg)),
		manager:   session.NewManager(store),
		store:     store,
		cfg:       cfg,
		showThink: cfg.UI.ShowThinking || args.ShowThink,
	}
	if args.NoThink {
		state.showThink = false
	}

	cli, err := NewChatCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cli.Close()

	if !args.Quiet {
		fmt.Printf("deepreasoning chat  (%s)\n", cfg.Server.URL)
		fmt.Println("Type /help for commands, /quit to exit.")
		fmt.Println()
	}

	for {
		input, err := cli.ReadInput("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("(press /quit or Ctrl+D to exit)")
				continue
			}
			// io.EOF on Ctrl+D
			fmt.Println()
			return 0
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := state.handleSlashCommand(input); quit {
				return 0
			}
			continue
		}

		state.streamTurn(input)
	}
}

// handleSlashCommand dispatches a /command. Returns true to exit the REPL.
func (s *replState) handleSlashCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/new":
		s.manager.CreateChat()
		fmt.Println("Started a new chat.")

	case "/chats":
		chats := s.manager.Chats()
		if len(chats) == 0 {
			fmt.Println("No chats yet.")
			break
		}
		active := s.manager.ActiveChat()
		for i, chat := range chats {
			marker := "  "
			if active != nil && chat.ID == active.ID {
				marker = "* "
			}
			fmt.Printf("%s%d. %s (%d messages)\n", marker, i+1, chat.Title, chat.MessageCount())
		}

	case "/thinking":
		s.showThink = !s.showThink
		if s.showThink {
			fmt.Println("Reasoning trace on.")
		} else {
			fmt.Println("Reasoning trace off.")
		}

	case "/search":
		query := strings.TrimSpace(strings.TrimPrefix(input, cmd))
		if query == "" {
			fmt.Println("Usage: /search <query>")
			break
		}
		s.searchMessages(query)

	case "/clear":
		fmt.Print("\033[2J\033[H")

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /new           Start a new chat")
		fmt.Println("  /chats         List chats in this session")
		fmt.Println("  /search QUERY  Search message history")
		fmt.Println("  /thinking      Toggle the reasoning trace")
		fmt.Println("  /clear         Clear the screen")
		fmt.Println("  /quit          Exit")

	default:
		fmt.Printf("Unknown command: %s (try /help)\n", cmd)
	}
	return false
}

// searchMessages queries the sqlite index over all chats in this session.
func (s *replState) searchMessages(query string) {
	if s.store == nil {
		fmt.Println("Search unavailable without persistence.")
		return
	}

	idx, err := index.Open(filepath.Join(s.store.BaseDir, indexFile))
	if err != nil {
		fmt.Printf("Search unavailable: %v\n", err)
		return
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Rebuild(ctx, s.manager.Chats()); err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}

	results, err := idx.Search(ctx, query, 10)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range results {
		fmt.Printf("  [%s] %s: %s\n", r.Role, util.TruncateWidth(r.ChatTitle, 24),
			util.TruncateWidth(util.SingleLine(r.Content), 70))
	}
}

// streamTurn sends one user message and streams the assistant reply.
// Ctrl+C aborts the in-flight request without leaving the REPL.
func (s *replState) streamTurn(input string) {
	chat := s.manager.EnsureActive()
	s.manager.AddUserMessage(input)

	req := api.ChatRequest{
		Stream:   true,
		Verbose:  s.cfg.Chat.Verbose,
		System:   s.cfg.Chat.SystemPrompt,
		Messages: chat.ToWireMessages(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	turn := model.NewTurn()
	reasoningStart := time.Now()
	dim := IsStdoutTTY()
	announced := false
	var streamErr error

	err := s.client.ChatStream(ctx, req, func(event api.StreamEvent) {
		switch event.Type {
		case api.EventContent:
			for _, block := range event.Content {
				if block.IsOpenSentinel() || block.IsCloseSentinel() {
					if turn.Feed(block) {
						if s.showThink {
							fmt.Println()
						}
						if !s.cfg.Chat.Verbose {
							fmt.Printf("(thought %s)\n\n", formatDuration(time.Since(reasoningStart)))
						}
					}
					continue
				}
				thinking := turn.InThinking()
				turn.Feed(block)

				if thinking {
					if s.showThink {
						if !announced {
							fmt.Println("thinking:")
							announced = true
						}
						text := block.Text
						if dim {
							text = thinkingStyle.Render(text)
						}
						fmt.Print(text)
					}
					continue
				}
				fmt.Print(block.Text)
			}
		case api.EventError:
			streamErr = fmt.Errorf("%s (code %d)", event.Message, event.Code)
		}
	})
	fmt.Println()

	if err == nil {
		err = streamErr
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || api.IsTimeout(err) && ctx.Err() != nil {
			fmt.Println("(cancelled)")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
	}

	snapshot := turn.Snapshot()
	if snapshot.Content != "" || snapshot.Thinking != "" {
		s.manager.ApplyAssistantTurn(snapshot)
	}
	fmt.Println()
}

// formatDuration renders an elapsed time compactly for the REPL.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

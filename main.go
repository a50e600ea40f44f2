// deepreasoning - A terminal client for dual-model reasoning chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/cli"
	"github.com/winfunc/deepreasoning/internal/config"
	"github.com/winfunc/deepreasoning/internal/session"
	"github.com/winfunc/deepreasoning/internal/storage"
	"github.com/winfunc/deepreasoning/internal/ui/chat"
	"github.com/winfunc/deepreasoning/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(args))
	case cli.CmdSessions:
		os.Exit(cli.HandleSessions(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewChatStore()
	if err != nil {
		// The TUI still works without persistence; chats just won't survive
		// a restart.
		fmt.Fprintf(os.Stderr, "Warning: chat persistence unavailable: %v\n", err)
		store = nil
	}

	theme := styles.NewTheme()
	client := api.NewClientWithConfig(cli.ClientConfigFrom(cfg))
	manager := session.NewManager(store)

	m := chat.New(theme, manager, client, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// The runner needs the program handle for async sends, so it attaches
	// after the program exists but before the first submit.
	m.AttachRunner(chat.NewStreamRunner(p, client, m.Buffer()))

	// Live-reload config edits into the running UI.
	watcher := watchConfig(p)
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running deepreasoning: %v\n", err)
		os.Exit(1)
	}
}

// watchConfig reloads the config file on change and forwards the relevant
// settings to the running program. Returns nil when watching is impossible;
// the TUI runs fine without it.
func watchConfig(p *tea.Program) *config.Watcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		p.Send(chat.ConfigReloadedMsg{
			ShowThinking: cfg.UI.ShowThinking,
			Markdown:     cfg.UI.Markdown,
			SystemPrompt: cfg.Chat.SystemPrompt,
			Verbose:      cfg.Chat.Verbose,
		})
	})
	if err != nil {
		return nil
	}

	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Stored chat management commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/winfunc/deepreasoning/internal/export"
	"github.com/winfunc/deepreasoning/internal/index"
	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/storage"
	"github.com/winfunc/deepreasoning/internal/util"
)

// indexFile is the search database filename inside the storage dir.
const indexFile = "index.db"

// HandleSessions dispatches the sessions subcommands. Returns an exit code.
func HandleSessions(args Args) int {
	store, err := storage.NewChatStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sub := args.Subcommand
	rest := args.Raw
	if len(rest) > 0 {
		rest = rest[1:]
	}

	switch sub {
	case "", "list":
		return sessionsList(store)
	case "show":
		return sessionsShow(store, rest)
	case "search":
		return sessionsSearch(store, rest)
	case "export":
		return sessionsExport(store, rest)
	case "delete":
		return sessionsDelete(store, rest)
	case "clear":
		return sessionsClear(store, rest)
	default:
		fmt.Fprintf(os.Stderr, "Unknown sessions subcommand: %s\n", sub)
		fmt.Fprintln(os.Stderr, "Try: list, show, search, export, delete, clear")
		return 1
	}
}

// sessionsList prints all stored chats, newest first.
func sessionsList(store *storage.ChatStore) int {
	chats := store.Load()
	if len(chats) == 0 {
		fmt.Println("No stored chats.")
		return 0
	}

	for _, chat := range chats {
		fmt.Printf("%s  %s  %3d messages  %s\n",
			shortID(chat.ID),
			util.PadRight(util.TruncateWidth(chat.Title, 40), 40),
			chat.MessageCount(),
			chat.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return 0
}

// sessionsShow prints one chat transcript.
func sessionsShow(store *storage.ChatStore, rest []string) int {
	p := NewArgParser(rest)
	id := p.Positional(0)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Usage: deepreasoning sessions show <id>")
		return 1
	}

	chat := findChat(store, id)
	if chat == nil {
		fmt.Fprintf(os.Stderr, "Error: no chat matching %q\n", id)
		return 1
	}

	showThink := p.BoolFlag("thinking")
	fmt.Printf("%s  (%d messages, created %s)\n\n",
		chat.Title, chat.MessageCount(), chat.CreatedAt.Format("2006-01-02 15:04"))

	for _, msg := range chat.Messages {
		fmt.Printf("[%s]\n", msg.Role.DisplayName())
		if showThink && msg.HasThinking() {
			fmt.Println("  (reasoning)")
			for _, line := range strings.Split(msg.Thinking, "\n") {
				fmt.Printf("  | %s\n", line)
			}
		}
		fmt.Println(msg.Content)
		fmt.Println()
	}
	return 0
}

// sessionsSearch queries the message index, rebuilding it from the stored
// chat set first so results always reflect the current data.
func sessionsSearch(store *storage.ChatStore, rest []string) int {
	p := NewArgParser(rest)
	query := strings.Join(p.PositionalFrom(0), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "Usage: deepreasoning sessions search <query>")
		return 1
	}

	limit := 20
	if v := p.Flag("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	idx, err := index.Open(filepath.Join(store.BaseDir, indexFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Rebuild(ctx, store.Load()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	results, err := idx.Search(ctx, query, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return 0
	}

	for _, r := range results {
		fmt.Printf("%s  [%s] %s\n    %s\n",
			shortID(r.ChatID),
			r.Role,
			util.TruncateWidth(r.ChatTitle, 40),
			util.TruncateWidth(util.SingleLine(r.Content), 100),
		)
	}
	return 0
}

// sessionsExport renders one chat to a file or stdout.
func sessionsExport(store *storage.ChatStore, rest []string) int {
	p := NewArgParser(rest)
	id := p.Positional(0)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Usage: deepreasoning sessions export <id> [--format md|json|html] [--output FILE]")
		return 1
	}

	chat := findChat(store, id)
	if chat == nil {
		fmt.Fprintf(os.Stderr, "Error: no chat matching %q\n", id)
		return 1
	}

	opts := export.DefaultOptions()
	exporter, err := export.ForFormat(p.FlagOr("format", "md"), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	output := p.Flag("output")
	if output == "" || output == "-" {
		content, err := exporter.Export(chat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		os.Stdout.Write(content)
		return 0
	}

	// A directory target gets a generated filename; anything else is
	// written to the exact path given.
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		opts.OutputDir = output
		path, err := export.ExportToFile(chat, exporter, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Exported to %s\n", path)
		return 0
	}

	content, err := exporter.Export(chat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(output, content, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Exported to %s\n", output)
	return 0
}

// sessionsDelete removes one chat from the store.
func sessionsDelete(store *storage.ChatStore, rest []string) int {
	p := NewArgParser(rest)
	id := p.Positional(0)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Usage: deepreasoning sessions delete <id> --confirm")
		return 1
	}
	if !p.BoolFlag("confirm") {
		fmt.Fprintln(os.Stderr, "Refusing to delete without --confirm")
		return 1
	}

	chats := store.Load()
	kept := make([]*model.Chat, 0, len(chats))
	deleted := false
	for _, chat := range chats {
		if matchesID(chat, id) && !deleted {
			deleted = true
			continue
		}
		kept = append(kept, chat)
	}
	if !deleted {
		fmt.Fprintf(os.Stderr, "Error: no chat matching %q\n", id)
		return 1
	}

	if err := store.Save(kept); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("Deleted.")
	return 0
}

// sessionsClear removes the entire stored chat set.
func sessionsClear(store *storage.ChatStore, rest []string) int {
	p := NewArgParser(rest)
	if !p.BoolFlag("confirm") {
		fmt.Fprintln(os.Stderr, "Refusing to clear all chats without --confirm")
		return 1
	}
	if err := store.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("All chats removed.")
	return 0
}

// =============================================================================
// HELPERS
// =============================================================================

// findChat returns the first chat whose ID matches id, by prefix.
func findChat(store *storage.ChatStore, id string) *model.Chat {
	for _, chat := range store.Load() {
		if matchesID(chat, id) {
			return chat
		}
	}
	return nil
}

// matchesID accepts full IDs and unambiguous short prefixes.
func matchesID(chat *model.Chat, id string) bool {
	return chat.ID == id || strings.HasPrefix(chat.ID, id)
}

// shortID returns the first 8 characters of a chat ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

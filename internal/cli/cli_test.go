// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/winfunc/deepreasoning/internal/model"
	"github.com/winfunc/deepreasoning/internal/storage"
)

func TestParseGlobalFlags(t *testing.T) {
	remaining, parsed := parseGlobalFlags([]string{
		"--quiet", "ask", "--url", "http://example:9000", "-v", "hello",
	})

	if !parsed.Quiet {
		t.Error("expected Quiet")
	}
	if !parsed.Verbose {
		t.Error("expected Verbose")
	}
	if parsed.ServerURL != "http://example:9000" {
		t.Errorf("ServerURL = %q", parsed.ServerURL)
	}
	if len(remaining) != 2 || remaining[0] != "ask" || remaining[1] != "hello" {
		t.Errorf("remaining = %v", remaining)
	}
}

func TestParseAskArgs(t *testing.T) {
	var parsed Args
	parseAskArgs(&parsed, []string{"--thinking", "--system", "be brief", "why", "is", "it"})

	if !parsed.ShowThink {
		t.Error("expected ShowThink")
	}
	if parsed.System != "be brief" {
		t.Errorf("System = %q", parsed.System)
	}
	if parsed.Query != "why is it" {
		t.Errorf("Query = %q", parsed.Query)
	}
}

func TestArgParserFlagForms(t *testing.T) {
	p := NewArgParser([]string{"--format=json", "--output", "out.md", "--confirm", "abc123"})

	if got := p.Flag("format"); got != "json" {
		t.Errorf("format = %q", got)
	}
	if got := p.Flag("output"); got != "out.md" {
		t.Errorf("output = %q", got)
	}
	if !p.BoolFlag("confirm") {
		t.Error("expected confirm flag")
	}
	if got := p.Positional(0); got != "abc123" {
		t.Errorf("positional = %q", got)
	}
	if p.PositionalCount() != 1 {
		t.Errorf("positional count = %d", p.PositionalCount())
	}
}

func TestArgParserFlagOr(t *testing.T) {
	p := NewArgParser([]string{})
	if got := p.FlagOr("format", "md"); got != "md" {
		t.Errorf("FlagOr default = %q", got)
	}
}

func TestArgParserUnknownBoolDoesNotEatValue(t *testing.T) {
	// "confirm" is not a value flag, so the following token stays positional.
	p := NewArgParser([]string{"--confirm", "keep-me"})
	if !p.BoolFlag("confirm") {
		t.Error("expected confirm flag")
	}
	if got := p.Positional(0); got != "keep-me" {
		t.Errorf("positional = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short line untouched", "hello world", 40, "hello world"},
		{"wraps at word boundary", "one two three", 7, "one two\nthree"},
		{"long word kept intact", "abcdefghij", 4, "abcdefghij"},
		{"zero width passthrough", "hello", 0, "hello"},
		{"preserves blank lines", "a\n\nb", 10, "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapText(tt.in, tt.width); got != tt.want {
				t.Errorf("WrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestSessionsExportToDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewChatStoreWithDir(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("NewChatStoreWithDir: %v", err)
	}

	chat := model.NewChat()
	chat.AddUserMessage("why is the sky blue")
	if err := store.Save([]*model.Chat{chat}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	outDir := filepath.Join(dir, "exports")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	if code := sessionsExport(store, []string{chat.ID, "--format", "md", "--output", outDir}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one exported file, found %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".md" {
		t.Errorf("exported file = %q, want .md extension", entries[0].Name())
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short = %q", got)
	}
}

func TestRedactToken(t *testing.T) {
	if got := redactToken(""); got != "" {
		t.Errorf("empty token redacted to %q", got)
	}
	if got := redactToken("sk"); got != "****" {
		t.Errorf("tiny token = %q", got)
	}
	if got := redactToken("sk-abcdef123456"); got != "****3456" {
		t.Errorf("token = %q", got)
	}
}

func TestExitCodeFor(t *testing.T) {
	if got := exitCodeFor(errSentinel{}); got != 1 {
		t.Errorf("generic error exit = %d", got)
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for deepreasoning.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet     bool
	Verbose   bool
	JSON      bool
	NoColor   bool
	ServerURL string

	// Command-specific
	Query      string
	System     string
	Subcommand string
	ShowThink  bool
	NoThink    bool

	// Raw args remaining after command extraction
	Raw []string
}

const usageText = `deepreasoning - terminal client for dual-model reasoning chat

Streams responses from a deepreasoning server, which pairs a reasoning
model with an answer model behind one endpoint. The reasoning trace
arrives between <thinking> markers and renders separately from the
answer.

Usage:
  deepreasoning                       Start the TUI (default)
  deepreasoning ask "question"        Ask a single question
  deepreasoning chat                  Interactive REPL chat
  deepreasoning sessions [subcommand] Stored chat management
  deepreasoning config [show|init|path]  Configuration
  deepreasoning version               Show version
  deepreasoning help                  Show this help

Ask:
  deepreasoning ask "why is the sky blue?"
    --thinking              Print the reasoning trace as it streams
    --system TEXT           System prompt for this request
    --json                  Emit the raw response as JSON

Sessions:
  deepreasoning sessions list             List stored chats
  deepreasoning sessions show <id>        Print a chat transcript
  deepreasoning sessions search <query>   Search message content
  deepreasoning sessions export <id>      Export a chat
    --format md|json        Export format (default: md)
    --output FILE           Write to file (default: stdout)
  deepreasoning sessions delete <id> --confirm
  deepreasoning sessions clear --confirm

Global flags:
  --url URL       Server base URL (default from config)
  -v, --verbose   Ask the server for upstream response passthrough
  -q, --quiet     Minimal output
  --no-color      Disable colored output

Environment:
  DEEPREASONING_URL              Server base URL
  DEEPREASONING_DEEPSEEK_TOKEN   Reasoning model API token
  DEEPREASONING_ANTHROPIC_TOKEN  Answer model API token
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		p := NewArgParser(remaining)
		parsed.ShowThink = p.BoolFlag("thinking")
		parsed.NoThink = p.BoolFlag("no-thinking")
		if v := p.Flag("system"); v != "" {
			parsed.System = v
		}
		return CmdChat, parsed

	case "sessions", "session":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdSessions, parsed

	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		// Bare words after the binary name read as an ask query.
		parseAskArgs(&parsed, append([]string{cmd}, remaining...))
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	parsed := Args{}
	remaining := make([]string, 0, len(args))

	i := 0
	for i < len(args) {
		switch args[i] {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--no-color":
			parsed.NoColor = true
		case "--url":
			if i+1 < len(args) {
				parsed.ServerURL = args[i+1]
				i++
			}
		default:
			remaining = append(remaining, args[i])
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask-specific flags and joins the rest into the query.
func parseAskArgs(parsed *Args, args []string) {
	p := NewArgParser(args)
	parsed.ShowThink = p.BoolFlag("thinking")
	parsed.System = p.Flag("system")
	if p.BoolFlag("json") {
		parsed.JSON = true
	}
	parsed.Query = strings.Join(p.PositionalFrom(0), " ")
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("deepreasoning %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

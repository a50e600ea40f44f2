// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command with streaming output.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/model"
)

// markdownRenderer is initialized once and reused across responses.
var markdownRenderer *glamour.TermRenderer

func initMarkdownRenderer() {
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		markdownRenderer = renderer
	}
}

var thinkingStyle = lipgloss.NewStyle().Faint(true).Italic(true)

// HandleAsk sends one question and prints the response. Returns an exit code.
func HandleAsk(args Args) int {
	query := strings.TrimSpace(args.Query)

	// Piped input becomes the query when none was given on the command line.
	if query == "" && !IsStdinTTY() {
		data, err := io.ReadAll(os.Stdin)
		if err == nil {
			query = strings.TrimSpace(string(data))
		}
	}
	if query == "" {
		fmt.Fprintln(os.Stderr, "Error: no question given")
		fmt.Fprintln(os.Stderr, "Usage: deepreasoning ask \"your question\"")
		return 1
	}

	client, err := buildClient(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := api.ChatRequest{
		Verbose:  args.Verbose,
		System:   args.System,
		Messages: []api.Message{{Role: api.RoleUser, Content: query}},
	}

	if args.JSON {
		return askJSON(ctx, client, req)
	}
	return askStream(ctx, client, req, args)
}

// askJSON performs a non-streaming request and dumps the raw response.
func askJSON(ctx context.Context, client *api.Client, req api.ChatRequest) int {
	resp, err := client.Chat(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// askStream streams the response, printing the reasoning trace to stderr
// when requested and the answer to stdout. On a terminal the answer is
// accumulated and rendered as markdown once complete; when piped the raw
// answer text streams through as it arrives.
func askStream(ctx context.Context, client *api.Client, req api.ChatRequest, args Args) int {
	turn := model.NewTurn()
	renderAtEnd := IsStdoutTTY() && !args.NoColor
	showThink := args.ShowThink
	dimThink := IsStderrTTY() && !args.NoColor

	var usage *api.CombinedUsage
	var streamErr error

	err := client.ChatStream(ctx, req, func(event api.StreamEvent) {
		switch event.Type {
		case api.EventContent:
			for _, block := range event.Content {
				if block.IsOpenSentinel() || block.IsCloseSentinel() {
					if turn.Feed(block) && showThink {
						fmt.Fprintln(os.Stderr)
					}
					continue
				}
				thinking := turn.InThinking()
				turn.Feed(block)

				if thinking {
					if showThink {
						text := block.Text
						if dimThink {
							text = thinkingStyle.Render(text)
						}
						fmt.Fprint(os.Stderr, text)
					}
					continue
				}
				if !renderAtEnd {
					fmt.Print(block.Text)
				}
			}
		case api.EventUsage:
			usage = event.Usage
		case api.EventError:
			streamErr = fmt.Errorf("%s (code %d)", event.Message, event.Code)
		}
	})

	if err == nil {
		err = streamErr
	}
	// A Ctrl+C surfaces as the client's timeout error with the context done.
	if errors.Is(err, context.Canceled) || (err != nil && ctx.Err() != nil) {
		fmt.Fprintln(os.Stderr, "\n(cancelled)")
		return 130
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		return exitCodeFor(err)
	}

	if renderAtEnd {
		displayResponse(turn.Content())
	} else {
		fmt.Println()
	}

	if usage != nil && !args.Quiet {
		total := usage.DeepSeekUsage.TotalTokens + usage.AnthropicUsage.TotalTokens
		fmt.Fprintf(os.Stderr, "\n%d tokens", total)
		if usage.TotalCost != "" {
			fmt.Fprintf(os.Stderr, "  $%s", usage.TotalCost)
		}
		fmt.Fprintln(os.Stderr)
	}
	return 0
}

// displayResponse renders markdown when stdout is a terminal, plain text
// otherwise.
func displayResponse(content string) {
	if content == "" {
		return
	}

	if IsStdoutTTY() {
		if markdownRenderer == nil {
			initMarkdownRenderer()
		}
		if markdownRenderer != nil {
			if rendered, err := markdownRenderer.Render(content); err == nil {
				fmt.Print(rendered)
				return
			}
		}
	}

	fmt.Println(content)
}

// exitCodeFor maps client error categories to distinct exit codes so
// scripts can tell transport failures from rejected requests.
func exitCodeFor(err error) int {
	switch {
	case api.IsUnreachable(err):
		return 2
	case api.IsAuth(err):
		return 3
	case api.IsBadRequest(err):
		return 4
	default:
		return 1
	}
}

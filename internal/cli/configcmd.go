// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Configuration inspection and bootstrap commands.
package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/winfunc/deepreasoning/internal/config"
)

// HandleConfig dispatches the config subcommands. Returns an exit code.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "path":
		return configPath()
	case "init":
		return configInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args.Subcommand)
		fmt.Fprintln(os.Stderr, "Try: show, path, init")
		return 1
	}
}

// configShow prints the effective configuration with tokens redacted.
func configShow() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Never echo credentials.
	redacted := *cfg
	redacted.Auth.DeepSeekToken = redactToken(cfg.Auth.DeepSeekToken)
	redacted.Auth.AnthropicToken = redactToken(cfg.Auth.AnthropicToken)

	if err := toml.NewEncoder(os.Stdout).Encode(redacted); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// configPath prints the configuration file location.
func configPath() int {
	path, err := config.ConfigPathTOML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(path)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		fmt.Fprintln(os.Stderr, "(not created yet; run: deepreasoning config init)")
	}
	return 0
}

// configInit writes a default config file if none exists.
func configInit() int {
	path, err := config.ConfigPathTOML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Config already exists at %s\n", path)
		return 1
	}

	if err := config.Save(config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return 0
}

// redactToken hides all but a recognizable tail of a credential.
func redactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// client.go - Shared config loading and client construction for commands.
package cli

import (
	"fmt"
	"time"

	"github.com/winfunc/deepreasoning/internal/api"
	"github.com/winfunc/deepreasoning/internal/config"
)

// LoadConfig loads the configuration and applies command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
	}
	if args.Verbose {
		cfg.Chat.Verbose = true
	}
	return cfg, nil
}

// ClientConfigFrom maps the application config onto a client config.
func ClientConfigFrom(cfg *config.Config) *api.ClientConfig {
	return &api.ClientConfig{
		BaseURL:           cfg.Server.URL,
		DeepSeekToken:     cfg.Auth.DeepSeekToken,
		AnthropicToken:    cfg.Auth.AnthropicToken,
		Timeout:           time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	}
}

// buildClient loads the configuration and constructs an API client.
func buildClient(args Args) (*api.Client, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return api.NewClientWithConfig(ClientConfigFrom(cfg)), nil
}

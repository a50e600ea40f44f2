// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Lightweight argument parser for subcommand flags.
package cli

import "strings"

// ArgParser splits a subcommand's arguments into flags and positionals.
// Flags take the form --name value or --name=value; boolean flags stand
// alone. Everything else is positional, in order.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses args into an ArgParser.
func NewArgParser(args []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		if strings.HasPrefix(arg, "--") {
			name := strings.TrimPrefix(arg, "--")

			if eq := strings.Index(name, "="); eq >= 0 {
				p.flags[name[:eq]] = name[eq+1:]
				i++
				continue
			}

			// A value follows unless the next token is another flag.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") && flagTakesValue(name) {
				p.flags[name] = args[i+1]
				i += 2
				continue
			}

			p.boolFlags[name] = true
			i++
			continue
		}

		p.positional = append(p.positional, arg)
		i++
	}

	return p
}

// valueFlags are flags that consume the next token as their value.
var valueFlags = map[string]bool{
	"system": true,
	"format": true,
	"output": true,
	"url":    true,
	"limit":  true,
}

func flagTakesValue(name string) bool {
	return valueFlags[name]
}

// Flag returns the value of a --name value flag, or "" if absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// FlagOr returns the flag value or a default when the flag is absent.
func (p *ArgParser) FlagOr(name, def string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return def
}

// BoolFlag reports whether a standalone --name flag was given.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// Positional returns the positional argument at index i, or "".
func (p *ArgParser) Positional(i int) string {
	if i < len(p.positional) {
		return p.positional[i]
	}
	return ""
}

// PositionalFrom returns all positional arguments from index i on.
func (p *ArgParser) PositionalFrom(i int) []string {
	if i >= len(p.positional) {
		return nil
	}
	return p.positional[i:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"anycode/internal/tools"
)

// runREPL is an operator surface for invoking tools by hand: each line is
// either a JSON invocation {"tool_name":..., "input":{...}} or the shorthand
// `tool_name {json input}`.
func runREPL(ctx context.Context, logger zerolog.Logger, registry *tools.Registry) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "anycode> ",
		HistoryFile:     ".anycode_history",
		InterruptPrompt: "^C",
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize readline")
		return
	}
	defer rl.Close()

	fmt.Printf("Available tools: %s\n", strings.Join(registry.Names(), ", "))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("Readline failed")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		if line == "tools" {
			fmt.Println(strings.Join(registry.Names(), ", "))
			continue
		}

		invocation, err := parseInvocationLine(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		result := registry.Execute(ctx, invocation.ToolName, invocation.Input)
		printResult(result)
	}
}

// parseInvocationLine accepts a full JSON invocation or `name {input}`.
func parseInvocationLine(line string) (tools.Invocation, error) {
	var invocation tools.Invocation
	if strings.HasPrefix(line, "{") {
		if err := json.Unmarshal([]byte(line), &invocation); err != nil {
			return invocation, fmt.Errorf("invalid invocation JSON: %v", err)
		}
		return invocation, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	invocation.ToolName = name
	invocation.Input = map[string]interface{}{}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		if err := json.Unmarshal([]byte(rest), &invocation.Input); err != nil {
			return invocation, fmt.Errorf("invalid input JSON: %v", err)
		}
	}
	return invocation, nil
}

func printResult(result *tools.ToolResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

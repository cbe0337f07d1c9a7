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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"anycode/internal/tools"
)

// runStream reads one JSON invocation per line from stdin and writes one
// JSON result per line to stdout, for driving the engine from another
// process.
func runStream(ctx context.Context, logger zerolog.Logger, registry *tools.Registry) {
	logger.Debug().Msg("Running in stream mode")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var invocation tools.Invocation
		if err := json.Unmarshal([]byte(line), &invocation); err != nil {
			logger.Error().Err(err).Msg("Invalid invocation line")
			fmt.Fprintf(os.Stderr, "Error: invalid invocation JSON: %v\n", err)
			continue
		}

		start := time.Now()
		result := registry.Execute(ctx, invocation.ToolName, invocation.Input)
		logger.Info().
			Str("tool", invocation.ToolName).
			Str("status", string(result.Status)).
			Dur("duration_ms", time.Since(start)).
			Msg("Invocation processed")

		if err := encoder.Encode(result); err != nil {
			logger.Error().Err(err).Msg("Failed to encode result")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("Error reading input")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

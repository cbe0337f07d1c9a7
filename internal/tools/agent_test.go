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

package tools

import (
	"context"
	"strings"
	"testing"

	"anycode/internal/errors"
)

func TestLaunchAgentEchoesPrompt(t *testing.T) {
	payload, err := launchAgent(context.Background(), map[string]interface{}{
		"prompt": "find all TODO comments",
	})
	if err != nil {
		t.Fatalf("launch_agent failed: %v", err)
	}
	result := payload.(map[string]interface{})
	if result["taskCompleted"] != true {
		t.Fatalf("taskCompleted = %v", result["taskCompleted"])
	}
	if !strings.Contains(result["agentResponse"].(string), "find all TODO comments") {
		t.Fatalf("agentResponse = %q", result["agentResponse"])
	}
}

func TestLaunchAgentMissingPrompt(t *testing.T) {
	_, err := launchAgent(context.Background(), map[string]interface{}{})
	if errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeInvalidArgument)
	}
}

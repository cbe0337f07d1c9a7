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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"anycode/internal/errors"
)

// Registry holds all available tools with their implementations. No tool
// fault crosses the Execute boundary: internal errors and panics alike come
// back as a structured error result.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger zerolog.Logger
}

// NewRegistry creates a new tool registry and registers all built-in tools.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
	registerBuiltInTools(r)
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	if tool == nil || tool.Name() == "" {
		return fmt.Errorf("tool must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name())
	}
	r.tools[tool.Name()] = tool
	return nil
}

// Get retrieves a tool definition by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAITools returns the registry as OpenAI tool definitions so the
// orchestration loop can hand the catalogue to a model.
func (r *Registry) OpenAITools() []openai.Tool {
	names := r.Names()
	defs := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

// Execute runs the named tool with the given arguments and returns its
// outcome as a result value, never as a propagated fault.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (result *ToolResult) {
	start := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			result = errorResult(name, errors.Newf(errors.CodeUnknown, "tool %s panicked: %v", name, recovered))
		}
		r.logResult(result, time.Since(start))
	}()

	tool, ok := r.Get(name)
	if !ok {
		return errorResult(name, errors.Newf(errors.CodeNotFound, "tool not found: %s", name))
	}

	if err := tool.Validate(args); err != nil {
		if errors.CodeOf(err) == errors.CodeUnknown {
			err = errors.Wrap(errors.CodeInvalidArgument, fmt.Sprintf("invalid arguments for %s", name), err)
		}
		return errorResult(name, err)
	}

	payload, err := tool.Execute(ctx, args)
	if err != nil {
		return errorResult(name, err)
	}
	return successResult(name, payload)
}

func (r *Registry) logResult(result *ToolResult, elapsed time.Duration) {
	if result == nil {
		return
	}
	if result.Err != nil {
		r.logger.Debug().
			Str("tool", result.Name).
			Str("code", string(result.Err.Code)).
			Dur("duration_ms", elapsed).
			Msg("Tool invocation failed")
		return
	}
	r.logger.Debug().
		Str("tool", result.Name).
		Dur("duration_ms", elapsed).
		Msg("Tool invocation succeeded")
}

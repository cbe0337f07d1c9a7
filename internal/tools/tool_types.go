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
	"encoding/json"

	"anycode/internal/errors"
)

// ExecutorFunc is the function signature for tool implementations. The
// returned payload is operation-specific: a path sequence, text content, a
// structured document, or a process result.
type ExecutorFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Tool represents a callable tool with validation and execution hooks.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
	Validate(args map[string]interface{}) error
}

// ToolDefinition provides a default implementation of Tool.
type ToolDefinition struct {
	NameValue        string
	DescriptionValue string
	ParametersValue  map[string]interface{}
	ExecuteFunc      ExecutorFunc
	ValidateFunc     func(args map[string]interface{}) error
}

func (t *ToolDefinition) Name() string {
	return t.NameValue
}

func (t *ToolDefinition) Description() string {
	return t.DescriptionValue
}

func (t *ToolDefinition) Parameters() map[string]interface{} {
	return t.ParametersValue
}

func (t *ToolDefinition) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.ExecuteFunc == nil {
		return nil, nil
	}
	return t.ExecuteFunc(ctx, args)
}

func (t *ToolDefinition) Validate(args map[string]interface{}) error {
	if t.ValidateFunc == nil {
		return nil
	}
	return t.ValidateFunc(args)
}

// Status tags a tool result as either success or error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Invocation is one named tool call with a parameter mapping.
type Invocation struct {
	ToolName string                 `json:"tool_name"`
	Input    map[string]interface{} `json:"input"`
}

// ToolResult is the outcome of one invocation. Produced once, never mutated
// after. Exactly one of Result and Err is set.
type ToolResult struct {
	Name   string
	Status Status
	Result interface{}
	Err    *errors.Error
}

// MarshalJSON emits the batch wire shape:
// {tool_name, status, result} or {tool_name, status, error:{code, message}}.
func (r *ToolResult) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"tool_name": r.Name,
		"status":    r.Status,
	}
	if r.Err != nil {
		out["error"] = map[string]interface{}{
			"code":    r.Err.Code,
			"message": r.Err.Error(),
		}
	} else {
		out["result"] = r.Result
	}
	return json.Marshal(out)
}

func successResult(name string, payload interface{}) *ToolResult {
	return &ToolResult{Name: name, Status: StatusSuccess, Result: payload}
}

func errorResult(name string, err error) *ToolResult {
	return &ToolResult{Name: name, Status: StatusError, Err: errors.Convert(err)}
}

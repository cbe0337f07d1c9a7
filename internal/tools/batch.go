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
	"sync"

	"anycode/internal/errors"
)

// batchToolName is excluded from the set of tools a batch may invoke, which
// prevents unbounded self-nesting.
const batchToolName = "run_batch"

// BatchResult is the payload of run_batch: per-invocation outcomes in
// original submission order regardless of completion order.
type BatchResult struct {
	Description string        `json:"description"`
	Results     []*ToolResult `json:"results"`
}

// newBatchExecutor builds the run_batch executor over the registry. All
// invocations of one batch run concurrently; each fault becomes a
// per-invocation error entry, never an aggregate failure.
func newBatchExecutor(r *Registry) ExecutorFunc {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		description, err := requiredString(args, "description")
		if err != nil {
			return nil, err
		}
		invocations, err := parseInvocations(args)
		if err != nil {
			return nil, err
		}

		results := make([]*ToolResult, len(invocations))
		var wg sync.WaitGroup
		for i, inv := range invocations {
			wg.Add(1)
			go func(i int, inv Invocation) {
				defer wg.Done()
				results[i] = r.executeBatchEntry(ctx, inv)
			}(i, inv)
		}
		wg.Wait()

		return &BatchResult{Description: description, Results: results}, nil
	}
}

// executeBatchEntry resolves one sub-invocation against the eligible tool
// set. An unknown or ineligible tool yields an error entry without aborting
// the batch.
func (r *Registry) executeBatchEntry(ctx context.Context, inv Invocation) *ToolResult {
	if inv.ToolName == "" {
		return errorResult("", errors.New(errors.CodeInvalidArgument, "invocation is missing 'tool_name'"))
	}
	if inv.ToolName == batchToolName {
		return errorResult(inv.ToolName, errors.Newf(errors.CodePolicyDenied,
			"tool %s cannot be invoked from within a batch", batchToolName))
	}
	input := inv.Input
	if input == nil {
		input = map[string]interface{}{}
	}
	return r.Execute(ctx, inv.ToolName, input)
}

// parseInvocations extracts the ordered invocation sequence from the raw
// argument mapping.
func parseInvocations(args map[string]interface{}) ([]Invocation, error) {
	raw, ok := args["invocations"].([]interface{})
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing or invalid 'invocations' parameter")
	}

	invocations := make([]Invocation, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			// Keep the slot so submission order is preserved; the entry
			// surfaces as a per-invocation error at execution time.
			invocations = append(invocations, Invocation{})
			continue
		}
		inv := Invocation{}
		if name, ok := m["tool_name"].(string); ok {
			inv.ToolName = name
		}
		if input, ok := m["input"].(map[string]interface{}); ok {
			inv.Input = input
		}
		invocations = append(invocations, inv)
	}
	return invocations, nil
}

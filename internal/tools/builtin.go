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

// registerBuiltInTools registers all built-in tools to the registry.
func registerBuiltInTools(r *Registry) {
	register := func(tool Tool) {
		if err := r.Register(tool); err != nil {
			panic(err)
		}
	}

	register(&ToolDefinition{
		NameValue:        "glob_search",
		DescriptionValue: "Fast file pattern matching tool that works with any codebase size",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "The glob pattern to match files against",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "The directory to search in (default: current directory)",
				},
			},
			"required": []string{"pattern"},
		},
		ExecuteFunc:  globSearch,
		ValidateFunc: RequireStringArg("pattern"),
	})

	register(&ToolDefinition{
		NameValue:        "grep_search",
		DescriptionValue: "Fast content search tool that searches file contents using regular expressions",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "The regular expression pattern to search for",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "The directory to search in (default: current directory)",
				},
				"include": map[string]interface{}{
					"type":        "string",
					"description": "File pattern to include in the search",
				},
			},
			"required": []string{"pattern"},
		},
		ExecuteFunc:  grepSearch,
		ValidateFunc: RequireStringArg("pattern"),
	})

	register(&ToolDefinition{
		NameValue:        "list_files",
		DescriptionValue: "Lists files and directories in a given path, directories first",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the directory to list",
				},
				"ignore": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "List of glob patterns to ignore",
				},
			},
			"required": []string{"path"},
		},
		ExecuteFunc:  listFiles,
		ValidateFunc: RequireStringArg("path"),
	})

	register(&ToolDefinition{
		NameValue:        "view_file",
		DescriptionValue: "Reads a file from the local filesystem with numbered lines",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the file to read",
				},
				"offset": map[string]interface{}{
					"type":        "number",
					"description": "The line number to start reading from",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "The number of lines to read",
				},
			},
			"required": []string{"file_path"},
		},
		ExecuteFunc:  viewFile,
		ValidateFunc: RequireStringArg("file_path"),
	})

	register(&ToolDefinition{
		NameValue:        "edit_file",
		DescriptionValue: "Edit a file by replacing one unique occurrence of old_string with new_string; an empty old_string creates the file",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the file to modify",
				},
				"old_string": map[string]interface{}{
					"type":        "string",
					"description": "The text to replace; must occur exactly once",
				},
				"new_string": map[string]interface{}{
					"type":        "string",
					"description": "The text to replace it with",
				},
			},
			"required": []string{"file_path", "old_string", "new_string"},
		},
		ExecuteFunc: editFile,
		ValidateFunc: ChainValidation(
			RequireStringArg("file_path"),
			RequirePresentStringArg("old_string"),
			RequirePresentStringArg("new_string"),
		),
	})

	register(&ToolDefinition{
		NameValue:        "replace_file",
		DescriptionValue: "Write content to a file, overwriting existing content if the file exists",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the file to write",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The content to write to the file",
				},
			},
			"required": []string{"file_path", "content"},
		},
		ExecuteFunc: replaceFile,
		ValidateFunc: ChainValidation(
			RequireStringArg("file_path"),
			RequirePresentStringArg("content"),
		),
	})

	register(&ToolDefinition{
		NameValue:        "run_bash",
		DescriptionValue: "Execute a shell command with a denylist check and a hard timeout",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "The command to execute",
				},
				"timeout": map[string]interface{}{
					"type":        "number",
					"description": "Optional timeout in milliseconds (max 600000)",
				},
			},
			"required": []string{"command"},
		},
		ExecuteFunc:  runBash,
		ValidateFunc: RequireStringArg("command"),
	})

	register(&ToolDefinition{
		NameValue:        "read_notebook",
		DescriptionValue: "Read a Jupyter notebook file and return its parsed document",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"notebook_path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the Jupyter notebook file",
				},
			},
			"required": []string{"notebook_path"},
		},
		ExecuteFunc:  readNotebook,
		ValidateFunc: RequireStringArg("notebook_path"),
	})

	register(&ToolDefinition{
		NameValue:        "edit_notebook",
		DescriptionValue: "Replace, insert or delete a cell in a Jupyter notebook",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"notebook_path": map[string]interface{}{
					"type":        "string",
					"description": "The path to the Jupyter notebook file",
				},
				"cell_number": map[string]interface{}{
					"type":        "number",
					"description": "The index of the cell to edit (0-based)",
				},
				"new_source": map[string]interface{}{
					"type":        "string",
					"description": "The new source for the cell",
				},
				"cell_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"code", "markdown"},
					"description": "The type of the cell (required for insert)",
				},
				"edit_mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"replace", "insert", "delete"},
					"description": "The type of edit to make (default: replace)",
				},
			},
			"required": []string{"notebook_path", "cell_number", "new_source"},
		},
		ExecuteFunc: editNotebook,
		ValidateFunc: ChainValidation(
			RequireStringArg("notebook_path"),
			RequireIntArg("cell_number"),
			RequirePresentStringArg("new_source"),
		),
	})

	register(&ToolDefinition{
		NameValue:        "launch_agent",
		DescriptionValue: "Launch a new agent with search capabilities for a sub-task",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "The task for the agent to perform",
				},
			},
			"required": []string{"prompt"},
		},
		ExecuteFunc:  launchAgent,
		ValidateFunc: RequireStringArg("prompt"),
	})

	register(&ToolDefinition{
		NameValue:        batchToolName,
		DescriptionValue: "Run multiple tool invocations concurrently and report results in submission order",
		ParametersValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"description": map[string]interface{}{
					"type":        "string",
					"description": "A short description of the batch operation",
				},
				"invocations": map[string]interface{}{
					"type":        "array",
					"description": "The tool invocations to execute in parallel",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"tool_name": map[string]interface{}{"type": "string"},
							"input":     map[string]interface{}{"type": "object"},
						},
						"required": []string{"tool_name", "input"},
					},
				},
			},
			"required": []string{"description", "invocations"},
		},
		ExecuteFunc:  newBatchExecutor(r),
		ValidateFunc: RequireStringArg("description"),
	})
}

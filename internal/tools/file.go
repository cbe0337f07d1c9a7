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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"anycode/internal/errors"
	"anycode/internal/paths"
)

const binarySniffBytes = 1024

func viewFile(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	resolved := paths.Resolve(path)

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, errors.Newf(errors.CodeNotFound, "file does not exist: %s", resolved)
		}
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to stat file", statErr)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.CodeInvalidArgument, "path is a directory, not a file: %s", resolved)
	}

	limits := getLimits()
	if info.Size() > limits.MaxFileSizeBytes {
		return nil, errors.Newf(errors.CodeInvalidArgument, "file exceeds maximum size of %d bytes", limits.MaxFileSizeBytes)
	}

	data, readErr := os.ReadFile(resolved)
	if readErr != nil {
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to read file", readErr)
	}
	if isBinary(data) {
		return nil, errors.Newf(errors.CodeInvalidArgument, "binary file %s not displayed", resolved)
	}

	offset := 0
	if v, ok := intArg(args, "offset"); ok && v > 0 {
		offset = v
	}
	limit := limits.MaxViewLines
	if v, ok := intArg(args, "limit"); ok && v > 0 {
		limit = v
	}

	lines := splitFileLines(string(data))
	if len(lines) == 0 {
		return "[Empty file]", nil
	}
	if offset >= len(lines) {
		return nil, errors.Newf(errors.CodeInvalidArgument,
			"offset %d is beyond the end of the file (%d lines)", offset, len(lines))
	}

	end := offset + limit
	if end > len(lines) {
		end = len(lines)
	}

	var out strings.Builder
	for i, line := range lines[offset:end] {
		if len(line) > limits.MaxLineWidth {
			line = line[:limits.MaxLineWidth] + "... [truncated]"
		}
		if i > 0 {
			out.WriteByte('\n')
		}
		fmt.Fprintf(&out, "%6d\t%s", offset+i+1, strings.TrimRight(line, " \t\r\n"))
	}
	return out.String(), nil
}

func editFile(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	oldString, ok := args["old_string"].(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing 'old_string' parameter")
	}
	newString, ok := args["new_string"].(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing 'new_string' parameter")
	}
	resolved := paths.Resolve(path)

	// Empty old_string means create-file semantics.
	if oldString == "" {
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return nil, errors.Wrap(errors.CodeIOFailure, "failed to create parent directories", err)
		}
		if err := os.WriteFile(resolved, []byte(newString), 0o644); err != nil {
			return nil, errors.Wrap(errors.CodeIOFailure, "failed to write file", err)
		}
		return fmt.Sprintf("Created new file: %s", resolved), nil
	}

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, errors.Newf(errors.CodeNotFound, "file does not exist: %s", resolved)
		}
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to stat file", statErr)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.CodeInvalidArgument, "path is a directory, not a file: %s", resolved)
	}

	data, readErr := os.ReadFile(resolved)
	if readErr != nil {
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to read file", readErr)
	}
	content := string(data)

	// The uniqueness requirement is the core correctness guarantee: zero and
	// multiple occurrences are distinct failures and neither mutates the file.
	occurrences := strings.Count(content, oldString)
	switch {
	case occurrences == 0:
		return nil, errors.Newf(errors.CodeNotFound, "could not find the text to replace in %s", resolved)
	case occurrences > 1:
		return nil, errors.Newf(errors.CodeNotUnique,
			"found %d occurrences of the text to replace in %s; the text to replace must be unique within the file",
			occurrences, resolved)
	}

	updated := strings.Replace(content, oldString, newString, 1)
	if err := os.WriteFile(resolved, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to write file", err)
	}
	return fmt.Sprintf("Successfully edited %s", resolved), nil
}

func replaceFile(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "file_path")
	if err != nil {
		return nil, err
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing 'content' parameter")
	}
	resolved := paths.Resolve(path)

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to create parent directories", err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to write file", err)
	}
	return fmt.Sprintf("Successfully wrote to %s", resolved), nil
}

func listFiles(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return nil, err
	}
	resolved := paths.Resolve(path)
	ignore := stringListArg(args, "ignore")

	info, statErr := os.Stat(resolved)
	if statErr != nil || !info.IsDir() {
		return []string{}, nil
	}

	entries, readErr := os.ReadDir(resolved)
	if readErr != nil {
		return []string{}, nil
	}

	var dirs, files []string
	for _, entry := range entries {
		if matchesAny(entry.Name(), ignore) {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry.Name()+"/")
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	out := make([]string, 0, len(dirs)+len(files))
	out = append(out, dirs...)
	out = append(out, files...)
	return out, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinary detects binary content by a null byte in the first 1KB.
func isBinary(data []byte) bool {
	limit := len(data)
	if limit > binarySniffBytes {
		limit = binarySniffBytes
	}
	return bytes.IndexByte(data[:limit], 0) != -1
}

// splitFileLines splits text the way line-oriented readers do: a trailing
// newline does not produce a final empty line, and an empty file has no lines.
func splitFileLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

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
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"anycode/internal/errors"
	"anycode/internal/paths"
)

// SearchResult is the payload of glob_search and grep_search: matched paths
// ordered most-recently-modified first, capped with an accurate truncation
// flag.
type SearchResult struct {
	Filenames  []string `json:"filenames"`
	DurationMs int64    `json:"durationMs"`
	NumFiles   int      `json:"numFiles"`
	Truncated  bool     `json:"truncated"`
}

func globSearch(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	start := time.Now()

	pattern, err := requiredString(args, "pattern")
	if err != nil {
		return nil, err
	}
	searchPath := paths.Resolve(optionalStringArg(args, "path", "."))

	matches, err := doublestar.FilepathGlob(filepath.Join(searchPath, pattern))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "invalid glob pattern", err)
	}

	return finishSearch(matches, start), nil
}

func grepSearch(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	start := time.Now()

	pattern, err := requiredString(args, "pattern")
	if err != nil {
		return nil, err
	}
	searchPath := paths.Resolve(optionalStringArg(args, "path", "."))
	include := optionalStringArg(args, "include", "")

	var matches []string
	if rg, lookErr := exec.LookPath("rg"); lookErr == nil {
		matches, err = ripgrepSearch(ctx, rg, pattern, searchPath, include)
	} else {
		matches, err = walkSearch(ctx, pattern, searchPath, include)
	}
	if err != nil {
		return nil, err
	}

	return finishSearch(matches, start), nil
}

// finishSearch applies the shared sort/cap contract: modification time
// descending, at most searchResultCap entries, truncated flag accurate
// against the raw match count.
func finishSearch(matches []string, start time.Time) *SearchResult {
	sortByModTime(matches)
	truncated := len(matches) > searchResultCap
	if truncated {
		matches = matches[:searchResultCap]
	}
	if matches == nil {
		matches = []string{}
	}
	return &SearchResult{
		Filenames:  matches,
		DurationMs: time.Since(start).Milliseconds(),
		NumFiles:   len(matches),
		Truncated:  truncated,
	}
}

// sortByModTime orders paths newest first. Files missing at sort time rank
// as oldest.
func sortByModTime(matches []string) {
	modTimes := make(map[string]time.Time, len(matches))
	for _, path := range matches {
		if info, err := os.Stat(path); err == nil {
			modTimes[path] = info.ModTime()
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return modTimes[matches[i]].After(modTimes[matches[j]])
	})
}

// ripgrepSearch lists files matching pattern via the external rg utility,
// run from the search path so its relative output joins back cleanly.
func ripgrepSearch(ctx context.Context, rg, pattern, searchPath, include string) ([]string, error) {
	cmdArgs := []string{"-l", pattern}
	if include != "" {
		cmdArgs = append(cmdArgs, "--glob", include)
	}

	cmd := exec.CommandContext(ctx, rg, cmdArgs...)
	cmd.Dir = searchPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// rg exits 1 when nothing matched; that is an empty result.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			return nil, nil
		}
		return nil, errors.Wrap(errors.CodeIOFailure,
			strings.TrimSpace("ripgrep failed: "+strings.TrimSpace(stderr.String())), err)
	}

	var matches []string
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		if line == "" {
			continue
		}
		matches = append(matches, filepath.Join(searchPath, line))
	}
	return matches, nil
}

// walkSearch is the manual fallback: walk the tree, filter by include glob,
// read each file as text with invalid bytes replaced, and match the regex.
// A single unreadable file never fails the whole search.
func walkSearch(ctx context.Context, pattern, searchPath, include string) ([]string, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "invalid search pattern", err)
	}

	var matches []string
	walkErr := filepath.WalkDir(searchPath, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if include != "" {
			ok, matchErr := doublestar.Match(include, d.Name())
			if matchErr != nil {
				return errors.Wrap(errors.CodeInvalidArgument, "invalid include pattern", matchErr)
			}
			if !ok {
				return nil
			}
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		text := strings.ToValidUTF8(string(data), "�")
		if regex.MatchString(text) {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		if errors.CodeOf(walkErr) == errors.CodeInvalidArgument {
			return nil, walkErr
		}
		if walkErr == context.DeadlineExceeded || walkErr == context.Canceled {
			return nil, errors.Wrap(errors.CodeTimeout, "search canceled", walkErr)
		}
		return nil, errors.Wrap(errors.CodeIOFailure, "search walk failed", walkErr)
	}
	return matches, nil
}

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
	"os"
	"path/filepath"
	"testing"
	"time"

	"anycode/internal/errors"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestGlobSearchRecursive(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "print(1)\n")
	writeTestFile(t, filepath.Join(dir, "sub", "deep", "b.py"), "print(2)\n")
	writeTestFile(t, filepath.Join(dir, "c.txt"), "text\n")

	payload, err := globSearch(context.Background(), map[string]interface{}{
		"pattern": "**/*.py",
		"path":    dir,
	})
	if err != nil {
		t.Fatalf("glob_search failed: %v", err)
	}
	result := payload.(*SearchResult)
	if result.NumFiles != 2 {
		t.Fatalf("numFiles = %d, want 2: %v", result.NumFiles, result.Filenames)
	}
	if result.Truncated {
		t.Fatal("result should not be truncated")
	}
}

func TestGlobSearchSortsByModTimeDescending(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.py")
	newFile := filepath.Join(dir, "new.py")
	writeTestFile(t, oldFile, "old\n")
	writeTestFile(t, newFile, "new\n")

	base := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldFile, base, base); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}
	if err := os.Chtimes(newFile, base.Add(time.Minute), base.Add(time.Minute)); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	payload, err := globSearch(context.Background(), map[string]interface{}{
		"pattern": "*.py",
		"path":    dir,
	})
	if err != nil {
		t.Fatalf("glob_search failed: %v", err)
	}
	result := payload.(*SearchResult)
	if len(result.Filenames) != 2 {
		t.Fatalf("filenames = %v, want 2 entries", result.Filenames)
	}
	if result.Filenames[0] != newFile || result.Filenames[1] != oldFile {
		t.Fatalf("expected newest first, got %v", result.Filenames)
	}
}

func TestGlobSearchCapsAtLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < searchResultCap+5; i++ {
		writeTestFile(t, filepath.Join(dir, fmt.Sprintf("f%03d.go", i)), "package x\n")
	}

	payload, err := globSearch(context.Background(), map[string]interface{}{
		"pattern": "*.go",
		"path":    dir,
	})
	if err != nil {
		t.Fatalf("glob_search failed: %v", err)
	}
	result := payload.(*SearchResult)
	if len(result.Filenames) != searchResultCap {
		t.Fatalf("filenames = %d entries, want %d", len(result.Filenames), searchResultCap)
	}
	if result.NumFiles != searchResultCap {
		t.Fatalf("numFiles = %d, want %d", result.NumFiles, searchResultCap)
	}
	if !result.Truncated {
		t.Fatal("truncated should be true when raw matches exceed the cap")
	}
}

func TestGlobSearchNoMatches(t *testing.T) {
	payload, err := globSearch(context.Background(), map[string]interface{}{
		"pattern": "*.nothing",
		"path":    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("glob_search failed: %v", err)
	}
	result := payload.(*SearchResult)
	if result.NumFiles != 0 || result.Truncated {
		t.Fatalf("expected empty untruncated result, got %+v", result)
	}
	if result.Filenames == nil {
		t.Fatal("filenames should be an empty slice, not nil")
	}
}

func TestGlobSearchMissingPattern(t *testing.T) {
	_, err := globSearch(context.Background(), map[string]interface{}{})
	if errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeInvalidArgument)
	}
}

func TestWalkSearchFindsPattern(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "match.go"), "func TargetFunc() {}\n")
	writeTestFile(t, filepath.Join(dir, "sub", "other.go"), "func Other() {}\n")
	writeTestFile(t, filepath.Join(dir, "note.txt"), "TargetFunc mention\n")

	matches, err := walkSearch(context.Background(), "TargetFunc", dir, "")
	if err != nil {
		t.Fatalf("walkSearch failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %v, want 2 entries", matches)
	}
}

func TestWalkSearchIncludeFilter(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "match.go"), "needle\n")
	writeTestFile(t, filepath.Join(dir, "match.txt"), "needle\n")

	matches, err := walkSearch(context.Background(), "needle", dir, "*.go")
	if err != nil {
		t.Fatalf("walkSearch failed: %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != "match.go" {
		t.Fatalf("matches = %v, want only match.go", matches)
	}
}

func TestWalkSearchSkipsUnreadableFiles(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "readable.txt"), "needle\n")
	locked := filepath.Join(dir, "locked.txt")
	writeTestFile(t, locked, "needle\n")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("failed to chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	matches, err := walkSearch(context.Background(), "needle", dir, "")
	if err != nil {
		t.Fatalf("a single unreadable file must not fail the search: %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != "readable.txt" {
		t.Fatalf("matches = %v, want only readable.txt", matches)
	}
}

func TestWalkSearchInvalidPattern(t *testing.T) {
	_, err := walkSearch(context.Background(), "([", t.TempDir(), "")
	if errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeInvalidArgument)
	}
}

func TestGrepSearchThroughRegistry(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "hit.go"), "package hit // sentinel_marker\n")
	writeTestFile(t, filepath.Join(dir, "miss.go"), "package miss\n")

	registry := NewRegistry(testLogger())
	result := registry.Execute(context.Background(), "grep_search", map[string]interface{}{
		"pattern": "sentinel_marker",
		"path":    dir,
	})
	if result.Err != nil {
		t.Fatalf("grep_search failed: %v", result.Err)
	}
	search := result.Result.(*SearchResult)
	if search.NumFiles != 1 {
		t.Fatalf("numFiles = %d, want 1: %v", search.NumFiles, search.Filenames)
	}
	if filepath.Base(search.Filenames[0]) != "hit.go" {
		t.Fatalf("unexpected match: %v", search.Filenames)
	}
}

func TestFinishSearchTruncationBoundary(t *testing.T) {
	exact := make([]string, searchResultCap)
	for i := range exact {
		exact[i] = fmt.Sprintf("f%d", i)
	}
	result := finishSearch(exact, time.Now())
	if result.Truncated {
		t.Fatal("exactly cap matches must not set truncated")
	}

	over := append(exact, "one-more")
	result = finishSearch(over, time.Now())
	if !result.Truncated {
		t.Fatal("cap+1 matches must set truncated")
	}
	if len(result.Filenames) != searchResultCap {
		t.Fatalf("filenames = %d entries, want %d", len(result.Filenames), searchResultCap)
	}
}

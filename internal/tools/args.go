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
	"strings"

	"anycode/internal/errors"
)

// stringArg returns a non-empty string argument.
func stringArg(args map[string]interface{}, key string) (string, bool) {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// optionalStringArg returns a string argument or the fallback when absent.
func optionalStringArg(args map[string]interface{}, key, fallback string) string {
	if value, ok := stringArg(args, key); ok {
		return value
	}
	return fallback
}

// intArg accepts int and whole-valued float64 (how JSON numbers decode).
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// stringListArg converts a JSON array argument into a string slice.
func stringListArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// requiredString extracts a required string argument or returns an
// invalid-argument error.
func requiredString(args map[string]interface{}, key string) (string, error) {
	value, ok := stringArg(args, key)
	if !ok {
		return "", errors.Newf(errors.CodeInvalidArgument, "missing or invalid '%s' parameter", key)
	}
	return value, nil
}

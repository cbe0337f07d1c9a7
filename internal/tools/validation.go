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

// ValidationRule checks tool arguments and returns an error if invalid.
type ValidationRule func(args map[string]interface{}) error

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args map[string]interface{}) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireStringArg ensures a string argument is present and non-empty.
func RequireStringArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return errors.Newf(errors.CodeInvalidArgument, "missing or invalid '%s' parameter", key)
		}
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return errors.Newf(errors.CodeInvalidArgument, "missing or invalid '%s' parameter", key)
		}
		return nil
	}
}

// RequirePresentStringArg ensures a string argument is present; the empty
// string is accepted (edit_file uses "" for create-file semantics).
func RequirePresentStringArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return errors.Newf(errors.CodeInvalidArgument, "missing '%s' parameter", key)
		}
		if _, ok := value.(string); !ok {
			return errors.Newf(errors.CodeInvalidArgument, "'%s' parameter must be a string", key)
		}
		return nil
	}
}

// RequireIntArg ensures a non-negative integer argument is present. JSON
// numbers arrive as float64, so whole-valued floats are accepted.
func RequireIntArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		if _, ok := intArg(args, key); !ok {
			return errors.Newf(errors.CodeInvalidArgument, "missing or invalid '%s' parameter", key)
		}
		return nil
	}
}

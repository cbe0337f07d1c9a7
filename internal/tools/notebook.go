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
	"strings"

	"anycode/internal/errors"
	"anycode/internal/notebook"
	"anycode/internal/paths"
)

// Notebook edit modes.
const (
	editModeReplace = "replace"
	editModeInsert  = "insert"
	editModeDelete  = "delete"
)

func readNotebook(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "notebook_path")
	if err != nil {
		return nil, err
	}
	return notebook.Load(paths.Resolve(path))
}

func editNotebook(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, err := requiredString(args, "notebook_path")
	if err != nil {
		return nil, err
	}
	cellNumber, ok := intArg(args, "cell_number")
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing or invalid 'cell_number' parameter")
	}
	if cellNumber < 0 {
		return nil, errors.Newf(errors.CodeInvalidArgument, "cell number must be non-negative: %d", cellNumber)
	}
	newSource, ok := args["new_source"].(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument, "missing 'new_source' parameter")
	}
	cellType := optionalStringArg(args, "cell_type", "")
	editMode := optionalStringArg(args, "edit_mode", editModeReplace)

	resolved := paths.Resolve(path)
	if !strings.HasSuffix(resolved, notebook.Extension) {
		return nil, errors.Newf(errors.CodeInvalidArgument, "file is not a Jupyter notebook: %s", resolved)
	}

	// Only insert may synthesize a fresh document when the target is missing.
	var doc *notebook.Document
	if _, statErr := os.Stat(resolved); statErr != nil {
		if !os.IsNotExist(statErr) {
			return nil, errors.Wrap(errors.CodeIOFailure, "failed to stat notebook", statErr)
		}
		if editMode != editModeInsert {
			return nil, errors.Newf(errors.CodeNotFound, "notebook does not exist: %s", resolved)
		}
		doc = notebook.NewDocument()
	} else {
		doc, err = notebook.Load(resolved)
		if err != nil {
			return nil, err
		}
	}

	var message string
	switch editMode {
	case editModeReplace:
		if err := doc.ReplaceCell(cellNumber, newSource, cellType); err != nil {
			return nil, err
		}
		message = fmt.Sprintf("Replaced cell %d", cellNumber)
	case editModeInsert:
		at, err := doc.InsertCell(cellNumber, newSource, cellType)
		if err != nil {
			return nil, err
		}
		message = fmt.Sprintf("Inserted new %s cell at position %d", cellType, at)
	case editModeDelete:
		deletedType, err := doc.DeleteCell(cellNumber)
		if err != nil {
			return nil, err
		}
		message = fmt.Sprintf("Deleted %s cell at position %d", deletedType, cellNumber)
	default:
		return nil, errors.Newf(errors.CodeInvalidArgument, "invalid edit_mode: %s", editMode)
	}

	// Every successful mutation rewrites the whole document.
	if err := doc.Save(resolved); err != nil {
		return nil, err
	}
	return message, nil
}

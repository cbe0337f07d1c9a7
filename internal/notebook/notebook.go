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

// Package notebook models Jupyter notebook documents as an ordered cell
// sequence plus metadata, persisted in the standard nbformat JSON schema so
// external tooling can read the files unmodified.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"anycode/internal/errors"
)

// Extension is the required filename extension for notebook documents.
const Extension = ".ipynb"

// Cell types understood by the editor.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
)

// Cell is one entry in a notebook's ordered cell sequence. Outputs and
// ExecutionCount are only meaningful for code cells.
type Cell struct {
	CellType       string
	Source         []string
	Metadata       map[string]interface{}
	Outputs        []interface{}
	ExecutionCount *int
}

// Document is a parsed notebook: ordered cells, metadata and format version.
type Document struct {
	Cells         []Cell                 `json:"cells"`
	Metadata      map[string]interface{} `json:"metadata"`
	NBFormat      int                    `json:"nbformat"`
	NBFormatMinor int                    `json:"nbformat_minor"`
}

// MarshalJSON writes the conventional interchange shape: code cells always
// carry outputs and execution_count (null when never executed), markdown
// cells carry neither.
func (c Cell) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"cell_type": c.CellType,
		"source":    c.sourceOrEmpty(),
		"metadata":  c.metadataOrEmpty(),
	}
	if c.CellType == CellTypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []interface{}{}
		}
		out["outputs"] = outputs
		if c.ExecutionCount != nil {
			out["execution_count"] = *c.ExecutionCount
		} else {
			out["execution_count"] = nil
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both list-of-lines and single-string source forms, as
// nbformat readers conventionally do.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw struct {
		CellType       string                 `json:"cell_type"`
		Source         json.RawMessage        `json:"source"`
		Metadata       map[string]interface{} `json:"metadata"`
		Outputs        []interface{}          `json:"outputs"`
		ExecutionCount *int                   `json:"execution_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.CellType = raw.CellType
	c.Metadata = raw.Metadata
	c.Outputs = raw.Outputs
	c.ExecutionCount = raw.ExecutionCount
	c.Source = nil
	if len(raw.Source) > 0 {
		var lines []string
		if err := json.Unmarshal(raw.Source, &lines); err == nil {
			c.Source = lines
		} else {
			var joined string
			if err := json.Unmarshal(raw.Source, &joined); err != nil {
				return fmt.Errorf("cell source must be a string or list of strings")
			}
			c.Source = SplitSource(joined)
		}
	}
	return nil
}

func (c Cell) sourceOrEmpty() []string {
	if c.Source == nil {
		return []string{}
	}
	return c.Source
}

func (c Cell) metadataOrEmpty() map[string]interface{} {
	if c.Metadata == nil {
		return map[string]interface{}{}
	}
	return c.Metadata
}

// SplitSource converts cell source text into the ordered line sequence the
// persisted format stores.
func SplitSource(source string) []string {
	return strings.Split(source, "\n")
}

// NewDocument returns an empty notebook with default metadata and format
// version, used when an insert targets a document that does not exist yet.
func NewDocument() *Document {
	return &Document{
		Cells: []Cell{},
		Metadata: map[string]interface{}{
			"kernelspec": map[string]interface{}{
				"display_name": "Python 3",
				"language":     "python",
				"name":         "python3",
			},
			"language_info": map[string]interface{}{
				"codemirror_mode": map[string]interface{}{
					"name":    "ipython",
					"version": 3,
				},
				"file_extension":     ".py",
				"mimetype":           "text/x-python",
				"name":               "python",
				"nbconvert_exporter": "python",
				"pygments_lexer":     "ipython3",
				"version":            "3.8.0",
			},
		},
		NBFormat:      4,
		NBFormatMinor: 4,
	}
}

// Load parses the notebook at path. The extension and the document structure
// fail with distinct error codes so callers can tell a misnamed file from a
// corrupt one.
func Load(path string) (*Document, error) {
	if !strings.HasSuffix(path, Extension) {
		return nil, errors.Newf(errors.CodeInvalidArgument, "file is not a Jupyter notebook: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeNotFound, "notebook does not exist: %s", path)
		}
		return nil, errors.Wrap(errors.CodeIOFailure, "failed to read notebook", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "notebook is not valid JSON", err)
	}
	return doc, nil
}

// Save re-serializes the whole document to path with 2-space indentation.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeUnknown, "failed to serialize notebook", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.CodeIOFailure, "failed to write notebook", err)
	}
	return nil
}

// ReplaceCell replaces the source of the cell at index. When cellType is
// empty the existing cell's type is kept. A resulting code cell always has
// its outputs and execution state cleared; editing code invalidates any
// prior execution result.
func (d *Document) ReplaceCell(index int, source, cellType string) error {
	if index < 0 || index >= len(d.Cells) {
		return errors.Newf(errors.CodeInvalidArgument, "cell %d does not exist in the notebook", index)
	}
	cell := &d.Cells[index]
	if cellType == "" {
		cellType = cell.CellType
		if cellType == "" {
			cellType = CellTypeCode
		}
	}
	cell.Source = SplitSource(source)
	cell.CellType = cellType
	if cellType == CellTypeCode {
		cell.Outputs = []interface{}{}
		cell.ExecutionCount = nil
	}
	return nil
}

// InsertCell inserts a new cell at index, clamping out-of-range indices to an
// append rather than erroring. An explicit cell type is required.
func (d *Document) InsertCell(index int, source, cellType string) (int, error) {
	if cellType == "" {
		return 0, errors.New(errors.CodeInvalidArgument, "cell type is required for insert mode")
	}
	cell := Cell{
		CellType: cellType,
		Source:   SplitSource(source),
		Metadata: map[string]interface{}{},
	}
	if cellType == CellTypeCode {
		cell.Outputs = []interface{}{}
		cell.ExecutionCount = nil
	}
	if index > len(d.Cells) {
		index = len(d.Cells)
	}
	if index < 0 {
		index = 0
	}
	d.Cells = append(d.Cells, Cell{})
	copy(d.Cells[index+1:], d.Cells[index:])
	d.Cells[index] = cell
	return index, nil
}

// DeleteCell removes the cell at index and reports the removed cell's type.
func (d *Document) DeleteCell(index int) (string, error) {
	if index < 0 || index >= len(d.Cells) {
		return "", errors.Newf(errors.CodeInvalidArgument, "cell %d does not exist in the notebook", index)
	}
	cellType := d.Cells[index].CellType
	if cellType == "" {
		cellType = "unknown"
	}
	d.Cells = append(d.Cells[:index], d.Cells[index+1:]...)
	return cellType, nil
}

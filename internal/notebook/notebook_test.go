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

package notebook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"anycode/internal/errors"
)

func TestLoadRejectsWrongExtension(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "plain.txt"))
	if err == nil {
		t.Fatal("expected error for non-notebook extension")
	}
	if errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeInvalidArgument)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ipynb"))
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeNotFound)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ipynb")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	_, err := Load(path)
	if errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("code = %q, want %q", errors.CodeOf(err), errors.CodeInvalidArgument)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nb.ipynb")
	doc := NewDocument()
	if _, err := doc.InsertCell(0, "print('hi')", CellTypeCode); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Cells) != 1 {
		t.Fatalf("cells = %d, want 1", len(loaded.Cells))
	}
	if loaded.NBFormat != 4 || loaded.NBFormatMinor != 4 {
		t.Fatalf("format version = %d/%d, want 4/4", loaded.NBFormat, loaded.NBFormatMinor)
	}
}

func TestCodeCellSerializesNullExecutionCount(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.InsertCell(0, "x = 1", CellTypeCode); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"execution_count":null`) {
		t.Fatalf("code cell should serialize execution_count as null: %s", data)
	}
	if !strings.Contains(string(data), `"outputs":[]`) {
		t.Fatalf("code cell should serialize empty outputs: %s", data)
	}
}

func TestMarkdownCellOmitsCodeFields(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.InsertCell(0, "# Title", CellTypeMarkdown); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	data, err := json.Marshal(doc.Cells[0])
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "outputs") || strings.Contains(string(data), "execution_count") {
		t.Fatalf("markdown cell should not carry code fields: %s", data)
	}
}

func TestUnmarshalStringSource(t *testing.T) {
	raw := `{"cell_type":"code","source":"a\nb","metadata":{},"outputs":[],"execution_count":2}`
	var cell Cell
	if err := json.Unmarshal([]byte(raw), &cell); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(cell.Source) != 2 || cell.Source[0] != "a" || cell.Source[1] != "b" {
		t.Fatalf("unexpected source: %#v", cell.Source)
	}
	if cell.ExecutionCount == nil || *cell.ExecutionCount != 2 {
		t.Fatalf("unexpected execution count: %v", cell.ExecutionCount)
	}
}

func TestReplaceCellResetsCodeState(t *testing.T) {
	two := 2
	doc := &Document{
		Cells: []Cell{{
			CellType:       CellTypeCode,
			Source:         []string{"old"},
			Outputs:        []interface{}{map[string]interface{}{"output_type": "stream"}},
			ExecutionCount: &two,
		}},
		NBFormat:      4,
		NBFormatMinor: 4,
	}
	if err := doc.ReplaceCell(0, "new source", ""); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	cell := doc.Cells[0]
	if cell.CellType != CellTypeCode {
		t.Fatalf("cell type should default to existing type, got %q", cell.CellType)
	}
	if len(cell.Outputs) != 0 {
		t.Fatalf("outputs should be cleared, got %#v", cell.Outputs)
	}
	if cell.ExecutionCount != nil {
		t.Fatalf("execution count should be unset, got %v", *cell.ExecutionCount)
	}
	if cell.Source[0] != "new source" {
		t.Fatalf("unexpected source: %#v", cell.Source)
	}
}

func TestReplaceCellOutOfRange(t *testing.T) {
	doc := NewDocument()
	if err := doc.ReplaceCell(0, "x", ""); err == nil {
		t.Fatal("expected error replacing a cell in an empty notebook")
	}
}

func TestInsertCellClampsIndex(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.InsertCell(0, "first", CellTypeCode); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	at, err := doc.InsertCell(99, "appended", CellTypeMarkdown)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if at != 1 {
		t.Fatalf("clamped index = %d, want 1", at)
	}
	if len(doc.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(doc.Cells))
	}
	last := doc.Cells[len(doc.Cells)-1]
	if last.CellType != CellTypeMarkdown || last.Source[0] != "appended" {
		t.Fatalf("new cell should be last: %#v", last)
	}
}

func TestInsertCellRequiresType(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.InsertCell(0, "x", ""); err == nil {
		t.Fatal("expected error for missing cell type")
	}
}

func TestInsertCellMiddle(t *testing.T) {
	doc := NewDocument()
	doc.InsertCell(0, "a", CellTypeCode)
	doc.InsertCell(1, "c", CellTypeCode)
	if _, err := doc.InsertCell(1, "b", CellTypeMarkdown); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	got := []string{doc.Cells[0].Source[0], doc.Cells[1].Source[0], doc.Cells[2].Source[0]}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestDeleteCellReportsType(t *testing.T) {
	doc := NewDocument()
	doc.InsertCell(0, "a", CellTypeMarkdown)
	cellType, err := doc.DeleteCell(0)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if cellType != CellTypeMarkdown {
		t.Fatalf("deleted type = %q, want markdown", cellType)
	}
	if len(doc.Cells) != 0 {
		t.Fatalf("cells = %d, want 0", len(doc.Cells))
	}

	if _, err := doc.DeleteCell(0); err == nil {
		t.Fatal("expected error deleting from empty notebook")
	}
}

/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chunks

import (
	"fmt"
	"strings"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// Formula is a column expression already rendered to pandas, with the column
// headers it reads.
type Formula struct {
	Raw        string
	Pandas     string
	References []string
}

// Reads reports whether the formula references header.
func (f Formula) Reads(header string) bool {
	return containsString(f.References, header)
}

// AddColumn inserts a column, zero-filled unless it carries a formula.
type AddColumn struct {
	chunk.Base
	SheetIndex  int
	Header      string
	ColumnIndex int
	Formula     *Formula
}

func NewAddColumn(prev, post *state.State, sheetIndex int, header string, columnIndex int) *AddColumn {
	return &AddColumn{
		Base:        chunk.NewBase(prev, post),
		SheetIndex:  sheetIndex,
		Header:      header,
		ColumnIndex: columnIndex,
	}
}

func (c *AddColumn) DisplayName() string { return "Added column" }

func (c *AddColumn) DescriptionComment() string {
	return fmt.Sprintf("Added column %s", c.Header)
}

func (c *AddColumn) Render() ([]string, []string, error) {
	value := "0"
	if c.Formula != nil {
		value = c.Formula.Pandas
	}
	return []string{
		fmt.Sprintf("%s.insert(%d, %s, %s)", dfName(c.Prev, c.SheetIndex), c.ColumnIndex, chunk.PyString(c.Header), value),
	}, nil, nil
}

func (c *AddColumn) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *AddColumn) EditedSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *AddColumn) SourceSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *AddColumn) with(post *state.State, header string, formula *Formula) *AddColumn {
	out := NewAddColumn(c.Prev, post, c.SheetIndex, header, c.ColumnIndex)
	out.Formula = formula
	return out
}

func (c *AddColumn) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	switch o := next.(type) {
	case *SetColumnFormula:
		if o.SheetIndex != c.SheetIndex || o.Header != c.Header || o.Formula.Reads(c.Header) {
			return nil
		}
		f := o.Formula
		return c.with(o.Post, c.Header, &f)
	case *RenameColumn:
		if o.SheetIndex != c.SheetIndex || o.OldHeader != c.Header {
			return nil
		}
		return c.with(o.Post, o.NewHeader, c.Formula)
	case *DeleteColumns:
		if o.SheetIndex != c.SheetIndex || !containsString(o.Headers, c.Header) {
			return nil
		}
		rest := withoutString(o.Headers, c.Header)
		if len(rest) == 0 {
			return chunk.NewEmpty(c.Prev, o.Post)
		}
		return NewDeleteColumns(c.Prev, o.Post, c.SheetIndex, rest)
	}
	return nil
}

func (c *AddColumn) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "header":
		return c.Header, true
	case "column_index":
		return c.ColumnIndex, true
	}
	return nil, false
}

func (c *AddColumn) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*AddColumn)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// DeleteColumns drops columns from one sheet.
type DeleteColumns struct {
	chunk.Base
	SheetIndex int
	Headers    []string
}

func NewDeleteColumns(prev, post *state.State, sheetIndex int, headers []string) *DeleteColumns {
	return &DeleteColumns{Base: chunk.NewBase(prev, post), SheetIndex: sheetIndex, Headers: headers}
}

func (c *DeleteColumns) DisplayName() string { return "Deleted columns" }

func (c *DeleteColumns) DescriptionComment() string {
	return fmt.Sprintf("Deleted columns %s", strings.Join(c.Headers, ", "))
}

func (c *DeleteColumns) Render() ([]string, []string, error) {
	return []string{
		fmt.Sprintf("%s.drop(%s, axis=1, inplace=True)", dfName(c.Prev, c.SheetIndex), chunk.PyList(c.Headers)),
	}, nil, nil
}

func (c *DeleteColumns) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *DeleteColumns) EditedSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *DeleteColumns) SourceSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *DeleteColumns) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*DeleteColumns)
	if !ok || !c.ParamsMatch(o, "sheet_index") {
		return nil
	}
	headers := append([]string(nil), c.Headers...)
	for _, h := range o.Headers {
		if !containsString(headers, h) {
			headers = append(headers, h)
		}
	}
	return NewDeleteColumns(c.Prev, o.Post, c.SheetIndex, headers)
}

func (c *DeleteColumns) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "headers":
		return c.Headers, true
	}
	return nil, false
}

func (c *DeleteColumns) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*DeleteColumns)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// RenameColumn renames one column of one sheet.
type RenameColumn struct {
	chunk.Base
	SheetIndex int
	OldHeader  string
	NewHeader  string
}

func NewRenameColumn(prev, post *state.State, sheetIndex int, oldHeader, newHeader string) *RenameColumn {
	return &RenameColumn{Base: chunk.NewBase(prev, post), SheetIndex: sheetIndex, OldHeader: oldHeader, NewHeader: newHeader}
}

func (c *RenameColumn) DisplayName() string { return "Renamed column" }

func (c *RenameColumn) DescriptionComment() string {
	return fmt.Sprintf("Renamed column %s to %s", c.OldHeader, c.NewHeader)
}

func (c *RenameColumn) Render() ([]string, []string, error) {
	return []string{
		fmt.Sprintf("%s.rename(columns=%s, inplace=True)", dfName(c.Prev, c.SheetIndex),
			chunk.PyDict([]string{c.OldHeader}, []string{c.NewHeader})),
	}, nil, nil
}

func (c *RenameColumn) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *RenameColumn) EditedSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *RenameColumn) SourceSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *RenameColumn) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*RenameColumn)
	if !ok || o.SheetIndex != c.SheetIndex || o.OldHeader != c.NewHeader {
		return nil
	}
	if o.NewHeader == c.OldHeader {
		return chunk.NewEmpty(c.Prev, o.Post)
	}
	return NewRenameColumn(c.Prev, o.Post, c.SheetIndex, c.OldHeader, o.NewHeader)
}

func (c *RenameColumn) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "old_header":
		return c.OldHeader, true
	case "new_header":
		return c.NewHeader, true
	}
	return nil, false
}

func (c *RenameColumn) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*RenameColumn)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// SetColumnFormula overwrites a column with an expression over other columns.
type SetColumnFormula struct {
	chunk.Base
	SheetIndex int
	Header     string
	Formula    Formula
}

func NewSetColumnFormula(prev, post *state.State, sheetIndex int, header string, formula Formula) *SetColumnFormula {
	return &SetColumnFormula{Base: chunk.NewBase(prev, post), SheetIndex: sheetIndex, Header: header, Formula: formula}
}

func (c *SetColumnFormula) DisplayName() string { return "Set column formula" }

func (c *SetColumnFormula) DescriptionComment() string {
	return fmt.Sprintf("Set formula of %s", c.Header)
}

func (c *SetColumnFormula) Render() ([]string, []string, error) {
	return []string{
		fmt.Sprintf("%s[%s] = %s", dfName(c.Prev, c.SheetIndex), chunk.PyString(c.Header), c.Formula.Pandas),
	}, nil, nil
}

func (c *SetColumnFormula) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *SetColumnFormula) EditedSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *SetColumnFormula) SourceSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *SetColumnFormula) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*SetColumnFormula)
	if !ok || !c.ParamsMatch(o, "sheet_index", "header") || o.Formula.Reads(o.Header) {
		return nil
	}
	return NewSetColumnFormula(c.Prev, o.Post, o.SheetIndex, o.Header, o.Formula)
}

func (c *SetColumnFormula) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "header":
		return c.Header, true
	case "formula":
		return c.Formula.Raw, true
	}
	return nil, false
}

func (c *SetColumnFormula) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*SetColumnFormula)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

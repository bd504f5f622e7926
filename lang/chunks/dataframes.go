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

// DuplicateDataframe deep copies a sheet into a new one appended at the end.
type DuplicateDataframe struct {
	chunk.Base
	SheetIndex int
	NewName    string
}

func NewDuplicateDataframe(prev, post *state.State, sheetIndex int, newName string) *DuplicateDataframe {
	return &DuplicateDataframe{Base: chunk.NewBase(prev, post), SheetIndex: sheetIndex, NewName: newName}
}

func (c *DuplicateDataframe) DisplayName() string { return "Duplicated dataframe" }

func (c *DuplicateDataframe) DescriptionComment() string {
	return fmt.Sprintf("Duplicated %s", dfName(c.Prev, c.SheetIndex))
}

func (c *DuplicateDataframe) Render() ([]string, []string, error) {
	return []string{fmt.Sprintf("%s = %s.copy(deep=True)", c.NewName, dfName(c.Prev, c.SheetIndex))}, nil, nil
}

func (c *DuplicateDataframe) CreatedSheetIndexes() chunk.IndexSet {
	return chunk.Indexes(c.Prev.Len())
}

func (c *DuplicateDataframe) EditedSheetIndexes() chunk.IndexSet {
	return c.CreatedSheetIndexes()
}

func (c *DuplicateDataframe) SourceSheetIndexes() chunk.IndexSet {
	return chunk.Indexes(c.SheetIndex)
}

func (c *DuplicateDataframe) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "new_name":
		return c.NewName, true
	}
	return nil, false
}

func (c *DuplicateDataframe) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*DuplicateDataframe)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// DeleteDataframe removes sheets. Indexes are in the numbering of the state
// before the deletion. Every later sheet is renumbered, so the edited set is
// Unknown and the deletion itself is reported through DeletedSheetIndexes.
type DeleteDataframe struct {
	chunk.Base
	Indexes []int
}

func NewDeleteDataframe(prev, post *state.State, indexes []int) *DeleteDataframe {
	return &DeleteDataframe{Base: chunk.NewBase(prev, post), Indexes: chunk.Indexes(indexes...).Slice()}
}

func (c *DeleteDataframe) names() []string {
	out := make([]string, len(c.Indexes))
	for i, idx := range c.Indexes {
		out[i] = dfName(c.Prev, idx)
	}
	return out
}

func (c *DeleteDataframe) DisplayName() string { return "Deleted dataframe" }

func (c *DeleteDataframe) DescriptionComment() string {
	return "Deleted " + strings.Join(c.names(), ", ")
}

func (c *DeleteDataframe) Render() ([]string, []string, error) {
	names := c.names()
	code := make([]string, len(names))
	for i, name := range names {
		code[i] = "del " + name
	}
	return code, nil, nil
}

func (c *DeleteDataframe) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *DeleteDataframe) SourceSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *DeleteDataframe) DeletedSheetIndexes() chunk.IndexSet {
	return chunk.Indexes(c.Indexes...)
}

// CombineLeft merges an adjacent earlier deletion. The later deletion's
// indexes are mapped back through the earlier one's renumbering.
func (c *DeleteDataframe) CombineLeft(prev chunk.CodeChunk) chunk.CodeChunk {
	p, ok := prev.(*DeleteDataframe)
	if !ok || p.Prev == nil {
		return nil
	}
	deleted := chunk.Indexes(p.Indexes...)
	surviving := make([]int, 0, p.Prev.Len())
	for i := 0; i < p.Prev.Len(); i++ {
		if !deleted.Contains(i) {
			surviving = append(surviving, i)
		}
	}
	merged := append([]int(nil), p.Indexes...)
	for _, idx := range c.Indexes {
		if idx < 0 || idx >= len(surviving) {
			return nil
		}
		merged = append(merged, surviving[idx])
	}
	return NewDeleteDataframe(p.Prev, c.Post, merged)
}

func (c *DeleteDataframe) field(key string) (interface{}, bool) {
	switch key {
	case "indexes":
		return c.Indexes, true
	}
	return nil, false
}

func (c *DeleteDataframe) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*DeleteDataframe)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// SetDataframeFormat records display formatting. It renders no code of its
// own; formats surface in Excel exports.
type SetDataframeFormat struct {
	chunk.Base
	SheetIndex int
	Format     state.DataframeFormat
}

func NewSetDataframeFormat(prev, post *state.State, sheetIndex int, format state.DataframeFormat) *SetDataframeFormat {
	return &SetDataframeFormat{Base: chunk.NewBase(prev, post), SheetIndex: sheetIndex, Format: format}
}

func (c *SetDataframeFormat) DisplayName() string { return "Formatted dataframe" }

func (c *SetDataframeFormat) DescriptionComment() string {
	return fmt.Sprintf("Formatted %s", dfName(c.Prev, c.SheetIndex))
}

func (c *SetDataframeFormat) Render() ([]string, []string, error) {
	if err := c.Format.Validate(); err != nil {
		return nil, nil, &chunk.ConfigError{Chunk: c.DisplayName(), Option: "format", Value: err.Error()}
	}
	return nil, nil, nil
}

func (c *SetDataframeFormat) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *SetDataframeFormat) EditedSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *SetDataframeFormat) SourceSheetIndexes() chunk.IndexSet { return chunk.Indexes(c.SheetIndex) }

func (c *SetDataframeFormat) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*SetDataframeFormat)
	if !ok || !c.ParamsMatch(o, "sheet_index") {
		return nil
	}
	return NewSetDataframeFormat(c.Prev, o.Post, o.SheetIndex, o.Format)
}

func (c *SetDataframeFormat) field(key string) (interface{}, bool) {
	switch key {
	case "sheet_index":
		return c.SheetIndex, true
	case "format":
		return c.Format, true
	}
	return nil, false
}

func (c *SetDataframeFormat) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*SetDataframeFormat)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

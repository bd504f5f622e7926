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

package steps

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/state"
)

type AddColumnParams struct {
	SheetIndex   int    `json:"sheet_index"`
	ColumnHeader string `json:"column_header"`
	// ColumnIndex is where the column goes; it is appended when unset.
	ColumnIndex *int `json:"column_header_index,omitempty"`
}

// AddColumn inserts a zero-filled column.
type AddColumn struct{}

// Type implements pipeline.StepPerformer.
func (s *AddColumn) Type() pipeline.StepType { return TypeAddColumn }

// IsImport implements pipeline.StepPerformer.
func (s *AddColumn) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *AddColumn) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p AddColumnParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	df, err := sheet(prev, p.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	idx := -1
	if p.ColumnIndex != nil {
		idx = *p.ColumnIndex
	}
	values := make([]interface{}, df.NumRows())
	for i := range values {
		values[i] = 0.0
	}
	next, err := df.InsertColumn(idx, p.ColumnHeader, values)
	if err != nil {
		return nil, nil, err
	}
	post, err := prev.WithFrame(p.SheetIndex, next)
	if err != nil {
		return nil, nil, err
	}
	return post, nil, nil
}

// Transpile implements pipeline.StepPerformer.
func (s *AddColumn) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p AddColumnParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	idx := post.Dfs[p.SheetIndex].ColumnIndex(p.ColumnHeader)
	return []chunk.CodeChunk{chunks.NewAddColumn(prev, post, p.SheetIndex, p.ColumnHeader, idx)}, nil
}

type DeleteColumnsParams struct {
	SheetIndex    int      `json:"sheet_index"`
	ColumnHeaders []string `json:"column_headers"`
}

type DeleteColumns struct{}

// Type implements pipeline.StepPerformer.
func (s *DeleteColumns) Type() pipeline.StepType { return TypeDeleteColumns }

// IsImport implements pipeline.StepPerformer.
func (s *DeleteColumns) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *DeleteColumns) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p DeleteColumnsParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	df, err := sheet(prev, p.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	next, err := df.DropColumns(p.ColumnHeaders)
	if err != nil {
		return nil, nil, err
	}
	post, err := prev.WithFrame(p.SheetIndex, next)
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *DeleteColumns) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p DeleteColumnsParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewDeleteColumns(prev, post, p.SheetIndex, p.ColumnHeaders)}, nil
}

type RenameColumnParams struct {
	SheetIndex      int    `json:"sheet_index"`
	OldColumnHeader string `json:"old_column_header"`
	NewColumnHeader string `json:"new_column_header"`
}

type RenameColumn struct{}

// Type implements pipeline.StepPerformer.
func (s *RenameColumn) Type() pipeline.StepType { return TypeRenameColumn }

// IsImport implements pipeline.StepPerformer.
func (s *RenameColumn) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *RenameColumn) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p RenameColumnParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	df, err := sheet(prev, p.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	next, err := df.RenameColumn(p.OldColumnHeader, p.NewColumnHeader)
	if err != nil {
		return nil, nil, err
	}
	post, err := prev.WithFrame(p.SheetIndex, next)
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *RenameColumn) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p RenameColumnParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewRenameColumn(prev, post, p.SheetIndex, p.OldColumnHeader, p.NewColumnHeader)}, nil
}

type SetColumnFormulaParams struct {
	SheetIndex   int    `json:"sheet_index"`
	ColumnHeader string `json:"column_header"`
	Formula      string `json:"formula" jsonschema:"description=arithmetic over column headers such as [Price] * Quantity"`
}

// SetColumnFormula overwrites an existing column with a formula evaluated
// row by row.
type SetColumnFormula struct{}

// Type implements pipeline.StepPerformer.
func (s *SetColumnFormula) Type() pipeline.StepType { return TypeSetColumnFormula }

// IsImport implements pipeline.StepPerformer.
func (s *SetColumnFormula) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *SetColumnFormula) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p SetColumnFormulaParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	df, err := sheet(prev, p.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	if df.ColumnIndex(p.ColumnHeader) < 0 {
		return nil, nil, errors.Errorf("column %q not found", p.ColumnHeader)
	}
	f, err := parseFormula(p.Formula)
	if err != nil {
		return nil, nil, err
	}
	// operators pandas cannot express are rejected before anything runs
	if _, err := f.pandas(prev.DfNames[p.SheetIndex]); err != nil {
		return nil, nil, errors.Wrapf(err, "formula %q", p.Formula)
	}
	values, err := f.evaluate(df)
	if err != nil {
		return nil, nil, err
	}
	next, err := df.SetColumn(p.ColumnHeader, values)
	if err != nil {
		return nil, nil, err
	}
	post, err := prev.WithFrame(p.SheetIndex, next)
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *SetColumnFormula) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p SetColumnFormulaParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	f, err := parseFormula(p.Formula)
	if err != nil {
		return nil, err
	}
	cf, err := f.chunkFormula(prev.DfNames[p.SheetIndex])
	if err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewSetColumnFormula(prev, post, p.SheetIndex, p.ColumnHeader, cf)}, nil
}

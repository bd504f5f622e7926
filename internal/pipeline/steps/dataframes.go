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
	"sort"

	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

type DuplicateDataframeParams struct {
	SheetIndex int `json:"sheet_index"`
}

// DuplicateDataframe appends a deep copy of a sheet named <name>_copy.
type DuplicateDataframe struct{}

// Type implements pipeline.StepPerformer.
func (s *DuplicateDataframe) Type() pipeline.StepType { return TypeDuplicateDataframe }

// IsImport implements pipeline.StepPerformer.
func (s *DuplicateDataframe) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *DuplicateDataframe) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p DuplicateDataframeParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	df, err := sheet(prev, p.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	name := frame.ValidDataframeName(prev.DfNames, prev.DfNames[p.SheetIndex]+"_copy")
	post, _ := prev.WithDataframe(df.Clone(), name, state.SourceDuplicated)
	post, err = post.WithFormat(post.Len()-1, prev.DfFormats[p.SheetIndex])
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *DuplicateDataframe) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p DuplicateDataframeParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewDuplicateDataframe(prev, post, p.SheetIndex, post.DfNames[post.Len()-1])}, nil
}

type DeleteDataframeParams struct {
	SheetIndexes []int `json:"sheet_indexes"`
}

type DeleteDataframe struct{}

// Type implements pipeline.StepPerformer.
func (s *DeleteDataframe) Type() pipeline.StepType { return TypeDeleteDataframe }

// IsImport implements pipeline.StepPerformer.
func (s *DeleteDataframe) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *DeleteDataframe) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p DeleteDataframeParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	if len(p.SheetIndexes) == 0 {
		return nil, nil, errors.New("no dataframes to delete")
	}
	post, err := prev.WithoutDataframes(p.SheetIndexes)
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *DeleteDataframe) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p DeleteDataframeParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewDeleteDataframe(prev, post, p.SheetIndexes)}, nil
}

type ExportToFileParams struct {
	Type     string `json:"type" jsonschema:"enum=csv,enum=excel"`
	FileName string `json:"file_name,omitempty" jsonschema:"description=workbook path for excel exports"`
	// SheetIndexToExportLocation maps a sheet to its file for csv and to its
	// sheet name for excel.
	SheetIndexToExportLocation map[int]string `json:"sheet_index_to_export_location"`
}

// ExportToFile writes sheets to disk. The state is unchanged.
type ExportToFile struct {
	FS afs.Service
}

// Type implements pipeline.StepPerformer.
func (s *ExportToFile) Type() pipeline.StepType { return TypeExportToFile }

// IsImport implements pipeline.StepPerformer.
func (s *ExportToFile) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *ExportToFile) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p ExportToFileParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	indexes := make([]int, 0, len(p.SheetIndexToExportLocation))
	for idx := range p.SheetIndexToExportLocation {
		if err := prev.CheckIndex(idx); err != nil {
			return nil, nil, err
		}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	switch p.Type {
	case chunks.ExportCSV:
		for _, idx := range indexes {
			data, err := frame.WriteCSV(prev.Dfs[idx])
			if err != nil {
				return nil, nil, err
			}
			if err := store(ctx, s.FS, p.SheetIndexToExportLocation[idx], data); err != nil {
				return nil, nil, err
			}
		}
	case chunks.ExportExcel:
		sheets := make([]frame.NamedFrame, 0, len(indexes))
		for _, idx := range indexes {
			format := prev.DfFormats[idx]
			if err := format.Validate(); err != nil {
				return nil, nil, &chunk.ConfigError{Chunk: "Export To File", Option: "format", Value: err.Error()}
			}
			nf := frame.NamedFrame{Sheet: p.SheetIndexToExportLocation[idx], Frame: prev.Dfs[idx]}
			if !format.IsZero() {
				nf.Style = &frame.SheetStyle{
					HeaderBackground: format.Headers.BackgroundColor,
					HeaderFont:       format.Headers.Color,
					EvenBackground:   format.Rows.Even.BackgroundColor,
					EvenFont:         format.Rows.Even.Color,
					OddBackground:    format.Rows.Odd.BackgroundColor,
					OddFont:          format.Rows.Odd.Color,
				}
			}
			sheets = append(sheets, nf)
		}
		data, err := frame.WriteExcel(sheets)
		if err != nil {
			return nil, nil, err
		}
		if err := store(ctx, s.FS, p.FileName, data); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, &chunk.ConfigError{Chunk: "Export To File", Option: "export type", Value: p.Type}
	}
	return prev, nil, nil
}

// Transpile implements pipeline.StepPerformer.
func (s *ExportToFile) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p ExportToFileParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewExportToFile(prev, post, p.Type, p.FileName, p.SheetIndexToExportLocation)}, nil
}

type SetDataframeFormatParams struct {
	SheetIndex int                   `json:"sheet_index"`
	Format     state.DataframeFormat `json:"df_format"`
}

// SetDataframeFormat records header and row colors. Colors must be hex
// literals.
type SetDataframeFormat struct{}

// Type implements pipeline.StepPerformer.
func (s *SetDataframeFormat) Type() pipeline.StepType { return TypeSetDataframeFormat }

// IsImport implements pipeline.StepPerformer.
func (s *SetDataframeFormat) IsImport() bool { return false }

// Execute implements pipeline.StepPerformer.
func (s *SetDataframeFormat) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p SetDataframeFormatParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	if err := p.Format.Validate(); err != nil {
		return nil, nil, &chunk.ConfigError{Chunk: "Formatted dataframe", Option: "format", Value: err.Error()}
	}
	post, err := prev.WithFormat(p.SheetIndex, p.Format)
	return post, nil, err
}

// Transpile implements pipeline.StepPerformer.
func (s *SetDataframeFormat) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p SetDataframeFormatParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{chunks.NewSetDataframeFormat(prev, post, p.SheetIndex, p.Format)}, nil
}

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

// Package steps holds the step performers: each executes one kind of user
// action on the in-memory state and builds the code chunks for it.
package steps

import (
	"context"
	"errors"

	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

const (
	TypeSimpleImport       pipeline.StepType = "simple_import"
	TypeExcelImport        pipeline.StepType = "excel_import"
	TypeAddColumn          pipeline.StepType = "add_column"
	TypeDeleteColumns      pipeline.StepType = "delete_columns"
	TypeRenameColumn       pipeline.StepType = "rename_column"
	TypeSetColumnFormula   pipeline.StepType = "set_column_formula"
	TypeDuplicateDataframe pipeline.StepType = "duplicate_dataframe"
	TypeDeleteDataframe    pipeline.StepType = "delete_dataframe"
	TypeExportToFile       pipeline.StepType = "export_to_file"
	TypeSetDataframeFormat pipeline.StepType = "set_dataframe_format"
)

// NewRegistry returns a registry with every performer. File access goes
// through fs; afs.New() when nil.
func NewRegistry(fs afs.Service) *pipeline.Registry {
	if fs == nil {
		fs = afs.New()
	}
	return pipeline.NewRegistry(
		&SimpleImport{FS: fs},
		&ExcelImport{FS: fs},
		&AddColumn{},
		&DeleteColumns{},
		&RenameColumn{},
		&SetColumnFormula{},
		&DuplicateDataframe{},
		&DeleteDataframe{},
		&ExportToFile{FS: fs},
		&SetDataframeFormat{},
	)
}

// load reads a file. Anything but a missing file is worth a retry.
func load(ctx context.Context, fs afs.Service, path string) ([]byte, error) {
	data, err := frame.Load(ctx, fs, frame.Location(path))
	if err != nil && !errors.Is(err, frame.ErrFileNotFound) {
		return nil, &pipeline.RecoverableError{Err: err}
	}
	return data, err
}

func store(ctx context.Context, fs afs.Service, path string, data []byte) error {
	if err := frame.Store(ctx, fs, frame.Location(path), data); err != nil {
		return &pipeline.RecoverableError{Err: err}
	}
	return nil
}

func sheet(st *state.State, idx int) (*frame.DataFrame, error) {
	if err := st.CheckIndex(idx); err != nil {
		return nil, err
	}
	return st.Dfs[idx], nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParamTypes returns a zero params value per step type, for schema generation.
func ParamTypes() map[pipeline.StepType]interface{} {
	return map[pipeline.StepType]interface{}{
		TypeSimpleImport:       &SimpleImportParams{},
		TypeExcelImport:        &ExcelImportParams{},
		TypeAddColumn:          &AddColumnParams{},
		TypeDeleteColumns:      &DeleteColumnsParams{},
		TypeRenameColumn:       &RenameColumnParams{},
		TypeSetColumnFormula:   &SetColumnFormulaParams{},
		TypeDuplicateDataframe: &DuplicateDataframeParams{},
		TypeDeleteDataframe:    &DeleteDataframeParams{},
		TypeExportToFile:       &ExportToFileParams{},
		TypeSetDataframeFormat: &SetDataframeFormatParams{},
	}
}

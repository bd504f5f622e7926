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
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// SimpleImportParams reads CSV files.
type SimpleImportParams struct {
	FileNames []string `json:"file_names" jsonschema:"description=paths or URLs of the CSV files"`
	Delimiter string   `json:"delimiter,omitempty" jsonschema:"description=field delimiter; defaults to a comma"`
}

// SimpleImport imports CSV files, one dataframe per file. A missing file is
// not recoverable.
type SimpleImport struct {
	FS afs.Service
}

// Type implements pipeline.StepPerformer.
func (s *SimpleImport) Type() pipeline.StepType { return TypeSimpleImport }

// IsImport implements pipeline.StepPerformer.
func (s *SimpleImport) IsImport() bool { return true }

// Execute implements pipeline.StepPerformer.
func (s *SimpleImport) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p SimpleImportParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	if len(p.FileNames) == 0 {
		return nil, nil, errors.New("no files to import")
	}
	if p.Delimiter == "" {
		p.Delimiter = ","
	}
	post := prev
	for _, file := range p.FileNames {
		data, err := load(ctx, s.FS, file)
		if err != nil {
			return nil, nil, err
		}
		df, err := frame.ReadCSV(data, p.Delimiter)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read %s", file)
		}
		post, _ = post.WithDataframe(df, frame.ValidDataframeName(post.DfNames, file), state.SourceImported)
	}
	return post, pipeline.ExecData{"delimiter": p.Delimiter}, nil
}

// Transpile implements pipeline.StepPerformer.
func (s *SimpleImport) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p SimpleImportParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	delimiter, _ := exec["delimiter"].(string)
	return []chunk.CodeChunk{
		chunks.NewSimpleImport(prev, post, p.FileNames, newNames(prev, post), delimiter),
	}, nil
}

// ExcelImportParams reads sheets of one workbook.
type ExcelImportParams struct {
	FileName   string   `json:"file_name" jsonschema:"description=path or URL of the xlsx workbook"`
	SheetNames []string `json:"sheet_names"`
	HasHeaders *bool    `json:"has_headers,omitempty" jsonschema:"description=first row holds headers; defaults to true"`
	SkipRows   int      `json:"skiprows,omitempty"`
}

// ExcelImport imports sheets from an xlsx workbook, one dataframe per sheet.
type ExcelImport struct {
	FS afs.Service
}

// Type implements pipeline.StepPerformer.
func (s *ExcelImport) Type() pipeline.StepType { return TypeExcelImport }

// IsImport implements pipeline.StepPerformer.
func (s *ExcelImport) IsImport() bool { return true }

func (p ExcelImportParams) hasHeaders() bool {
	return p.HasHeaders == nil || *p.HasHeaders
}

// Execute implements pipeline.StepPerformer.
func (s *ExcelImport) Execute(ctx context.Context, prev *state.State, params pipeline.Params) (*state.State, pipeline.ExecData, error) {
	var p ExcelImportParams
	if err := params.Decode(&p); err != nil {
		return nil, nil, err
	}
	if len(p.SheetNames) == 0 {
		return nil, nil, errors.Errorf("no sheets to import from %s", p.FileName)
	}
	data, err := load(ctx, s.FS, p.FileName)
	if err != nil {
		return nil, nil, err
	}
	dfs, err := frame.ReadExcel(data, p.SheetNames, frame.ExcelOptions{HasHeaders: p.hasHeaders(), SkipRows: p.SkipRows})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", p.FileName)
	}
	post := prev
	for i, df := range dfs {
		post, _ = post.WithDataframe(df, frame.ValidDataframeName(post.DfNames, p.SheetNames[i]), state.SourceImported)
	}
	return post, nil, nil
}

// Transpile implements pipeline.StepPerformer.
func (s *ExcelImport) Transpile(prev, post *state.State, params pipeline.Params, exec pipeline.ExecData) ([]chunk.CodeChunk, error) {
	var p ExcelImportParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	return []chunk.CodeChunk{
		chunks.NewExcelImport(prev, post, p.FileName, p.SheetNames, newNames(prev, post), p.hasHeaders(), p.SkipRows),
	}, nil
}

// newNames are the dataframes post appended to prev.
func newNames(prev, post *state.State) []string {
	return append([]string(nil), post.DfNames[prev.Len():]...)
}

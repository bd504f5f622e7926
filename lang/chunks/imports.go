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

// adjacentCreation reports whether no sheet was created or removed between
// post and next, so two creators merged into one keep their sheet indexes.
func adjacentCreation(post, next *state.State) bool {
	return post != nil && next != nil && post.Len() == next.Len()
}

// SimpleImport reads CSV files, one new dataframe each.
type SimpleImport struct {
	chunk.Base
	FileNames []string
	DfNames   []string
	Delimiter string
}

func NewSimpleImport(prev, post *state.State, fileNames, dfNames []string, delimiter string) *SimpleImport {
	return &SimpleImport{
		Base:      chunk.NewBase(prev, post),
		FileNames: fileNames,
		DfNames:   dfNames,
		Delimiter: delimiter,
	}
}

func (c *SimpleImport) DisplayName() string { return "Imported" }

func (c *SimpleImport) DescriptionComment() string {
	return "Imported " + strings.Join(c.FileNames, ", ")
}

func (c *SimpleImport) Render() ([]string, []string, error) {
	code := make([]string, 0, len(c.FileNames))
	for i, file := range c.FileNames {
		args := chunk.PyPath(file)
		if c.Delimiter != "" && c.Delimiter != "," {
			args += ", sep=" + chunk.PyString(c.Delimiter)
		}
		code = append(code, fmt.Sprintf("%s = pd.read_csv(%s)", c.DfNames[i], args))
	}
	return code, []string{importPandas}, nil
}

func (c *SimpleImport) CreatedSheetIndexes() chunk.IndexSet {
	return chunk.Range(c.Prev.Len(), len(c.FileNames))
}

func (c *SimpleImport) EditedSheetIndexes() chunk.IndexSet {
	return c.CreatedSheetIndexes()
}

func (c *SimpleImport) SourceSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *SimpleImport) ParameterizableParams() []chunk.Param {
	out := make([]chunk.Param, 0, len(c.FileNames))
	for _, file := range c.FileNames {
		out = append(out, chunk.Param{
			Value:   chunk.PyPath(file),
			Type:    chunk.ParamTypeFileName,
			Subtype: chunk.SubtypeFileNameImportCSV,
		})
	}
	return out
}

func (c *SimpleImport) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*SimpleImport)
	if !ok || !c.ParamsMatch(o, "delimiter") || !adjacentCreation(c.Post, o.Prev) {
		return nil
	}
	return NewSimpleImport(c.Prev, o.Post,
		append(append([]string(nil), c.FileNames...), o.FileNames...),
		append(append([]string(nil), c.DfNames...), o.DfNames...),
		c.Delimiter)
}

func (c *SimpleImport) field(key string) (interface{}, bool) {
	switch key {
	case "file_names":
		return c.FileNames, true
	case "df_names":
		return c.DfNames, true
	case "delimiter":
		return c.Delimiter, true
	}
	return nil, false
}

func (c *SimpleImport) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*SimpleImport)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

// ExcelImport reads sheets of one workbook, one new dataframe per sheet.
type ExcelImport struct {
	chunk.Base
	FileName   string
	SheetNames []string
	DfNames    []string
	HasHeaders bool
	SkipRows   int
}

func NewExcelImport(prev, post *state.State, fileName string, sheetNames, dfNames []string, hasHeaders bool, skipRows int) *ExcelImport {
	return &ExcelImport{
		Base:       chunk.NewBase(prev, post),
		FileName:   fileName,
		SheetNames: sheetNames,
		DfNames:    dfNames,
		HasHeaders: hasHeaders,
		SkipRows:   skipRows,
	}
}

func (c *ExcelImport) DisplayName() string { return "Imported Excel" }

func (c *ExcelImport) DescriptionComment() string {
	return fmt.Sprintf("Imported %s from %s", strings.Join(c.SheetNames, ", "), c.FileName)
}

func (c *ExcelImport) Render() ([]string, []string, error) {
	args := []string{
		chunk.PyPath(c.FileName),
		"engine='openpyxl'",
		"sheet_name=" + chunk.PyList(c.SheetNames),
		fmt.Sprintf("skiprows=%d", c.SkipRows),
	}
	if !c.HasHeaders {
		args = append(args, "header=None")
	}
	code := []string{"sheet_df_dictonary = pd.read_excel(" + strings.Join(args, ", ") + ")"}
	for i, sheet := range c.SheetNames {
		code = append(code, fmt.Sprintf("%s = sheet_df_dictonary[%s]", c.DfNames[i], chunk.PyString(sheet)))
	}
	return code, []string{importPandas}, nil
}

func (c *ExcelImport) CreatedSheetIndexes() chunk.IndexSet {
	return chunk.Range(c.Prev.Len(), len(c.SheetNames))
}

func (c *ExcelImport) EditedSheetIndexes() chunk.IndexSet {
	return c.CreatedSheetIndexes()
}

func (c *ExcelImport) SourceSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *ExcelImport) ParameterizableParams() []chunk.Param {
	return []chunk.Param{{
		Value:   chunk.PyPath(c.FileName),
		Type:    chunk.ParamTypeFileName,
		Subtype: chunk.SubtypeFileNameImportExcel,
	}}
}

func (c *ExcelImport) CombineRight(next chunk.CodeChunk) chunk.CodeChunk {
	o, ok := next.(*ExcelImport)
	if !ok || !c.ParamsMatch(o, "file_name", "has_headers", "skip_rows") || !adjacentCreation(c.Post, o.Prev) {
		return nil
	}
	for _, sheet := range o.SheetNames {
		if containsString(c.SheetNames, sheet) {
			return nil
		}
	}
	return NewExcelImport(c.Prev, o.Post, c.FileName,
		append(append([]string(nil), c.SheetNames...), o.SheetNames...),
		append(append([]string(nil), c.DfNames...), o.DfNames...),
		c.HasHeaders, c.SkipRows)
}

func (c *ExcelImport) field(key string) (interface{}, bool) {
	switch key {
	case "file_name":
		return c.FileName, true
	case "sheet_names":
		return c.SheetNames, true
	case "has_headers":
		return c.HasHeaders, true
	case "skip_rows":
		return c.SkipRows, true
	}
	return nil, false
}

func (c *ExcelImport) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*ExcelImport)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

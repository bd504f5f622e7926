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
	"sort"
	"strings"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/state"
)

const (
	ExportCSV   = "csv"
	ExportExcel = "excel"
)

const importFormatting = "from mitosheet.public.v3 import add_formatting_to_excel_sheet"

// ExportToFile writes sheets out. For csv every sheet maps to its own file; for
// excel every sheet maps to a sheet name inside FileName.
type ExportToFile struct {
	chunk.Base
	Type      string
	FileName  string
	Locations map[int]string
}

func NewExportToFile(prev, post *state.State, exportType, fileName string, locations map[int]string) *ExportToFile {
	return &ExportToFile{Base: chunk.NewBase(prev, post), Type: exportType, FileName: fileName, Locations: locations}
}

func (c *ExportToFile) sheetIndexes() []int {
	out := make([]int, 0, len(c.Locations))
	for idx := range c.Locations {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (c *ExportToFile) configError() error {
	return &chunk.ConfigError{Chunk: c.DisplayName(), Option: "export type", Value: c.Type}
}

func (c *ExportToFile) DisplayName() string { return "Export To File" }

func (c *ExportToFile) DescriptionComment() string {
	return fmt.Sprintf("Exports %s to file %s", countOf(len(c.Locations), "sheet"), c.FileName)
}

func (c *ExportToFile) Render() ([]string, []string, error) {
	switch c.Type {
	case ExportCSV:
		code := make([]string, 0, len(c.Locations))
		for _, idx := range c.sheetIndexes() {
			code = append(code, fmt.Sprintf("%s.to_csv(%s, index=False)", dfName(c.Post, idx), chunk.PyPath(c.Locations[idx])))
		}
		return code, nil, nil
	case ExportExcel:
		code := []string{fmt.Sprintf(`with pd.ExcelWriter(%s, engine="openpyxl") as writer:`, chunk.PyPath(c.FileName))}
		for _, idx := range c.sheetIndexes() {
			code = append(code, fmt.Sprintf(`%s%s.to_excel(writer, sheet_name="%s", index=False)`, chunk.Tab, dfName(c.Post, idx), c.Locations[idx]))
		}
		formatting, err := c.formatCode()
		if err != nil {
			return nil, nil, err
		}
		imports := []string{importPandas}
		if len(formatting) > 0 {
			code = append(code, formatting...)
			imports = append(imports, importFormatting)
		}
		return code, imports, nil
	}
	return nil, nil, c.configError()
}

func (c *ExportToFile) formatCode() ([]string, error) {
	var code []string
	for _, idx := range c.sheetIndexes() {
		if c.Post == nil || idx >= len(c.Post.DfFormats) {
			continue
		}
		format := c.Post.DfFormats[idx]
		if format.IsZero() {
			continue
		}
		if err := format.Validate(); err != nil {
			return nil, &chunk.ConfigError{Chunk: c.DisplayName(), Option: "format", Value: err.Error()}
		}
		var params []string
		for _, p := range []struct{ key, value string }{
			{"header_background_color", format.Headers.BackgroundColor},
			{"header_font_color", format.Headers.Color},
			{"even_background_color", format.Rows.Even.BackgroundColor},
			{"even_font_color", format.Rows.Even.Color},
			{"odd_background_color", format.Rows.Odd.BackgroundColor},
			{"odd_font_color", format.Rows.Odd.Color},
		} {
			if p.value != "" {
				params = append(params, p.key+"="+chunk.PyString(p.value))
			}
		}
		code = append(code, fmt.Sprintf(`%sadd_formatting_to_excel_sheet(writer, "%s", %s)`, chunk.Tab, c.Locations[idx], strings.Join(params, ", ")))
	}
	return code, nil
}

func (c *ExportToFile) CreatedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *ExportToFile) EditedSheetIndexes() chunk.IndexSet { return chunk.None() }

func (c *ExportToFile) SourceSheetIndexes() chunk.IndexSet {
	return chunk.Indexes(c.sheetIndexes()...)
}

// ParameterizableParams reports the export paths. An unknown export type
// reports nothing; Render surfaces the error.
func (c *ExportToFile) ParameterizableParams() []chunk.Param {
	switch c.Type {
	case ExportCSV:
		out := make([]chunk.Param, 0, len(c.Locations))
		for _, idx := range c.sheetIndexes() {
			out = append(out, chunk.Param{
				Value:   chunk.PyPath(c.Locations[idx]),
				Type:    chunk.ParamTypeFileName,
				Subtype: chunk.SubtypeFileNameExportCSV,
			})
		}
		return out
	case ExportExcel:
		return []chunk.Param{{
			Value:   chunk.PyPath(c.FileName),
			Type:    chunk.ParamTypeFileName,
			Subtype: chunk.SubtypeFileNameExportExcel,
		}}
	}
	return nil
}

func (c *ExportToFile) field(key string) (interface{}, bool) {
	switch key {
	case "type":
		return c.Type, true
	case "file_name":
		return c.FileName, true
	case "locations":
		return c.Locations, true
	}
	return nil, false
}

func (c *ExportToFile) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	o, ok := other.(*ExportToFile)
	return ok && chunk.FieldsMatch(c.field, o.field, keys)
}

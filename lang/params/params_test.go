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

package params

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

func TestParameterize_BindingOrder(t *testing.T) {
	st, _ := state.New().WithDataframe(frame.New([]string{"A"}, nil), "df1", state.SourcePassed)
	export := chunks.NewExportToFile(st, st, chunks.ExportCSV, "", map[int]string{0: "out.csv"})

	got := Parameterize([]chunk.CodeChunk{export}, []string{"df1"})
	require.Len(t, got, 2)
	assert.Equal(t, Descriptor{
		InitialValue: "df1",
		Type:         chunk.ParamTypeDfName,
		Subtype:      chunk.SubtypeImportDataframe,
		Required:     true,
		Name:         "df1",
	}, got[0])
	assert.Equal(t, Descriptor{
		InitialValue: "r'out.csv'",
		Type:         chunk.ParamTypeFileName,
		Subtype:      chunk.SubtypeFileNameExportCSV,
		Required:     false,
		Name:         "file_name_export_csv_0",
	}, got[1])

	raw, err := json.Marshal(got[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"initial_value":"r'out.csv'","type":"file_name","subtype":"file_name_export_csv","required":false,"name":"file_name_export_csv_0"}`, string(raw))
}

func TestParameterize_SkipsStringArgs(t *testing.T) {
	got := Parameterize(nil, []string{"'data.csv'", `r"x.csv"`, "df"})
	require.Len(t, got, 1)
	assert.Equal(t, "df", got[0].Name)
}

func TestGenerateNames(t *testing.T) {
	names := GenerateNames([]chunk.Param{
		{Value: "file_name_import_csv_0", Type: chunk.ParamTypeDfName, Subtype: chunk.SubtypeImportDataframe},
		{Value: "df.head()", Type: chunk.ParamTypeDfName, Subtype: chunk.SubtypeImportDataframe},
		{Value: "r'a.csv'", Type: chunk.ParamTypeFileName, Subtype: chunk.SubtypeFileNameImportCSV},
		{Value: "r'b.csv'", Type: chunk.ParamTypeFileName, Subtype: chunk.SubtypeFileNameImportCSV},
		{Value: "r'c.xlsx'", Type: chunk.ParamTypeFileName, Subtype: chunk.SubtypeFileNameExportExcel},
	})
	assert.Equal(t, []string{
		"file_name_import_csv_0",
		"import_dataframe_0",
		"file_name_import_csv_1",
		"file_name_import_csv_2",
		"file_name_export_excel_0",
	}, names)
}

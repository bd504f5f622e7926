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

package transpiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/optimizer"
	"github.com/cloudwego/sheetcoder/lang/params"
	"github.com/cloudwego/sheetcoder/lang/state"
)

func fixture() []chunk.CodeChunk {
	s0 := state.New()
	s1, _ := s0.WithDataframe(frame.New([]string{"A"}, [][]interface{}{{1.0}}), "data", state.SourceImported)
	s2, _ := s1.WithDataframe(frame.New([]string{"A"}, [][]interface{}{{2.0}}), "more", state.SourceImported)
	return []chunk.CodeChunk{
		chunks.NewSimpleImport(s0, s1, []string{"data.csv"}, []string{"data"}, ","),
		chunks.NewSimpleImport(s1, s2, []string{"more.csv"}, []string{"more"}, ","),
		chunks.NewAddColumn(s2, s2, 0, "B", 1),
		chunks.NewRenameColumn(s2, s2, 0, "B", "C"),
		chunks.NewExportToFile(s2, s2, chunks.ExportExcel, "out.xlsx", map[int]string{0: "data", 1: "more"}),
	}
}

func TestTranspile(t *testing.T) {
	res, err := Transpile(fixture(), Options{})
	require.NoError(t, err)
	assert.False(t, res.Unoptimized)
	assert.Equal(t, []string{"import pandas as pd"}, res.Imports)
	assert.Equal(t, `import pandas as pd

data = pd.read_csv(r'data.csv')
more = pd.read_csv(r'more.csv')
data.insert(1, 'C', 0)
with pd.ExcelWriter(r'out.xlsx', engine="openpyxl") as writer:
    data.to_excel(writer, sheet_name="data", index=False)
    more.to_excel(writer, sheet_name="more", index=False)
`, res.String())
	assert.Equal(t, []string{"data", "more"}, res.Final.DfNames)

	v, err := Validate(context.Background(), res.String())
	require.NoError(t, err)
	assert.True(t, v.Ok, v.Errors)
}

func TestTranspile_Comments(t *testing.T) {
	res, err := Transpile(fixture()[:3], Options{Comments: true, NoOptimize: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"# Imported data.csv",
		"data = pd.read_csv(r'data.csv')",
		"# Imported more.csv",
		"more = pd.read_csv(r'more.csv')",
		"# Added column B",
		"data.insert(1, 'B', 0)",
	}, res.Code)
}

func TestTranspile_NotConverged(t *testing.T) {
	res, err := Transpile(fixture(), Options{Optimizer: optimizerOptions(1)})
	require.NoError(t, err)
	assert.True(t, res.Unoptimized)
	assert.Len(t, res.Chunks, 5)
}

func TestTranspile_RenderError(t *testing.T) {
	st, _ := state.New().WithDataframe(frame.New([]string{"A"}, nil), "df", state.SourcePassed)
	_, err := Transpile([]chunk.CodeChunk{chunks.NewExportToFile(st, st, "pdf", "x", map[int]string{0: "x"})}, Options{})
	var cfg *chunk.ConfigError
	assert.ErrorAs(t, err, &cfg)
}

func TestMergeImports(t *testing.T) {
	got := mergeImports(
		[]string{"import pandas as pd"},
		nil,
		[]string{"import numpy as np", " import pandas as pd "},
		[]string{"", "import numpy as np"},
	)
	assert.Equal(t, []string{"import pandas as pd", "import numpy as np"}, got)
}

func TestFunction(t *testing.T) {
	st, _ := state.New().WithDataframe(frame.New([]string{"A"}, nil), "df1", state.SourcePassed)
	seq := []chunk.CodeChunk{
		chunks.NewAddColumn(st, st, 0, "B", 1),
		chunks.NewExportToFile(st, st, chunks.ExportCSV, "", map[int]string{0: "out.csv"}),
	}
	res, err := Transpile(seq, Options{})
	require.NoError(t, err)
	descriptors := params.Parameterize(res.Chunks, []string{"df1"})

	code, err := Function(res, "process", descriptors)
	require.NoError(t, err)
	assert.Equal(t, `def process(df1, file_name_export_csv_0=r'out.csv'):
    df1.insert(1, 'B', 0)
    df1.to_csv(file_name_export_csv_0, index=False)
    return df1
`, code)

	v, err := Validate(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, v.Ok)

	_, err = Function(res, "not valid", descriptors)
	assert.Error(t, err)
}

func TestFunction_Empty(t *testing.T) {
	code, err := Function(&Result{}, "noop", nil)
	require.NoError(t, err)
	assert.Equal(t, "def noop():\n    pass\n", code)
}

func TestValidate(t *testing.T) {
	v, err := Validate(context.Background(), "df = pd.read_csv(r'a.csv'\nprint(df)\n")
	require.NoError(t, err)
	assert.False(t, v.Ok)
	assert.NotEmpty(t, v.Errors)

	v, err = Validate(context.Background(), "x = 1\n")
	require.NoError(t, err)
	assert.True(t, v.Ok)
}

func optimizerOptions(max int) optimizer.Options {
	return optimizer.Options{MaxIterations: max}
}

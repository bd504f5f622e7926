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

package frame

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

func sample() *DataFrame {
	return New([]string{"A", "B"}, [][]interface{}{{1.0, "x"}, {2.0, "y"}})
}

func TestDataFrame_Operations(t *testing.T) {
	df := sample()

	t.Run("insert keeps original untouched", func(t *testing.T) {
		out, err := df.InsertColumn(1, "C", []interface{}{0.0, 0.0})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C", "B"}, out.Headers())
		assert.Equal(t, []string{"A", "B"}, df.Headers())
	})

	t.Run("insert duplicate fails", func(t *testing.T) {
		_, err := df.InsertColumn(-1, "A", []interface{}{0.0, 0.0})
		assert.Error(t, err)
	})

	t.Run("drop and rename", func(t *testing.T) {
		out, err := df.DropColumns([]string{"A"})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, out.Headers())

		out, err = df.RenameColumn("A", "Z")
		require.NoError(t, err)
		assert.Equal(t, []string{"Z", "B"}, out.Headers())

		_, err = df.RenameColumn("A", "B")
		assert.Error(t, err)
	})

	t.Run("equal", func(t *testing.T) {
		assert.True(t, df.Equal(sample()))
		other, err := df.SetColumn("A", []interface{}{1.0, 3.0})
		require.NoError(t, err)
		assert.False(t, df.Equal(other))
	})
}

func TestCSVRoundTrip(t *testing.T) {
	df, err := ReadCSV([]byte("A,B\n1,x\n2,\n"), ",")
	require.NoError(t, err)
	assert.Equal(t, 2, df.NumRows())
	assert.Equal(t, []interface{}{1.0, 2.0}, df.Columns[0].Values)
	assert.Nil(t, df.Columns[1].Values[1])

	out, err := WriteCSV(df)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n1,x\n2,\n", string(out))
}

func TestExcelRoundTrip(t *testing.T) {
	data, err := WriteExcel([]NamedFrame{
		{Sheet: "first", Frame: sample()},
		{Sheet: "second", Frame: New([]string{"C"}, [][]interface{}{{5.0}}), Style: &SheetStyle{HeaderBackground: "#FF0000"}},
	})
	require.NoError(t, err)

	frames, err := ReadExcel(data, []string{"second", "first"}, ExcelOptions{HasHeaders: true})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, []string{"C"}, frames[0].Headers())
	assert.True(t, frames[1].Equal(sample()))

	_, err = ReadExcel(data, []string{"missing"}, ExcelOptions{HasHeaders: true})
	assert.Error(t, err)
}

func TestExcelSheetStyle(t *testing.T) {
	df := New([]string{"A", "B"}, [][]interface{}{{1.0, "x"}, {2.0, "y"}, {3.0, "z"}})
	data, err := WriteExcel([]NamedFrame{{Sheet: "s", Frame: df, Style: &SheetStyle{
		HeaderBackground: "#000000",
		EvenBackground:   "#00FF00",
		OddBackground:    "#0000FF",
		OddFont:          "#333333",
	}}})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	fill := func(cell string) string {
		id, err := f.GetCellStyle("s", cell)
		require.NoError(t, err)
		st, err := f.GetStyle(id)
		require.NoError(t, err)
		if len(st.Fill.Color) == 0 {
			return ""
		}
		return st.Fill.Color[0]
	}

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, "000000", fill("A1"))
		assert.Equal(t, "000000", fill("B1"))
	})
	t.Run("rows alternate from the first data row", func(t *testing.T) {
		assert.Equal(t, "00FF00", fill("A2"))
		assert.Equal(t, "0000FF", fill("B3"))
		assert.Equal(t, "00FF00", fill("B4"))
	})
	t.Run("odd font", func(t *testing.T) {
		id, err := f.GetCellStyle("s", "A3")
		require.NoError(t, err)
		st, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, st.Font)
		assert.Equal(t, "333333", st.Font.Color)
	})
	t.Run("past the frame is unstyled", func(t *testing.T) {
		assert.Empty(t, fill("C2"))
		assert.Empty(t, fill("A5"))
	})
}

func TestLoadStore(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := Load(ctx, fs, path)
	assert.ErrorIs(t, err, ErrFileNotFound)

	require.NoError(t, Store(ctx, fs, path, []byte("A\n1\n")))
	data, err := Load(ctx, fs, path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(data))
}

func TestValidDataframeName(t *testing.T) {
	cases := []struct {
		existing []string
		raw      string
		want     string
	}{
		{nil, "data/sales 2024.csv", "sales_2024"},
		{nil, "2024.csv", "df_2024"},
		{[]string{"sales"}, "sales.xlsx", "sales_1"},
		{[]string{"sales", "sales_1"}, "sales", "sales_2"},
		{nil, "class", "class_df"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidDataframeName(c.existing, c.raw), c.raw)
	}
	assert.True(t, IsIdentifier("df1"))
	assert.False(t, IsIdentifier("1df"))
	assert.False(t, IsIdentifier("'df'"))
}

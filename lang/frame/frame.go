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
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Column is a named, ordered list of cell values. A value is float64, string,
// bool or nil.
type Column struct {
	Header string
	Values []interface{}
}

// DataFrame is a column-ordered table. DataFrames held by a state snapshot are
// never mutated; every operation below returns a new frame.
type DataFrame struct {
	Columns []Column
}

// New builds a frame from headers and row-major records.
func New(headers []string, rows [][]interface{}) *DataFrame {
	df := &DataFrame{Columns: make([]Column, len(headers))}
	for i, h := range headers {
		vals := make([]interface{}, len(rows))
		for r, row := range rows {
			if i < len(row) {
				vals[r] = row[i]
			}
		}
		df.Columns[i] = Column{Header: h, Values: vals}
	}
	return df
}

func (df *DataFrame) NumRows() int {
	if df == nil || len(df.Columns) == 0 {
		return 0
	}
	return len(df.Columns[0].Values)
}

func (df *DataFrame) Headers() []string {
	ret := make([]string, len(df.Columns))
	for i, c := range df.Columns {
		ret[i] = c.Header
	}
	return ret
}

// ColumnIndex returns the position of header, or -1.
func (df *DataFrame) ColumnIndex(header string) int {
	for i, c := range df.Columns {
		if c.Header == header {
			return i
		}
	}
	return -1
}

func (df *DataFrame) Column(header string) (Column, bool) {
	if i := df.ColumnIndex(header); i >= 0 {
		return df.Columns[i], true
	}
	return Column{}, false
}

// Row returns the values of row r keyed by header.
func (df *DataFrame) Row(r int) map[string]interface{} {
	ret := make(map[string]interface{}, len(df.Columns))
	for _, c := range df.Columns {
		ret[c.Header] = c.Values[r]
	}
	return ret
}

// Records returns the row-major view of the frame.
func (df *DataFrame) Records() [][]interface{} {
	n := df.NumRows()
	ret := make([][]interface{}, n)
	for r := 0; r < n; r++ {
		row := make([]interface{}, len(df.Columns))
		for i, c := range df.Columns {
			row[i] = c.Values[r]
		}
		ret[r] = row
	}
	return ret
}

// Clone deep-copies the column slices.
func (df *DataFrame) Clone() *DataFrame {
	if df == nil {
		return nil
	}
	out := &DataFrame{Columns: make([]Column, len(df.Columns))}
	for i, c := range df.Columns {
		out.Columns[i] = Column{Header: c.Header, Values: append([]interface{}(nil), c.Values...)}
	}
	return out
}

// InsertColumn inserts a column at idx; idx < 0 appends.
func (df *DataFrame) InsertColumn(idx int, header string, values []interface{}) (*DataFrame, error) {
	if df.ColumnIndex(header) >= 0 {
		return nil, errors.Errorf("column %q already exists", header)
	}
	if len(df.Columns) > 0 && len(values) != df.NumRows() {
		return nil, errors.Errorf("column %q has %d values, frame has %d rows", header, len(values), df.NumRows())
	}
	if idx < 0 || idx > len(df.Columns) {
		idx = len(df.Columns)
	}
	out := df.Clone()
	col := Column{Header: header, Values: append([]interface{}(nil), values...)}
	out.Columns = append(out.Columns[:idx], append([]Column{col}, out.Columns[idx:]...)...)
	return out, nil
}

// SetColumn replaces the values of an existing column.
func (df *DataFrame) SetColumn(header string, values []interface{}) (*DataFrame, error) {
	i := df.ColumnIndex(header)
	if i < 0 {
		return nil, errors.Errorf("column %q does not exist", header)
	}
	if len(values) != df.NumRows() {
		return nil, errors.Errorf("column %q has %d values, frame has %d rows", header, len(values), df.NumRows())
	}
	out := df.Clone()
	out.Columns[i].Values = append([]interface{}(nil), values...)
	return out, nil
}

func (df *DataFrame) DropColumns(headers []string) (*DataFrame, error) {
	drop := make(map[string]bool, len(headers))
	for _, h := range headers {
		if df.ColumnIndex(h) < 0 {
			return nil, errors.Errorf("column %q does not exist", h)
		}
		drop[h] = true
	}
	out := &DataFrame{}
	for _, c := range df.Clone().Columns {
		if !drop[c.Header] {
			out.Columns = append(out.Columns, c)
		}
	}
	return out, nil
}

func (df *DataFrame) RenameColumn(oldHeader, newHeader string) (*DataFrame, error) {
	i := df.ColumnIndex(oldHeader)
	if i < 0 {
		return nil, errors.Errorf("column %q does not exist", oldHeader)
	}
	if oldHeader != newHeader && df.ColumnIndex(newHeader) >= 0 {
		return nil, errors.Errorf("column %q already exists", newHeader)
	}
	out := df.Clone()
	out.Columns[i].Header = newHeader
	return out, nil
}

// Equal reports value-for-value equality, headers and column order included.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df == nil || other == nil {
		return df == other
	}
	if len(df.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range df.Columns {
		oc := other.Columns[i]
		if c.Header != oc.Header || len(c.Values) != len(oc.Values) {
			return false
		}
		for r := range c.Values {
			if c.Values[r] != oc.Values[r] {
				return false
			}
		}
	}
	return true
}

func (df *DataFrame) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(df.Headers(), "\t"))
	for _, row := range df.Records() {
		sb.WriteString("\n")
		for i, v := range row {
			if i > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(FormatValue(v))
		}
	}
	return sb.String()
}

// ParseValue converts a raw cell into a typed value: numbers become float64,
// the empty string becomes nil.
func ParseValue(raw string) interface{} {
	if raw == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "True", "true", "TRUE":
		return true
	case "False", "false", "FALSE":
		return false
	}
	return raw
}

// FormatValue is the inverse of ParseValue.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

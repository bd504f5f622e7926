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
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

// ErrFileNotFound is returned by Load when the location does not exist.
var ErrFileNotFound = errors.New("file not found")

// Location turns a bare path into an absolute one; URLs with a scheme are
// returned unchanged.
func Location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Load downloads the bytes at location through fs.
func Load(ctx context.Context, fs afs.Service, location string) ([]byte, error) {
	loc := Location(location)
	ok, err := fs.Exists(ctx, loc)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", location)
	}
	if !ok {
		return nil, errors.Wrap(ErrFileNotFound, location)
	}
	data, err := fs.DownloadWithURL(ctx, loc)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", location)
	}
	return data, nil
}

// Store uploads data to location through fs.
func Store(ctx context.Context, fs afs.Service, location string, data []byte) error {
	if err := fs.Upload(ctx, Location(location), os.FileMode(0644), bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "upload %s", location)
	}
	return nil
}

// ReadCSV parses delimited text whose first record is the header row.
func ReadCSV(data []byte, delimiter string) (*DataFrame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if delimiter != "" {
		if len([]rune(delimiter)) != 1 {
			return nil, errors.Errorf("unsupported delimiter %q", delimiter)
		}
		r.Comma = []rune(delimiter)[0]
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return &DataFrame{}, nil
	}
	headers := uniqueHeaders(records[0])
	rows := make([][]interface{}, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]interface{}, len(headers))
		for i := range headers {
			if i < len(rec) {
				row[i] = ParseValue(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return New(headers, rows), nil
}

// WriteCSV renders df as comma separated text with a header row and no index.
func WriteCSV(df *DataFrame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(df.Headers()); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	for _, row := range df.Records() {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExcelOptions mirror the subset of read_excel arguments the importer supports.
type ExcelOptions struct {
	HasHeaders bool
	SkipRows   int
}

// ReadExcel reads the named sheets of a workbook. The result follows the order
// of sheetNames.
func ReadExcel(data []byte, sheetNames []string, opts ExcelOptions) ([]*DataFrame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	ret := make([]*DataFrame, 0, len(sheetNames))
	for _, name := range sheetNames {
		if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
			return nil, errors.Errorf("sheet %q not found", name)
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.Wrapf(err, "read sheet %q", name)
		}
		if opts.SkipRows > 0 {
			if opts.SkipRows >= len(rows) {
				rows = nil
			} else {
				rows = rows[opts.SkipRows:]
			}
		}
		ret = append(ret, sheetToFrame(rows, opts.HasHeaders))
	}
	return ret, nil
}

func sheetToFrame(rows [][]string, hasHeaders bool) *DataFrame {
	if len(rows) == 0 {
		return &DataFrame{}
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	var headers []string
	body := rows
	if hasHeaders {
		headers = make([]string, width)
		copy(headers, rows[0])
		headers = uniqueHeaders(headers)
		body = rows[1:]
	} else {
		headers = make([]string, width)
		for i := range headers {
			headers[i] = strconv.Itoa(i)
		}
	}
	records := make([][]interface{}, len(body))
	for r, raw := range body {
		row := make([]interface{}, width)
		for i := 0; i < width && i < len(raw); i++ {
			row[i] = ParseValue(raw[i])
		}
		records[r] = row
	}
	return New(headers, records)
}

// SheetStyle is the coloring applied to an exported sheet. Even and odd
// count data rows from zero, so the first row under the header is even.
type SheetStyle struct {
	HeaderBackground string
	HeaderFont       string
	EvenBackground   string
	EvenFont         string
	OddBackground    string
	OddFont          string
}

// NamedFrame pairs a frame with its sheet name for WriteExcel.
type NamedFrame struct {
	Sheet string
	Frame *DataFrame
	Style *SheetStyle
}

// WriteExcel renders the given sheets into an xlsx workbook.
func WriteExcel(sheets []NamedFrame) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, errors.New("no sheets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Sheet); err != nil {
				return nil, errors.Wrapf(err, "name sheet %q", s.Sheet)
			}
		} else if _, err := f.NewSheet(s.Sheet); err != nil {
			return nil, errors.Wrapf(err, "create sheet %q", s.Sheet)
		}
		header := make([]interface{}, len(s.Frame.Columns))
		for i, h := range s.Frame.Headers() {
			header[i] = h
		}
		if err := f.SetSheetRow(s.Sheet, "A1", &header); err != nil {
			return nil, errors.Wrapf(err, "write header of %q", s.Sheet)
		}
		for r, row := range s.Frame.Records() {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.Sheet, cell, &row); err != nil {
				return nil, errors.Wrapf(err, "write row %d of %q", r, s.Sheet)
			}
		}
		if s.Style != nil && len(s.Frame.Columns) > 0 {
			if err := applyStyle(f, s.Sheet, s.Frame, s.Style); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "serialize workbook")
	}
	return buf.Bytes(), nil
}

func applyStyle(f *excelize.File, sheet string, df *DataFrame, st *SheetStyle) error {
	header, err := colorStyle(f, st.HeaderBackground, st.HeaderFont)
	if err != nil {
		return errors.Wrapf(err, "style header of %q", sheet)
	}
	even, err := colorStyle(f, st.EvenBackground, st.EvenFont)
	if err != nil {
		return errors.Wrapf(err, "style even rows of %q", sheet)
	}
	odd, err := colorStyle(f, st.OddBackground, st.OddFont)
	if err != nil {
		return errors.Wrapf(err, "style odd rows of %q", sheet)
	}
	width := len(df.Columns)
	if err := styleRow(f, sheet, 1, width, header); err != nil {
		return err
	}
	for r := 0; r < df.NumRows(); r++ {
		id := even
		if r%2 == 1 {
			id = odd
		}
		if err := styleRow(f, sheet, r+2, width, id); err != nil {
			return err
		}
	}
	return nil
}

// colorStyle registers a fill and font color pair. Zero means no style.
func colorStyle(f *excelize.File, background, font string) (int, error) {
	if background == "" && font == "" {
		return 0, nil
	}
	style := &excelize.Style{}
	if background != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{background}}
	}
	if font != "" {
		style.Font = &excelize.Font{Color: font}
	}
	return f.NewStyle(style)
}

func styleRow(f *excelize.File, sheet string, row, width, id int) error {
	if id == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, id)
}

func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	ret := make([]string, len(raw))
	for i, h := range raw {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n)
		} else {
			seen[h] = 1
		}
		ret[i] = h
	}
	return ret
}

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

// Package state holds the per-step snapshot of the workbook: dataframe names,
// frames, where each frame came from, and its display formats.
package state

import (
	"encoding/binary"
	"regexp"

	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

// DfSource records how a dataframe entered the workbook.
type DfSource string

const (
	SourcePassed     DfSource = "passed"
	SourceImported   DfSource = "imported"
	SourceDuplicated DfSource = "duplicated"
)

type ColorFormat struct {
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
}

type RowFormat struct {
	Even ColorFormat `json:"even" yaml:"even"`
	Odd  ColorFormat `json:"odd" yaml:"odd"`
}

// DataframeFormat is the display formatting of one sheet, carried into excel
// exports.
type DataframeFormat struct {
	Headers ColorFormat `json:"headers" yaml:"headers"`
	Rows    RowFormat   `json:"rows" yaml:"rows"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// ValidHexColor reports whether s is a #rgb or #rrggbb literal.
func ValidHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Validate rejects any color that is set but is not a hex literal.
func (f DataframeFormat) Validate() error {
	for _, c := range []struct{ field, value string }{
		{"headers.color", f.Headers.Color},
		{"headers.backgroundColor", f.Headers.BackgroundColor},
		{"rows.even.color", f.Rows.Even.Color},
		{"rows.even.backgroundColor", f.Rows.Even.BackgroundColor},
		{"rows.odd.color", f.Rows.Odd.Color},
		{"rows.odd.backgroundColor", f.Rows.Odd.BackgroundColor},
	} {
		if c.value != "" && !ValidHexColor(c.value) {
			return errors.Errorf("%s %q is not a valid hex color", c.field, c.value)
		}
	}
	return nil
}

func (f DataframeFormat) IsZero() bool {
	return f == DataframeFormat{}
}

// State is immutable once a step has produced it. Mutating helpers return a
// copy.
type State struct {
	DfNames   []string
	Dfs       []*frame.DataFrame
	DfSources []DfSource
	DfFormats []DataframeFormat
}

func New() *State {
	return &State{}
}

// Clone copies the slices; frames are shared since they are never mutated.
func (s *State) Clone() *State {
	if s == nil {
		return New()
	}
	return &State{
		DfNames:   append([]string(nil), s.DfNames...),
		Dfs:       append([]*frame.DataFrame(nil), s.Dfs...),
		DfSources: append([]DfSource(nil), s.DfSources...),
		DfFormats: append([]DataframeFormat(nil), s.DfFormats...),
	}
}

func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.DfNames)
}

// CheckIndex returns an error when idx does not name a sheet.
func (s *State) CheckIndex(idx int) error {
	if idx < 0 || idx >= s.Len() {
		return errors.Errorf("sheet index %d out of range [0, %d)", idx, s.Len())
	}
	return nil
}

// WithDataframe returns a copy with df appended and the index it landed at.
func (s *State) WithDataframe(df *frame.DataFrame, name string, source DfSource) (*State, int) {
	out := s.Clone()
	out.DfNames = append(out.DfNames, name)
	out.Dfs = append(out.Dfs, df)
	out.DfSources = append(out.DfSources, source)
	out.DfFormats = append(out.DfFormats, DataframeFormat{})
	return out, len(out.DfNames) - 1
}

// WithFrame returns a copy where sheet idx holds df.
func (s *State) WithFrame(idx int, df *frame.DataFrame) (*State, error) {
	if err := s.CheckIndex(idx); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Dfs[idx] = df
	return out, nil
}

// WithFormat returns a copy where sheet idx uses format.
func (s *State) WithFormat(idx int, format DataframeFormat) (*State, error) {
	if err := s.CheckIndex(idx); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.DfFormats[idx] = format
	return out, nil
}

// WithoutDataframes returns a copy with the given sheets removed; later sheets
// shift down.
func (s *State) WithoutDataframes(indexes []int) (*State, error) {
	drop := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if err := s.CheckIndex(idx); err != nil {
			return nil, err
		}
		drop[idx] = true
	}
	out := New()
	for i := range s.DfNames {
		if drop[i] {
			continue
		}
		out.DfNames = append(out.DfNames, s.DfNames[i])
		out.Dfs = append(out.Dfs, s.Dfs[i])
		out.DfSources = append(out.DfSources, s.DfSources[i])
		out.DfFormats = append(out.DfFormats, s.DfFormats[i])
	}
	return out, nil
}

// IndexOf returns the sheet index of a dataframe name, or -1.
func (s *State) IndexOf(name string) int {
	for i, n := range s.DfNames {
		if n == name {
			return i
		}
	}
	return -1
}

// DataframesEqual compares names and frames value for value.
func (s *State) DataframesEqual(other *State) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := range s.DfNames {
		if s.DfNames[i] != other.DfNames[i] || !s.Dfs[i].Equal(other.Dfs[i]) {
			return false
		}
	}
	return true
}

var hashKey = []byte("sheetcoder-state-fingerprint-key")

// Hash fingerprints names, frames and formats. Equal states hash equally.
func (s *State) Hash() uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// only fails on a key of the wrong size
		panic(err)
	}
	var buf [8]byte
	writeStr := func(v string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(v)))
		h.Write(buf[:])
		h.Write([]byte(v))
	}
	for i := 0; i < s.Len(); i++ {
		writeStr(s.DfNames[i])
		writeStr(string(s.DfSources[i]))
		f := s.DfFormats[i]
		for _, c := range []string{f.Headers.Color, f.Headers.BackgroundColor, f.Rows.Even.Color,
			f.Rows.Even.BackgroundColor, f.Rows.Odd.Color, f.Rows.Odd.BackgroundColor} {
			writeStr(c)
		}
		df := s.Dfs[i]
		if df == nil {
			continue
		}
		for _, c := range df.Columns {
			writeStr(c.Header)
			for _, v := range c.Values {
				writeStr(frame.FormatValue(v))
			}
		}
	}
	return h.Sum64()
}

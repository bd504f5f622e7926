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

// Package chunk defines the code chunk contract: a unit of generated pandas
// code that knows how to render itself and which sheets it touches.
package chunk

import (
	"fmt"
	"reflect"

	"github.com/cloudwego/sheetcoder/lang/state"
)

// ParamType is the kind of a parameterizable literal.
type ParamType string

const (
	ParamTypeDfName   ParamType = "df_name"
	ParamTypeFileName ParamType = "file_name"
)

// ParamSubtype refines a ParamType with where the literal came from.
type ParamSubtype string

const (
	SubtypeImportDataframe     ParamSubtype = "import_dataframe"
	SubtypeFileNameImportCSV   ParamSubtype = "file_name_import_csv"
	SubtypeFileNameImportExcel ParamSubtype = "file_name_import_excel"
	SubtypeFileNameExportCSV   ParamSubtype = "file_name_export_csv"
	SubtypeFileNameExportExcel ParamSubtype = "file_name_export_excel"
)

// Param is a literal in rendered code that can be lifted into a function parameter.
// Value is the literal exactly as rendered.
type Param struct {
	Value   string
	Type    ParamType
	Subtype ParamSubtype
}

// CodeChunk is one unit of generated code.
//
// Chunks are immutable. CombineRight and CombineLeft return a new chunk or nil
// when the pair cannot be fused.
type CodeChunk interface {
	PrevState() *state.State
	PostState() *state.State

	DisplayName() string
	DescriptionComment() string

	// Render is pure; unsupported options are returned as *ConfigError.
	Render() (code []string, imports []string, err error)

	CreatedSheetIndexes() IndexSet
	EditedSheetIndexes() IndexSet
	SourceSheetIndexes() IndexSet
	// DeletedSheetIndexes lists the sheets removed from the state. A non-empty
	// set drives dead code elimination.
	DeletedSheetIndexes() IndexSet

	ParameterizableParams() []Param

	CombineRight(next CodeChunk) CodeChunk
	CombineLeft(prev CodeChunk) CodeChunk

	// ParamsMatch compares the named fields of two chunks of the same variant.
	ParamsMatch(other CodeChunk, keys ...string) bool
}

// Base carries the states and the conservative defaults. Variants embed it and
// override what they can prove.
type Base struct {
	Prev *state.State
	Post *state.State
}

func NewBase(prev, post *state.State) Base {
	return Base{Prev: prev, Post: post}
}

func (b Base) PrevState() *state.State { return b.Prev }

func (b Base) PostState() *state.State { return b.Post }

func (b Base) CreatedSheetIndexes() IndexSet { return Unknown() }

func (b Base) EditedSheetIndexes() IndexSet { return Unknown() }

func (b Base) SourceSheetIndexes() IndexSet { return Unknown() }

func (b Base) DeletedSheetIndexes() IndexSet { return None() }

func (b Base) ParameterizableParams() []Param { return nil }

func (b Base) CombineRight(next CodeChunk) CodeChunk { return nil }

func (b Base) CombineLeft(prev CodeChunk) CodeChunk { return nil }

// FieldMatcher returns the comparable value of a named field and whether the
// name is known.
type FieldMatcher func(key string) (interface{}, bool)

// FieldsMatch reports whether every key resolves on both sides to equal values.
// An unknown key never matches.
func FieldsMatch(a, b FieldMatcher, keys []string) bool {
	for _, key := range keys {
		va, ok := a(key)
		if !ok {
			return false
		}
		vb, ok := b(key)
		if !ok {
			return false
		}
		if !reflect.DeepEqual(va, vb) {
			return false
		}
	}
	return true
}

// ConfigError is an unsupported option on a chunk or step. It is never
// recovered from.
type ConfigError struct {
	Chunk  string
	Option string
	Value  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: unsupported %s %q", e.Chunk, e.Option, e.Value)
}

// Empty renders nothing. Combinations that cancel out return it and the
// optimizer drops it.
type Empty struct {
	Base
}

func NewEmpty(prev, post *state.State) *Empty {
	return &Empty{Base: NewBase(prev, post)}
}

func (c *Empty) DisplayName() string { return "Empty" }

func (c *Empty) DescriptionComment() string { return "" }

func (c *Empty) Render() ([]string, []string, error) { return nil, nil, nil }

func (c *Empty) CreatedSheetIndexes() IndexSet { return None() }

func (c *Empty) EditedSheetIndexes() IndexSet { return None() }

func (c *Empty) SourceSheetIndexes() IndexSet { return None() }

func (c *Empty) ParamsMatch(other CodeChunk, keys ...string) bool {
	_, ok := other.(*Empty)
	return ok && len(keys) == 0
}

// IsEmpty reports whether c is an *Empty chunk.
func IsEmpty(c CodeChunk) bool {
	_, ok := c.(*Empty)
	return ok
}

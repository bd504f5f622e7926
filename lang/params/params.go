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

// Package params lifts literals out of transpiled code into function
// parameters.
package params

import (
	"fmt"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/frame"
)

// Descriptor describes one parameter of the generated function.
type Descriptor struct {
	InitialValue string             `json:"initial_value" jsonschema:"description=literal as it appears in the generated code"`
	Type         chunk.ParamType    `json:"type" jsonschema:"enum=df_name,enum=file_name"`
	Subtype      chunk.ParamSubtype `json:"subtype"`
	Required     bool               `json:"required" jsonschema:"description=dataframe parameters have no default"`
	Name         string             `json:"name"`
}

// Candidates lists the parameterizable literals in order: every entry-point
// argument that is not a string literal, then each chunk's own params.
func Candidates(chunks []chunk.CodeChunk, args []string) []chunk.Param {
	var out []chunk.Param
	for _, arg := range args {
		if chunk.IsStringLiteral(arg) {
			continue
		}
		out = append(out, chunk.Param{Value: arg, Type: chunk.ParamTypeDfName, Subtype: chunk.SubtypeImportDataframe})
	}
	for _, c := range chunks {
		out = append(out, c.ParameterizableParams()...)
	}
	return out
}

// GenerateNames returns one unique Python identifier per candidate.
// Dataframe arguments keep their identifier; everything else is named
// <subtype>_<n>, counting per subtype from 0.
func GenerateNames(candidates []chunk.Param) []string {
	used := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		if p.Type == chunk.ParamTypeDfName && frame.IsIdentifier(p.Value) {
			used[p.Value] = true
		}
	}
	counters := make(map[chunk.ParamSubtype]int)
	next := func(subtype chunk.ParamSubtype) string {
		for {
			name := fmt.Sprintf("%s_%d", subtype, counters[subtype])
			counters[subtype]++
			if !used[name] {
				used[name] = true
				return name
			}
		}
	}

	names := make([]string, len(candidates))
	for i, p := range candidates {
		if p.Type == chunk.ParamTypeDfName && frame.IsIdentifier(p.Value) {
			names[i] = p.Value
			continue
		}
		names[i] = next(p.Subtype)
	}
	return names
}

// Parameterize binds the candidates of the chunk sequence to generated names.
// The chunks are expected to be optimized already.
func Parameterize(chunks []chunk.CodeChunk, args []string) []Descriptor {
	candidates := Candidates(chunks, args)
	names := GenerateNames(candidates)
	out := make([]Descriptor, 0, len(candidates))
	for i, p := range candidates {
		out = append(out, Descriptor{
			InitialValue: p.Value,
			Type:         p.Type,
			Subtype:      p.Subtype,
			Required:     p.Type == chunk.ParamTypeDfName,
			Name:         names[i],
		})
	}
	return out
}

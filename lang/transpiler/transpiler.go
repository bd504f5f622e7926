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

// Package transpiler turns a chunk sequence into a Python script.
package transpiler

import (
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/log"
	"github.com/cloudwego/sheetcoder/lang/optimizer"
	"github.com/cloudwego/sheetcoder/lang/state"
)

type Options struct {
	// Comments emits each chunk's description above its code.
	Comments bool
	// NoOptimize emits the chunks as given.
	NoOptimize bool
	Optimizer  optimizer.Options
}

// Result is the emitted script split into its parts.
type Result struct {
	Imports []string
	Code    []string
	// Chunks is the sequence that was rendered.
	Chunks []chunk.CodeChunk
	// Final is the state after the last chunk, nil for an empty sequence.
	Final *state.State
	// Unoptimized is set when the optimizer failed and the input was emitted
	// as is.
	Unoptimized bool
}

// String joins imports, a blank line and the body.
func (r *Result) String() string {
	var sb strings.Builder
	for _, imp := range r.Imports {
		sb.WriteString(imp)
		sb.WriteString("\n")
	}
	if len(r.Imports) > 0 && len(r.Code) > 0 {
		sb.WriteString("\n")
	}
	for _, line := range r.Code {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Transpile optimizes the sequence and emits it. A non-converging optimizer is
// logged and the unoptimized sequence is emitted instead.
func Transpile(chunks []chunk.CodeChunk, opts Options) (*Result, error) {
	seq := chunks
	unoptimized := false
	if !opts.NoOptimize {
		optimized, err := optimizer.Optimize(chunks, opts.Optimizer)
		if err != nil {
			if !errors.Is(err, optimizer.ErrNotConverged) {
				return nil, err
			}
			log.Error("emitting %d unoptimized chunks: %v", len(chunks), err)
			unoptimized = true
		}
		seq = optimized
	}
	res, err := Emit(seq, opts.Comments)
	if err != nil {
		return nil, err
	}
	res.Unoptimized = unoptimized
	if len(chunks) > 0 {
		res.Final = chunks[len(chunks)-1].PostState()
	}
	return res, nil
}

// Emit renders chunks in order and merges their imports.
func Emit(chunks []chunk.CodeChunk, comments bool) (*Result, error) {
	res := &Result{Chunks: chunks}
	var imports [][]string
	for i, c := range chunks {
		code, imps, err := c.Render()
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "render chunk %d (%s)", i, c.DisplayName())
		}
		imports = append(imports, imps)
		if len(code) == 0 {
			continue
		}
		if comments {
			if desc := c.DescriptionComment(); desc != "" {
				res.Code = append(res.Code, "# "+desc)
			}
		}
		res.Code = append(res.Code, code...)
	}
	res.Imports = mergeImports(imports...)
	return res, nil
}

// mergeImports keeps the first occurrence of every import line.
func mergeImports(groups ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range groups {
		for _, imp := range group {
			imp = strings.TrimSpace(imp)
			if imp == "" || seen[imp] {
				continue
			}
			seen[imp] = true
			out = append(out, imp)
		}
	}
	return out
}

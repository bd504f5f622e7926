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

package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// Argument is one entry-point argument. Raw is the argument as written by the
// caller: a dataframe identifier, or a string literal naming a CSV file.
type Argument struct {
	Raw   string
	Frame *frame.DataFrame
}

// IsFile reports whether the argument is a string literal path.
func (a Argument) IsFile() bool {
	return chunk.IsStringLiteral(a.Raw)
}

// argImport is a CSV file read on behalf of a string argument.
type argImport struct {
	prev, post *state.State
	path, name string
}

// preprocessArgs builds the initial state. String literal arguments are read
// as CSV files through fs and later rendered as imports.
func preprocessArgs(ctx context.Context, fs afs.Service, args []Argument) (*state.State, []argImport, error) {
	st := state.New()
	var imports []argImport
	for i, arg := range args {
		if arg.IsFile() {
			path := chunk.UnquoteLiteral(arg.Raw)
			data, err := frame.Load(ctx, fs, frame.Location(path))
			if err != nil {
				return nil, nil, errors.Wrapf(err, "argument %d", i)
			}
			df, err := frame.ReadCSV(data, ",")
			if err != nil {
				return nil, nil, errors.Wrapf(err, "argument %d", i)
			}
			name := frame.ValidDataframeName(st.DfNames, path)
			next, _ := st.WithDataframe(df, name, state.SourceImported)
			imports = append(imports, argImport{prev: st, post: next, path: path, name: name})
			st = next
			continue
		}
		if arg.Frame == nil {
			return nil, nil, errors.Errorf("argument %d (%s) has no dataframe", i, arg.Raw)
		}
		name := arg.Raw
		if !frame.IsIdentifier(name) || st.IndexOf(name) >= 0 {
			name = frame.ValidDataframeName(st.DfNames, arg.Raw)
		}
		st, _ = st.WithDataframe(arg.Frame, name, state.SourcePassed)
	}
	return st, imports, nil
}

func (a argImport) chunk() chunk.CodeChunk {
	return chunks.NewSimpleImport(a.prev, a.post, []string{a.path}, []string{a.name}, ",")
}

func rawArgs(args []Argument) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Raw
	}
	return out
}

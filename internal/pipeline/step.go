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
	"sort"

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// StepPerformer executes one step type against a state and builds its code
// chunks.
type StepPerformer interface {
	Type() StepType
	// IsImport marks performers whose steps can be swapped by
	// UpdateExistingImports.
	IsImport() bool
	Execute(ctx context.Context, prev *state.State, params Params) (*state.State, ExecData, error)
	Transpile(prev, post *state.State, params Params, exec ExecData) ([]chunk.CodeChunk, error)
}

// RecoverableError marks a failure worth retrying, such as a transient read.
type RecoverableError struct {
	Err error
}

func (e *RecoverableError) Error() string { return e.Err.Error() }

func (e *RecoverableError) Unwrap() error { return e.Err }

// Recoverable reports whether err or anything it wraps is a RecoverableError.
func Recoverable(err error) bool {
	var r *RecoverableError
	return errors.As(err, &r)
}

// Registry maps step types to performers.
type Registry struct {
	performers map[StepType]StepPerformer
}

func NewRegistry(performers ...StepPerformer) *Registry {
	r := &Registry{performers: make(map[StepType]StepPerformer, len(performers))}
	for _, p := range performers {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any performer of the same type.
func (r *Registry) Register(p StepPerformer) {
	r.performers[p.Type()] = p
}

func (r *Registry) Get(t StepType) (StepPerformer, error) {
	p, ok := r.performers[t]
	if !ok {
		return nil, errors.Errorf("unknown step type %q", t)
	}
	return p, nil
}

// Types lists the registered step types in order.
func (r *Registry) Types() []StepType {
	out := make([]StepType, 0, len(r.performers))
	for t := range r.performers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

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
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/state"
)

// StepType tags which performer runs a step.
type StepType string

// Params is a step's parameter bundle as recorded, e.g. decoded from JSON or
// YAML.
type Params map[string]interface{}

// Decode fills v, a pointer to a performer's typed params, from p.
func (p Params) Decode(v interface{}) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "decode params")
	}
	return nil
}

// EncodeParams is the inverse of Params.Decode.
func EncodeParams(v interface{}) (Params, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode params")
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Wrap(err, "decode params")
	}
	return p, nil
}

// ExecData is what a performer learned while executing that its code needs,
// e.g. the dataframe names it chose.
type ExecData map[string]interface{}

// Step is one recorded user action. A step is never mutated once stored;
// replaying it yields a new Step with the same ID.
type Step struct {
	ID       string
	Type     StepType
	Params   Params
	Prev     *state.State
	Post     *state.State
	ExecData ExecData
	// Skipped steps keep Post == Prev and produce no code.
	Skipped bool
}

func (s *Step) withResult(prev, post *state.State, exec ExecData, skipped bool) *Step {
	return &Step{
		ID:       s.ID,
		Type:     s.Type,
		Params:   s.Params,
		Prev:     prev,
		Post:     post,
		ExecData: exec,
		Skipped:  skipped,
	}
}

// StepRecord is an immutable log entry for one step execution.
type StepRecord struct {
	StepID   string
	StepType StepType
	Attempt  int
	Status   StepStatus
	Error    string
	Time     time.Time
}

// StepStatus is the outcome of a step run.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult describes a failed run to the Agent.
type StepResult struct {
	Status      StepStatus
	Recoverable bool
	Err         error
}

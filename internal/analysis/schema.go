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

package analysis

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/internal/pipeline/steps"
)

// Schema is the JSON Schema of an analysis file. Each step's params are
// described under $defs, keyed by step type.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&Analysis{})
	if s.Definitions == nil {
		s.Definitions = jsonschema.Definitions{}
	}
	for t, v := range steps.ParamTypes() {
		s.Definitions[string(t)] = (&jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}).Reflect(v)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode schema")
	}
	return data, nil
}

// StepSchema is the JSON Schema of the params of one step type.
func StepSchema(t pipeline.StepType) ([]byte, error) {
	v, ok := steps.ParamTypes()[t]
	if !ok {
		return nil, errors.Errorf("unknown step type %q", t)
	}
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	data, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode schema")
	}
	return data, nil
}

// StepTypes lists the types StepSchema knows, sorted.
func StepTypes() []pipeline.StepType {
	var out []pipeline.StepType
	for t := range steps.ParamTypes() {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

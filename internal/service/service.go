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

// Package service exposes a step history to the outer surfaces. Requests and
// responses carry json and jsonschema tags so the same types serve the HTTP
// API, agent tools and the MCP server.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/lang/params"
	"github.com/cloudwego/sheetcoder/lang/transpiler"
)

type Options struct {
	// FunctionName names the generated function; "function" when empty.
	FunctionName string
	// Validate parses generated code and reports syntax errors.
	Validate bool
}

type Service struct {
	m    *pipeline.Manager
	opts Options
}

func New(m *pipeline.Manager, opts Options) *Service {
	if opts.FunctionName == "" {
		opts.FunctionName = "function"
	}
	return &Service{m: m, opts: opts}
}

func (s *Service) Manager() *pipeline.Manager { return s.m }

// cursorOf maps an absent cursor to the current one.
func cursorOf(c *int) int {
	if c == nil {
		return -1
	}
	return *c
}

type ApplyStepReq struct {
	Type   pipeline.StepType `json:"type" jsonschema:"description=step type such as add_column or simple_import"`
	Params pipeline.Params   `json:"params" jsonschema:"description=parameters of the step"`
}

type StepInfo struct {
	ID      string            `json:"id"`
	Type    pipeline.StepType `json:"type"`
	Params  pipeline.Params   `json:"params,omitempty"`
	Skipped bool              `json:"skipped,omitempty"`
}

type HistoryResp struct {
	Cursor int        `json:"cursor"`
	Steps  []StepInfo `json:"steps"`
	// Changed is set by undo and redo.
	Changed bool `json:"changed"`
}

func (s *Service) ApplyStep(ctx context.Context, req ApplyStepReq) (*HistoryResp, error) {
	if req.Type == "" {
		return nil, errors.New("step type is required")
	}
	if _, err := s.m.Apply(ctx, req.Type, req.Params); err != nil {
		return nil, err
	}
	return s.history(true), nil
}

func (s *Service) Undo(ctx context.Context) *HistoryResp {
	return s.history(s.m.Undo())
}

func (s *Service) Redo(ctx context.Context) *HistoryResp {
	return s.history(s.m.Redo())
}

func (s *Service) History(ctx context.Context) *HistoryResp {
	return s.history(false)
}

func (s *Service) history(changed bool) *HistoryResp {
	resp := &HistoryResp{Cursor: s.m.Cursor(), Changed: changed, Steps: []StepInfo{}}
	for _, st := range s.m.Steps() {
		resp.Steps = append(resp.Steps, StepInfo{ID: st.ID, Type: st.Type, Params: st.Params, Skipped: st.Skipped})
	}
	return resp
}

type TranspileReq struct {
	Cursor *int `json:"cursor,omitempty" jsonschema:"description=number of steps to include; all applied steps when omitted"`
	// AsFunction wraps the code in a function with parameterized literals.
	AsFunction bool `json:"as_function,omitempty" jsonschema:"description=emit a function whose parameters are the file names and dataframes"`
}

type TranspileResp struct {
	Code        string                       `json:"code"`
	Imports     []string                     `json:"imports"`
	Lines       []string                     `json:"lines"`
	Unoptimized bool                         `json:"unoptimized,omitempty"`
	Validation  *transpiler.ValidationResult `json:"validation,omitempty"`
}

func (s *Service) Transpile(ctx context.Context, req TranspileReq) (*TranspileResp, error) {
	cursor := cursorOf(req.Cursor)
	res, err := s.m.Transpile(cursor)
	if err != nil {
		return nil, err
	}
	resp := &TranspileResp{
		Code:        res.String(),
		Imports:     nonNil(res.Imports),
		Lines:       nonNil(res.Code),
		Unoptimized: res.Unoptimized,
	}
	if req.AsFunction {
		if resp.Code, err = s.m.Function(cursor, s.opts.FunctionName); err != nil {
			return nil, err
		}
	}
	if s.opts.Validate {
		v, err := transpiler.Validate(ctx, resp.Code)
		if err != nil {
			return nil, errors.Wrap(err, "validate code")
		}
		resp.Validation = &v
	}
	return resp, nil
}

type ParamsReq struct {
	Cursor *int `json:"cursor,omitempty" jsonschema:"description=number of steps to include; all applied steps when omitted"`
}

type ParamsResp struct {
	Params []params.Descriptor `json:"params"`
}

func (s *Service) ParameterizableParams(ctx context.Context, req ParamsReq) (*ParamsResp, error) {
	ds, err := s.m.ParameterizableParams(cursorOf(req.Cursor))
	if err != nil {
		return nil, err
	}
	if ds == nil {
		ds = []params.Descriptor{}
	}
	return &ParamsResp{Params: ds}, nil
}

type ImportsReq struct {
	Replacements []pipeline.ImportReplacement `json:"replacements" jsonschema:"description=import steps to swap, by history position"`
	// DryRun only tests the replacements.
	DryRun bool `json:"dry_run,omitempty" jsonschema:"description=report which replacements would fail without changing anything"`
}

type ImportsResp struct {
	OK bool `json:"ok"`
	// Errors maps history positions to failures.
	Errors map[int]string `json:"errors,omitempty"`
	Cursor int            `json:"cursor"`
}

// UpdateImports replaces import steps atomically. Failures of the replacement
// are reported in the response, not as an error.
func (s *Service) UpdateImports(ctx context.Context, req ImportsReq) (*ImportsResp, error) {
	if req.DryRun {
		errs := s.m.TestImports(ctx, req.Replacements)
		return &ImportsResp{OK: len(errs) == 0, Errors: errs, Cursor: s.m.Cursor()}, nil
	}
	err := s.m.UpdateExistingImports(ctx, req.Replacements)
	var upd *pipeline.ImportUpdateError
	switch {
	case err == nil:
		return &ImportsResp{OK: true, Cursor: s.m.Cursor()}, nil
	case errors.As(err, &upd):
		return &ImportsResp{Errors: upd.Errors, Cursor: s.m.Cursor()}, nil
	default:
		return nil, err
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Summary is a one line description of the history, for status output.
func (s *Service) Summary() string {
	st := s.m.State()
	return fmt.Sprintf("cursor %d of %d, dataframes: %s", s.m.Cursor(), s.m.Len(), strings.Join(st.DfNames, ", "))
}

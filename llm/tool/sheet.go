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

// Package tool wraps a step history as agent tools.
package tool

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/invopop/jsonschema"

	"github.com/cloudwego/sheetcoder/internal/service"
)

const (
	ToolTranspile                = "transpile"
	DescTranspile                = "generate the pandas code of the recorded steps, optionally as a function"
	ToolGetParameterizableParams = "get_parameterizable_params"
	DescGetParameterizableParams = "list the dataframes and file names of the generated code that can become function parameters"
	ToolUpdateExistingImports    = "update_existing_imports"
	DescUpdateExistingImports    = "replace import steps with new files and replay every later step; all replacements apply or none do"
	ToolApplyStep                = "apply_step"
	DescApplyStep                = "apply a step such as add_column or export_to_file to the current state"
	ToolUndo                     = "undo"
	DescUndo                     = "revert the last applied step or import update"
	ToolRedo                     = "redo"
	DescRedo                     = "re-apply the last undone change"
)

var (
	SchemaTranspile                = GetJSONSchema(service.TranspileReq{})
	SchemaGetParameterizableParams = GetJSONSchema(service.ParamsReq{})
	SchemaUpdateExistingImports    = GetJSONSchema(service.ImportsReq{})
	SchemaApplyStep                = GetJSONSchema(service.ApplyStepReq{})
	SchemaUndo                     = GetJSONSchema(HistoryReq{})
	SchemaRedo                     = GetJSONSchema(HistoryReq{})
)

// GetJSONSchema returns the inline JSON Schema of a request type.
func GetJSONSchema(v interface{}) json.RawMessage {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	data, err := json.Marshal(r.Reflect(v))
	if err != nil {
		panic(err)
	}
	return data
}

// HistoryReq takes no arguments.
type HistoryReq struct{}

// SheetTools serves one step history.
type SheetTools struct {
	svc   *service.Service
	tools map[string]tool.InvokableTool
}

func marshalOutput(ctx context.Context, output interface{}) (string, error) {
	data, err := json.MarshalIndent(output, "", "  ")
	return string(data), err
}

func register[T, D any](tools map[string]tool.InvokableTool, name, desc string, fn func(context.Context, T) (D, error)) error {
	tt, err := utils.InferTool[T, D](name, desc, fn, utils.WithMarshalOutput(marshalOutput))
	if err != nil {
		return err
	}
	tools[name] = tt
	return nil
}

func NewSheetTools(svc *service.Service) (*SheetTools, error) {
	ret := &SheetTools{svc: svc, tools: map[string]tool.InvokableTool{}}
	for _, err := range []error{
		register(ret.tools, ToolTranspile, DescTranspile, ret.Transpile),
		register(ret.tools, ToolGetParameterizableParams, DescGetParameterizableParams, ret.GetParameterizableParams),
		register(ret.tools, ToolUpdateExistingImports, DescUpdateExistingImports, ret.UpdateExistingImports),
		register(ret.tools, ToolApplyStep, DescApplyStep, ret.ApplyStep),
		register(ret.tools, ToolUndo, DescUndo, ret.Undo),
		register(ret.tools, ToolRedo, DescRedo, ret.Redo),
	} {
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// GetTools returns the tools sorted by name.
func (t *SheetTools) GetTools() []tool.InvokableTool {
	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	ret := make([]tool.InvokableTool, 0, len(names))
	for _, name := range names {
		ret = append(ret, t.tools[name])
	}
	return ret
}

func (t *SheetTools) GetTool(name string) tool.InvokableTool {
	return t.tools[name]
}

func (t *SheetTools) Transpile(ctx context.Context, req service.TranspileReq) (*service.TranspileResp, error) {
	return t.svc.Transpile(ctx, req)
}

func (t *SheetTools) GetParameterizableParams(ctx context.Context, req service.ParamsReq) (*service.ParamsResp, error) {
	return t.svc.ParameterizableParams(ctx, req)
}

func (t *SheetTools) UpdateExistingImports(ctx context.Context, req service.ImportsReq) (*service.ImportsResp, error) {
	return t.svc.UpdateImports(ctx, req)
}

func (t *SheetTools) ApplyStep(ctx context.Context, req service.ApplyStepReq) (*service.HistoryResp, error) {
	return t.svc.ApplyStep(ctx, req)
}

func (t *SheetTools) Undo(ctx context.Context, req HistoryReq) (*service.HistoryResp, error) {
	return t.svc.Undo(ctx), nil
}

func (t *SheetTools) Redo(ctx context.Context, req HistoryReq) (*service.HistoryResp, error) {
	return t.svc.Redo(ctx), nil
}

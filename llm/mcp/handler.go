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

package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cloudwego/sheetcoder/llm/tool"
)

type Tool = server.ServerTool

// NewTool binds a typed handler to an MCP tool. Handler errors are returned
// as error results, not protocol errors.
func NewTool[R any, T any](name string, desc string, schema json.RawMessage, handler func(ctx context.Context, req R) (*T, error)) Tool {
	return Tool{
		Tool: mcp.NewToolWithRawSchema(name, desc, schema),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var req R
			if err := request.BindArguments(&req); err != nil {
				return nil, err
			}
			var final string
			var isError bool
			if resp, err := handler(ctx, req); err != nil {
				isError = true
				final = err.Error()
			} else if js, err := json.Marshal(resp); err != nil {
				isError = true
				final = err.Error()
			} else {
				final = string(js)
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(final),
				},
				IsError: isError,
			}, nil
		},
	}
}

func getSheetTools(t *tool.SheetTools) []Tool {
	return []Tool{
		NewTool(tool.ToolTranspile, tool.DescTranspile, tool.SchemaTranspile, t.Transpile),
		NewTool(tool.ToolGetParameterizableParams, tool.DescGetParameterizableParams, tool.SchemaGetParameterizableParams, t.GetParameterizableParams),
		NewTool(tool.ToolUpdateExistingImports, tool.DescUpdateExistingImports, tool.SchemaUpdateExistingImports, t.UpdateExistingImports),
		NewTool(tool.ToolApplyStep, tool.DescApplyStep, tool.SchemaApplyStep, t.ApplyStep),
		NewTool(tool.ToolUndo, tool.DescUndo, tool.SchemaUndo, t.Undo),
		NewTool(tool.ToolRedo, tool.DescRedo, tool.SchemaRedo, t.Redo),
	}
}

const promptUsage = `You are editing a spreadsheet analysis that is recorded as steps.
Use apply_step to add steps, transpile to read the generated pandas code, and
get_parameterizable_params to see which dataframes and file names the function
form takes as parameters. To rerun the analysis on new files, call
update_existing_imports with dry_run first; it reports per step position which
replacement would fail.`

func handleUsagePrompt(
	ctx context.Context,
	request mcp.GetPromptRequest,
) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "How to drive a recorded spreadsheet analysis",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: promptUsage,
				},
			},
		},
	}, nil
}

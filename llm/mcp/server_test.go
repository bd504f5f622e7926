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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/internal/pipeline/steps"
	"github.com/cloudwego/sheetcoder/internal/service"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/log"
)

func newServer(t *testing.T) *Server {
	df := frame.New([]string{"A"}, [][]interface{}{{1.0}})
	m, err := pipeline.NewManager(context.Background(), steps.NewRegistry(nil),
		[]pipeline.Argument{{Raw: "df1", Frame: df}}, pipeline.Options{})
	require.NoError(t, err)
	svr, err := NewServer(ServerOptions{
		ServerName:    "sheetcoder",
		ServerVersion: "1.0.0",
		Service:       service.New(m, service.Options{}),
	})
	require.NoError(t, err)
	return svr
}

// call sends one JSON-RPC request and decodes the result member.
func call(t *testing.T, s *Server, id int, method string, params interface{}) map[string]interface{} {
	raw, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	resp := s.Server.HandleMessage(context.Background(), raw)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Nil(t, out["error"], string(data))
	result, ok := out["result"].(map[string]interface{})
	require.True(t, ok, string(data))
	return result
}

func textOf(t *testing.T, result map[string]interface{}) string {
	content, ok := result["content"].([]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	return content[0].(map[string]interface{})["text"].(string)
}

func TestServer(t *testing.T) {
	log.SetLogLevel(log.DebugLevel)
	defer log.SetLogLevel(log.InfoLevel)
	s := newServer(t)

	initRes := call(t, s, 1, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]interface{}{"name": "test-client", "version": "1.0.0"},
	})
	info := initRes["serverInfo"].(map[string]interface{})
	assert.Equal(t, "sheetcoder", info["name"])

	list := call(t, s, 2, "tools/list", map[string]interface{}{})
	var names []string
	for _, tt := range list["tools"].([]interface{}) {
		names = append(names, tt.(map[string]interface{})["name"].(string))
	}
	assert.ElementsMatch(t, []string{"transpile", "get_parameterizable_params", "update_existing_imports", "apply_step", "undo", "redo"}, names)

	res := call(t, s, 3, "tools/call", map[string]interface{}{
		"name":      "apply_step",
		"arguments": map[string]interface{}{"type": "add_column", "params": map[string]interface{}{"sheet_index": 0, "column_header": "B"}},
	})
	assert.NotEqual(t, true, res["isError"])

	res = call(t, s, 4, "tools/call", map[string]interface{}{"name": "transpile", "arguments": map[string]interface{}{}})
	var tr service.TranspileResp
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &tr))
	assert.Equal(t, "df1.insert(1, 'B', 0)\n", tr.Code)

	res = call(t, s, 5, "tools/call", map[string]interface{}{
		"name":      "apply_step",
		"arguments": map[string]interface{}{"type": "pivot"},
	})
	assert.Equal(t, true, res["isError"])
	assert.Contains(t, textOf(t, res), "pivot")

	prompt := call(t, s, 6, "prompts/get", map[string]interface{}{"name": "sheetcoder_usage"})
	assert.NotEmpty(t, prompt["messages"])
}

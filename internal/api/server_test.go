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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/internal/pipeline"
	"github.com/cloudwego/sheetcoder/internal/pipeline/steps"
	"github.com/cloudwego/sheetcoder/internal/service"
	"github.com/cloudwego/sheetcoder/lang/frame"
)

func newServer(t *testing.T) *Server {
	df := frame.New([]string{"A"}, [][]interface{}{{1.0}})
	m, err := pipeline.NewManager(context.Background(), steps.NewRegistry(nil),
		[]pipeline.Argument{{Raw: "df1", Frame: df}}, pipeline.Options{})
	require.NoError(t, err)
	return NewServer(service.New(m, service.Options{}))
}

func do(t *testing.T, s *Server, method, path, body string, out interface{}) int {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestServer_Steps(t *testing.T) {
	s := newServer(t)

	var h service.HistoryResp
	code := do(t, s, http.MethodPost, "/api/steps", `{"type":"add_column","params":{"sheet_index":0,"column_header":"B"}}`, &h)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 1, h.Cursor)

	var e map[string]string
	code = do(t, s, http.MethodPost, "/api/steps", `{"type":"rename_column","params":{"old_column_header":"Z","new_column_header":"Y"}}`, &e)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, e["error"], "Z")

	code = do(t, s, http.MethodPost, "/api/steps", `{"kind":"x"}`, &e)
	assert.Equal(t, http.StatusBadRequest, code)

	code = do(t, s, http.MethodPost, "/api/steps", `{"type":"set_dataframe_format","params":{"df_format":{"headers":{"color":"red"}}}}`, &e)
	assert.Equal(t, http.StatusBadRequest, code)

	var tr service.TranspileResp
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/code", "", &tr))
	assert.Equal(t, []string{"df1.insert(1, 'B', 0)"}, tr.Lines)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/code?cursor=0&function=true", "", &tr))
	assert.Equal(t, "def function(df1):\n    return df1\n", tr.Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/code?cursor=x", "", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodGet, "/api/code?cursor=5", "", nil))

	var p service.ParamsResp
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/params?cursor=1", "", &p))
	require.Len(t, p.Params, 1)
	assert.Equal(t, "df1", p.Params[0].Name)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/undo", "", &h))
	assert.True(t, h.Changed)
	assert.Equal(t, 0, h.Cursor)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/redo", "", &h))
	assert.Equal(t, 1, h.Cursor)
	do(t, s, http.MethodPost, "/api/redo", "", &h)
	assert.False(t, h.Changed)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/steps", "", &h))
	assert.Len(t, h.Steps, 1)
}

func TestServer_Imports(t *testing.T) {
	s := newServer(t)
	body := `{"replacements":[{"position":0,"type":"simple_import","params":{"file_names":["missing.csv"]}}]}`

	var resp service.ImportsResp
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/imports/test", body, &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Errors, 0)

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/imports/update", body, &resp))
	assert.Contains(t, resp.Errors, 0)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "", nil))
}

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

// Package chunks holds the code chunk variants, one per step type.
package chunks

import (
	"fmt"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/state"
)

const importPandas = "import pandas as pd"

func dfName(s *state.State, idx int) string {
	if s != nil && idx >= 0 && idx < len(s.DfNames) {
		return s.DfNames[idx]
	}
	return fmt.Sprintf("df%d", idx+1)
}

func countOf(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func withoutString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

var (
	_ chunk.CodeChunk = (*SimpleImport)(nil)
	_ chunk.CodeChunk = (*ExcelImport)(nil)
	_ chunk.CodeChunk = (*AddColumn)(nil)
	_ chunk.CodeChunk = (*DeleteColumns)(nil)
	_ chunk.CodeChunk = (*RenameColumn)(nil)
	_ chunk.CodeChunk = (*SetColumnFormula)(nil)
	_ chunk.CodeChunk = (*DuplicateDataframe)(nil)
	_ chunk.CodeChunk = (*DeleteDataframe)(nil)
	_ chunk.CodeChunk = (*ExportToFile)(nil)
	_ chunk.CodeChunk = (*SetDataframeFormat)(nil)
)

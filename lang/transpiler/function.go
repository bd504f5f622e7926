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

package transpiler

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/params"
)

// Function wraps the body of res into a function. Each non-dataframe
// parameter replaces the next occurrence of its literal in the body; required
// parameters come first, the rest default to their literal.
func Function(res *Result, name string, descriptors []params.Descriptor) (string, error) {
	if !frame.IsIdentifier(name) {
		return "", errors.Errorf("%q is not a valid function name", name)
	}
	body := append([]string(nil), res.Code...)
	var required, optional []string
	for _, d := range descriptors {
		if d.Required {
			required = append(required, d.Name)
			continue
		}
		optional = append(optional, d.Name+"="+d.InitialValue)
		replaceNext(body, d.InitialValue, d.Name)
	}

	var sb strings.Builder
	for _, imp := range res.Imports {
		sb.WriteString(imp)
		sb.WriteString("\n")
	}
	if len(res.Imports) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("def " + name + "(" + strings.Join(append(required, optional...), ", ") + "):\n")
	for _, line := range body {
		sb.WriteString(chunk.Tab + line + "\n")
	}
	var returns []string
	if res.Final != nil {
		returns = res.Final.DfNames
	}
	switch {
	case len(returns) > 0:
		sb.WriteString(chunk.Tab + "return " + strings.Join(returns, ", ") + "\n")
	case len(body) == 0:
		sb.WriteString(chunk.Tab + "pass\n")
	}
	return sb.String(), nil
}

// replaceNext replaces the first occurrence of literal not already consumed by
// an earlier parameter. Consumed occurrences were rewritten, so a plain search
// from the top finds the next one.
func replaceNext(lines []string, literal, name string) {
	for i, line := range lines {
		if strings.Contains(line, literal) {
			lines[i] = strings.Replace(line, literal, name, 1)
			return
		}
	}
}

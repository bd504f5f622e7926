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
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError is one ERROR or MISSING node in the parsed script.
type SyntaxError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// ValidationResult reports whether the script parses as Python.
type ValidationResult struct {
	Ok     bool          `json:"ok"`
	Errors []SyntaxError `json:"errors,omitempty"`
}

// Validate parses code with the tree-sitter Python grammar. Lines and
// columns are 1-based.
func Validate(ctx context.Context, code string) (ValidationResult, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, []byte(code))
	if err != nil {
		return ValidationResult{}, err
	}
	root := tree.RootNode()
	if !root.HasError() {
		return ValidationResult{Ok: true}, nil
	}
	res := ValidationResult{}
	collectErrors(root, []byte(code), &res.Errors)
	if len(res.Errors) == 0 {
		res.Errors = append(res.Errors, SyntaxError{Line: 1, Column: 1, Message: "syntax error"})
	}
	return res, nil
}

func collectErrors(n *sitter.Node, src []byte, out *[]SyntaxError) {
	if n == nil {
		return
	}
	pos := n.StartPoint()
	switch {
	case n.IsMissing():
		*out = append(*out, SyntaxError{
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
			Message: fmt.Sprintf("missing %s", n.Type()),
		})
		return
	case n.Type() == "ERROR":
		*out = append(*out, SyntaxError{
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
			Message: fmt.Sprintf("unexpected %q", truncate(n.Content(src), 40)),
		})
		return
	}
	if !n.HasError() {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectErrors(n.Child(i), src, out)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

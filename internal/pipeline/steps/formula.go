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

package steps

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
)

// columnFormula is an arithmetic expression over column headers. Headers with
// spaces or symbols are written in brackets: [Unit Price] * 2.
type columnFormula struct {
	raw  string
	expr *govaluate.EvaluableExpression
}

func parseFormula(raw string) (*columnFormula, error) {
	expr, err := govaluate.NewEvaluableExpression(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse formula %q", raw)
	}
	return &columnFormula{raw: raw, expr: expr}, nil
}

func (f *columnFormula) references() []string {
	var out []string
	for _, v := range f.expr.Vars() {
		if !containsString(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// evaluate computes the formula for every row of df. A row where any
// referenced cell is empty evaluates to an empty cell.
func (f *columnFormula) evaluate(df *frame.DataFrame) ([]interface{}, error) {
	refs := f.references()
	cols := make([]frame.Column, len(refs))
	for i, ref := range refs {
		col, ok := df.Column(ref)
		if !ok {
			return nil, errors.Errorf("formula %q references missing column %q", f.raw, ref)
		}
		cols[i] = col
	}
	n := df.NumRows()
	out := make([]interface{}, n)
	params := make(map[string]interface{}, len(refs))
rows:
	for r := 0; r < n; r++ {
		for i, ref := range refs {
			v := cols[i].Values[r]
			if v == nil {
				out[r] = nil
				continue rows
			}
			params[ref] = v
		}
		v, err := f.expr.Evaluate(params)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate formula %q at row %d", f.raw, r)
		}
		out[r] = v
	}
	return out, nil
}

// pandas renders the formula as a pandas expression over dfName. Logical
// operators become element-wise & and |, with their operands parenthesized
// since those bind tighter than comparisons in Python.
func (f *columnFormula) pandas(dfName string) (string, error) {
	return renderTokens(f.expr.Tokens(), dfName)
}

func (f *columnFormula) chunkFormula(dfName string) (chunks.Formula, error) {
	code, err := f.pandas(dfName)
	if err != nil {
		return chunks.Formula{}, err
	}
	return chunks.Formula{Raw: f.raw, Pandas: code, References: f.references()}, nil
}

func renderTokens(tokens []govaluate.ExpressionToken, dfName string) (string, error) {
	var segments [][]govaluate.ExpressionToken
	var ops []string
	depth, start := 0, 0
	for i, t := range tokens {
		switch t.Kind {
		case govaluate.CLAUSE:
			depth++
		case govaluate.CLAUSE_CLOSE:
			depth--
		case govaluate.LOGICALOP:
			if depth > 0 {
				continue
			}
			op, err := logicalOp(t.Value)
			if err != nil {
				return "", err
			}
			segments = append(segments, tokens[start:i])
			ops = append(ops, op)
			start = i + 1
		}
	}
	if len(ops) == 0 {
		return renderSimple(tokens, dfName)
	}
	segments = append(segments, tokens[start:])
	var sb strings.Builder
	for i, seg := range segments {
		code, err := renderSimple(seg, dfName)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(" " + ops[i-1] + " ")
		}
		sb.WriteString("(" + code + ")")
	}
	return sb.String(), nil
}

func renderSimple(tokens []govaluate.ExpressionToken, dfName string) (string, error) {
	var parts []string
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.Kind {
		case govaluate.VARIABLE:
			parts = append(parts, fmt.Sprintf("%s[%s]", dfName, chunk.PyString(fmt.Sprint(t.Value))))
		case govaluate.NUMERIC, govaluate.STRING, govaluate.BOOLEAN:
			parts = append(parts, chunk.PyValue(t.Value))
		case govaluate.MODIFIER:
			op := fmt.Sprint(t.Value)
			switch op {
			case "+", "-", "*", "/", "%", "**":
				parts = append(parts, op)
			default:
				return "", errors.Errorf("unsupported operator %q", op)
			}
		case govaluate.COMPARATOR:
			op := fmt.Sprint(t.Value)
			switch op {
			case "==", "!=", ">", ">=", "<", "<=":
				parts = append(parts, op)
			default:
				return "", errors.Errorf("unsupported comparator %q", op)
			}
		case govaluate.PREFIX:
			switch fmt.Sprint(t.Value) {
			case "-":
				parts = append(parts, "-")
			case "!":
				parts = append(parts, "~")
			default:
				return "", errors.Errorf("unsupported prefix %q", t.Value)
			}
		case govaluate.CLAUSE:
			end := matchingClose(tokens, i)
			if end < 0 {
				return "", errors.New("unbalanced parentheses")
			}
			inner, err := renderTokens(tokens[i+1:end], dfName)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+inner+")")
			i = end
		default:
			return "", errors.Errorf("unsupported token %s %v", t.Kind.String(), t.Value)
		}
	}
	return joinParts(parts), nil
}

// joinParts spaces binary operators and keeps prefixes attached.
func joinParts(parts []string) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 && !isPrefix(parts, i-1) {
			sb.WriteString(" ")
		}
		sb.WriteString(p)
	}
	return sb.String()
}

// isPrefix reports whether parts[i] is a unary operator: one at the start or
// following another operator.
func isPrefix(parts []string, i int) bool {
	if parts[i] == "~" {
		return true
	}
	if parts[i] != "-" {
		return false
	}
	return i == 0 || isOperator(parts[i-1])
}

func isOperator(s string) bool {
	switch s {
	case "+", "-", "*", "/", "%", "**", "==", "!=", ">", ">=", "<", "<=", "~":
		return true
	}
	return false
}

func matchingClose(tokens []govaluate.ExpressionToken, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case govaluate.CLAUSE:
			depth++
		case govaluate.CLAUSE_CLOSE:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func logicalOp(v interface{}) (string, error) {
	switch fmt.Sprint(v) {
	case "&&":
		return "&", nil
	case "||":
		return "|", nil
	}
	return "", errors.Errorf("unsupported logical operator %v", v)
}

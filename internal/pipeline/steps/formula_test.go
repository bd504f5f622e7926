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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/lang/frame"
)

func TestFormulaPandas(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    string
	}{
		{"bracketed header", "[Unit Price] * 2", "df['Unit Price'] * 2"},
		{"arithmetic", "A + B / 4", "df['A'] + df['B'] / 4"},
		{"negation", "-A + 1", "-df['A'] + 1"},
		{"clause", "(A + B) * 0.5", "(df['A'] + df['B']) * 0.5"},
		{"logical", "A > 1 && B < 2", "(df['A'] > 1) & (df['B'] < 2)"},
		{"or", "A == 'x' || B != 'y'", "(df['A'] == 'x') | (df['B'] != 'y')"},
		{"not", "!(A > 1)", "~(df['A'] > 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFormula(tt.formula)
			require.NoError(t, err)
			got, err := f.pandas("df")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormulaUnsupported(t *testing.T) {
	for _, raw := range []string{"A =~ 'x'", "A > 1 ? 1 : 2", "A & 1"} {
		f, err := parseFormula(raw)
		require.NoError(t, err, raw)
		_, err = f.pandas("df")
		assert.Error(t, err, raw)
	}
	_, err := parseFormula("A +")
	assert.Error(t, err)
}

func TestFormulaReferences(t *testing.T) {
	f, err := parseFormula("A * A + [B C]")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B C"}, f.references())
}

func TestFormulaEvaluate(t *testing.T) {
	df := frame.New([]string{"A", "B"}, [][]interface{}{
		{1.0, 10.0},
		{2.0, nil},
		{3.0, 30.0},
	})

	f, err := parseFormula("A * 2 + B")
	require.NoError(t, err)
	got, err := f.evaluate(df)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{12.0, nil, 36.0}, got)

	f, err = parseFormula("C + 1")
	require.NoError(t, err)
	_, err = f.evaluate(df)
	assert.Error(t, err)
}

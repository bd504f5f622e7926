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

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/chunks"
	"github.com/cloudwego/sheetcoder/lang/frame"
	"github.com/cloudwego/sheetcoder/lang/state"
)

// sheets builds the states after importing each name in turn.
func sheets(names ...string) []*state.State {
	out := []*state.State{state.New()}
	for _, name := range names {
		next, _ := out[len(out)-1].WithDataframe(frame.New([]string{"A"}, [][]interface{}{{1.0}}), name, state.SourceImported)
		out = append(out, next)
	}
	return out
}

func csv(s []*state.State, i int, delimiter string) chunk.CodeChunk {
	name := s[i+1].DfNames[i]
	return chunks.NewSimpleImport(s[i], s[i+1], []string{name + ".csv"}, []string{name}, delimiter)
}

func deleteSheets(prev *state.State, idx ...int) chunk.CodeChunk {
	post, err := prev.WithoutDataframes(idx)
	if err != nil {
		panic(err)
	}
	return chunks.NewDeleteDataframe(prev, post, idx)
}

func code(t *testing.T, seq []chunk.CodeChunk) []string {
	var out []string
	for _, c := range seq {
		lines, _, err := c.Render()
		require.NoError(t, err)
		out = append(out, lines...)
	}
	return out
}

func optimize(t *testing.T, seq []chunk.CodeChunk) []chunk.CodeChunk {
	out, err := Optimize(seq, Options{})
	require.NoError(t, err)
	again, err := Optimize(out, Options{})
	require.NoError(t, err)
	assert.Equal(t, code(t, out), code(t, again), "optimize must be idempotent")
	return out
}

// opaque touches everything it might.
type opaque struct{ chunk.Base }

func (c *opaque) DisplayName() string                 { return "opaque" }
func (c *opaque) DescriptionComment() string          { return "" }
func (c *opaque) Render() ([]string, []string, error) { return []string{"opaque()"}, nil, nil }
func (c *opaque) ParamsMatch(other chunk.CodeChunk, keys ...string) bool {
	return false
}

func TestOptimize_CombineRight(t *testing.T) {
	s := sheets("a", "b")
	seq := []chunk.CodeChunk{csv(s, 0, ","), csv(s, 1, ",")}
	out := optimize(t, seq)
	assert.Equal(t, []string{"a = pd.read_csv(r'a.csv')", "b = pd.read_csv(r'b.csv')"}, code(t, out))
	require.Len(t, out, 1)
	assert.Len(t, seq, 2)
}

func TestOptimize_ColumnChain(t *testing.T) {
	s := sheets("a")
	st := s[1]
	seq := []chunk.CodeChunk{
		chunks.NewAddColumn(st, st, 0, "B", 1),
		chunks.NewSetColumnFormula(st, st, 0, "B", chunks.Formula{Raw: "A * 2", Pandas: "a['A'] * 2", References: []string{"A"}}),
		chunks.NewRenameColumn(st, st, 0, "B", "C"),
		chunks.NewRenameColumn(st, st, 0, "C", "D"),
	}
	out := optimize(t, seq)
	assert.Equal(t, []string{"a.insert(1, 'D', a['A'] * 2)"}, code(t, out))
}

func TestOptimize_AddThenDeleteCancels(t *testing.T) {
	s := sheets("a")
	st := s[1]
	seq := []chunk.CodeChunk{
		csv(s, 0, ","),
		chunks.NewAddColumn(st, st, 0, "B", 1),
		chunks.NewDeleteColumns(st, st, 0, []string{"B"}),
	}
	out := optimize(t, seq)
	assert.Equal(t, []string{"a = pd.read_csv(r'a.csv')"}, code(t, out))
}

func TestOptimize_ReorderAndCombine(t *testing.T) {
	s := sheets("a", "b")
	st := s[2]
	t.Run("independent sheet in between", func(t *testing.T) {
		seq := []chunk.CodeChunk{
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewAddColumn(st, st, 1, "X", 1),
			chunks.NewRenameColumn(st, st, 0, "B", "C"),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{"a.insert(1, 'C', 0)", "b.insert(1, 'X', 0)"}, code(t, out))
	})
	t.Run("blocked by same sheet", func(t *testing.T) {
		seq := []chunk.CodeChunk{
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewDeleteColumns(st, st, 0, []string{"A"}),
			chunks.NewRenameColumn(st, st, 0, "B", "C"),
		}
		out := optimize(t, seq)
		assert.Len(t, out, 3)
	})
	t.Run("blocked by unknown", func(t *testing.T) {
		seq := []chunk.CodeChunk{
			chunks.NewAddColumn(st, st, 0, "B", 1),
			&opaque{Base: chunk.NewBase(st, st)},
			chunks.NewRenameColumn(st, st, 0, "B", "C"),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{"a.insert(1, 'B', 0)", "opaque()", "a.rename(columns={'B': 'C'}, inplace=True)"}, code(t, out))
	})
}

func TestOptimize_DeadCode(t *testing.T) {
	t.Run("create then delete", func(t *testing.T) {
		s := sheets("a")
		st := s[1]
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewSetColumnFormula(st, st, 0, "A", chunks.Formula{Raw: "1", Pandas: "1"}),
			deleteSheets(st, 0),
		}
		out := optimize(t, seq)
		assert.Empty(t, out)
	})
	t.Run("unrelated sheet survives", func(t *testing.T) {
		s := sheets("a", "b")
		st := s[2]
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			csv(s, 1, ";"),
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewAddColumn(st, st, 1, "B", 1),
			deleteSheets(st, 1),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{"a = pd.read_csv(r'a.csv')", "a.insert(1, 'B', 0)"}, code(t, out))
	})
	t.Run("read before delete keeps creator", func(t *testing.T) {
		s := sheets("a")
		st := s[1]
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewExportToFile(st, st, chunks.ExportCSV, "", map[int]string{0: "out.csv"}),
			deleteSheets(st, 0),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{
			"a = pd.read_csv(r'a.csv')",
			"a.insert(1, 'B', 0)",
			"a.to_csv(r'out.csv', index=False)",
			"del a",
		}, code(t, out))
	})
	t.Run("later sheet is renumbered", func(t *testing.T) {
		s := sheets("a", "b")
		st := s[2]
		del := deleteSheets(st, 0)
		after := del.PostState()
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			csv(s, 1, ";"),
			chunks.NewAddColumn(st, st, 1, "B", 1),
			del,
			chunks.NewAddColumn(after, after, 0, "X", 2),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{
			"b = pd.read_csv(r'b.csv', sep=';')",
			"b.insert(1, 'B', 0)",
			"b.insert(2, 'X', 0)",
		}, code(t, out))
		require.Len(t, out, 3)
		assert.Equal(t, []int{0}, out[0].CreatedSheetIndexes().Slice())
		assert.Equal(t, []int{0}, out[1].EditedSheetIndexes().Slice())
		assert.False(t, chunk.CanReorder(out[1], out[2]), "both edit sheet 0 once renumbered")
	})
	t.Run("only the created sheet is deleted", func(t *testing.T) {
		s := sheets("a", "b")
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			csv(s, 1, ";"),
			deleteSheets(s[2], 0),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{"b = pd.read_csv(r'b.csv', sep=';')"}, code(t, out))
	})
	t.Run("renumbered creator can die later", func(t *testing.T) {
		s := sheets("a", "b")
		first := deleteSheets(s[2], 0)
		seq := []chunk.CodeChunk{
			csv(s, 0, ","),
			csv(s, 1, ";"),
			first,
			chunks.NewAddColumn(first.PostState(), first.PostState(), 0, "X", 1),
			deleteSheets(first.PostState(), 0),
		}
		out := optimize(t, seq)
		assert.Empty(t, code(t, out))
	})
	t.Run("passed dataframe keeps deletion", func(t *testing.T) {
		st, _ := state.New().WithDataframe(frame.New([]string{"A"}, nil), "df", state.SourcePassed)
		seq := []chunk.CodeChunk{
			chunks.NewAddColumn(st, st, 0, "B", 1),
			deleteSheets(st, 0),
		}
		out := optimize(t, seq)
		assert.Equal(t, []string{"del df"}, code(t, out))
	})
}

func TestOptimize_MergesDeletions(t *testing.T) {
	s := sheets("a", "b", "c")
	st := s[3]
	first := deleteSheets(st, 0)
	second := deleteSheets(first.PostState(), 1)
	seq := []chunk.CodeChunk{first, second}
	out := optimize(t, seq)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"del a", "del c"}, code(t, out))
}

func TestOptimize_NotConverged(t *testing.T) {
	s := sheets("a", "b")
	seq := []chunk.CodeChunk{csv(s, 0, ","), csv(s, 1, ",")}
	out, err := Optimize(seq, Options{MaxIterations: 1})
	assert.ErrorIs(t, err, ErrNotConverged)
	assert.Equal(t, seq, out)
}

func TestOptimize_Deterministic(t *testing.T) {
	s := sheets("a", "b")
	st := s[2]
	build := func() []chunk.CodeChunk {
		return []chunk.CodeChunk{
			csv(s, 0, ","),
			csv(s, 1, ";"),
			chunks.NewAddColumn(st, st, 0, "B", 1),
			chunks.NewAddColumn(st, st, 1, "X", 1),
			chunks.NewDeleteColumns(st, st, 0, []string{"B"}),
			chunks.NewExportToFile(st, st, chunks.ExportCSV, "", map[int]string{0: "a.csv", 1: "b.csv"}),
		}
	}
	first := optimize(t, build())
	for i := 0; i < 5; i++ {
		assert.Equal(t, code(t, first), code(t, optimize(t, build())))
	}
}

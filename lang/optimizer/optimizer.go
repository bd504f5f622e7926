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

// Package optimizer fuses, reorders and prunes code chunks until the sequence
// reaches a fixed point.
package optimizer

import (
	"errors"

	"github.com/cloudwego/sheetcoder/lang/chunk"
	"github.com/cloudwego/sheetcoder/lang/log"
)

const DefaultMaxIterations = 100

// ErrNotConverged means the passes kept changing the sequence past the
// iteration budget. It is always a bug in some variant's combine rules.
var ErrNotConverged = errors.New("optimizer did not converge")

type Options struct {
	MaxIterations int
}

func (o Options) maxIterations() int {
	if o.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return o.MaxIterations
}

type pass struct {
	name string
	run  func([]chunk.CodeChunk) ([]chunk.CodeChunk, bool)
}

var passes = []pass{
	{"combine right", combineRight},
	{"reorder and combine", reorderAndCombine},
	{"combine left", combineLeft},
	{"eliminate dead code", eliminateDeadCode},
	{"drop empty", dropEmpty},
}

// Optimize returns an equivalent, usually shorter, sequence. The input slice
// and its chunks are never modified. On ErrNotConverged the input is returned
// unchanged.
func Optimize(chunks []chunk.CodeChunk, opts Options) ([]chunk.CodeChunk, error) {
	seq := append([]chunk.CodeChunk(nil), chunks...)
	limit := opts.maxIterations()
	for iter := 0; iter < limit; iter++ {
		changed := false
		for _, p := range passes {
			var c bool
			seq, c = p.run(seq)
			if c {
				log.Debug("optimizer iteration %d: %s -> %d chunks", iter, p.name, len(seq))
			}
			changed = changed || c
		}
		if !changed {
			return seq, nil
		}
	}
	log.Error("optimizer did not converge after %d iterations over %d chunks", limit, len(chunks))
	return chunks, ErrNotConverged
}

func splice(seq []chunk.CodeChunk, from, to int, with ...chunk.CodeChunk) []chunk.CodeChunk {
	out := make([]chunk.CodeChunk, 0, len(seq)-(to-from)+len(with))
	out = append(out, seq[:from]...)
	out = append(out, with...)
	return append(out, seq[to:]...)
}

func combineRight(seq []chunk.CodeChunk) ([]chunk.CodeChunk, bool) {
	changed := false
	for i := 0; i+1 < len(seq); {
		if merged := seq[i].CombineRight(seq[i+1]); merged != nil {
			seq = splice(seq, i, i+2, merged)
			changed = true
			continue
		}
		i++
	}
	return seq, changed
}

// reorderAndCombine looks for a later chunk k that seq[i] could absorb and
// moves it left while every chunk it passes can be reordered with it.
func reorderAndCombine(seq []chunk.CodeChunk) ([]chunk.CodeChunk, bool) {
	changed := false
	for i := 0; i < len(seq); i++ {
		for k := i + 2; k < len(seq); k++ {
			merged := seq[i].CombineRight(seq[k])
			if merged == nil || !canMoveLeft(seq, k, i+1) {
				continue
			}
			between := append([]chunk.CodeChunk(nil), seq[i+1:k]...)
			seq = splice(seq, i, k+1, append([]chunk.CodeChunk{merged}, between...)...)
			changed = true
			k = i + 1
		}
	}
	return seq, changed
}

func canMoveLeft(seq []chunk.CodeChunk, k, to int) bool {
	for j := k - 1; j >= to; j-- {
		if !chunk.CanReorder(seq[j], seq[k]) {
			return false
		}
	}
	return true
}

func combineLeft(seq []chunk.CodeChunk) ([]chunk.CodeChunk, bool) {
	changed := false
	for i := len(seq) - 1; i > 0; i-- {
		if merged := seq[i].CombineLeft(seq[i-1]); merged != nil {
			seq = splice(seq, i-1, i+1, merged)
			changed = true
		}
	}
	return seq, changed
}

// eliminateDeadCode removes chunks whose only effect is on sheets a later
// chunk deletes. The deleting chunk goes too, along with the creators, when
// every deleted sheet was created in the run. Surviving chunks in between are
// then renumbered as if the deleted sheets never existed.
func eliminateDeadCode(seq []chunk.CodeChunk) ([]chunk.CodeChunk, bool) {
	changed := false
	for d := 0; d < len(seq); d++ {
		deleted := seq[d].DeletedSheetIndexes()
		if !deleted.Known() || deleted.Empty() {
			continue
		}
		dead := map[int]bool{}
		created := chunk.None()
		var survivors []int
		for j := d - 1; j >= 0; j-- {
			c := seq[j]
			if !c.DeletedSheetIndexes().Empty() {
				break
			}
			writes := chunk.Writes(c)
			if !writes.Known() {
				break
			}
			if !writes.Empty() && writes.SubsetOf(deleted) {
				dead[j] = true
				created = created.Union(c.CreatedSheetIndexes())
				continue
			}
			if chunk.Touches(c).Intersects(deleted) {
				break
			}
			survivors = append(survivors, j)
		}
		dropDelete := deleted.SubsetOf(created)
		if !dropDelete {
			// the deletion still names every sheet in its code, so their
			// creators must stay
			for j := range dead {
				if !seq[j].CreatedSheetIndexes().Empty() {
					delete(dead, j)
				}
			}
		}
		if len(dead) == 0 && !dropDelete {
			continue
		}
		if dropDelete {
			for _, j := range survivors {
				if chunk.Touches(seq[j]).Max() > deleted.Min() {
					seq[j] = &rebased{CodeChunk: seq[j], removed: deleted}
				}
			}
		}
		out := make([]chunk.CodeChunk, 0, len(seq))
		for j, c := range seq {
			if dead[j] || (j == d && dropDelete) {
				continue
			}
			out = append(out, c)
		}
		d -= len(dead)
		if dropDelete {
			d--
		}
		seq = out
		changed = true
	}
	return seq, changed
}

// rebased reports the sheet indexes of a chunk as numbered once the removed
// sheets are gone. It never combines, since the wrapped chunk still compares
// indexes in the old numbering.
type rebased struct {
	chunk.CodeChunk
	removed chunk.IndexSet
}

// Unwrap returns the renumbered chunk.
func (r *rebased) Unwrap() chunk.CodeChunk { return r.CodeChunk }

func (r *rebased) CreatedSheetIndexes() chunk.IndexSet {
	return shift(r.CodeChunk.CreatedSheetIndexes(), r.removed)
}

func (r *rebased) EditedSheetIndexes() chunk.IndexSet {
	return shift(r.CodeChunk.EditedSheetIndexes(), r.removed)
}

func (r *rebased) SourceSheetIndexes() chunk.IndexSet {
	return shift(r.CodeChunk.SourceSheetIndexes(), r.removed)
}

func (r *rebased) DeletedSheetIndexes() chunk.IndexSet {
	return shift(r.CodeChunk.DeletedSheetIndexes(), r.removed)
}

func (r *rebased) CombineRight(next chunk.CodeChunk) chunk.CodeChunk { return nil }

func (r *rebased) CombineLeft(prev chunk.CodeChunk) chunk.CodeChunk { return nil }

func (r *rebased) ParamsMatch(other chunk.CodeChunk, keys ...string) bool { return false }

// shift moves every member down by the number of removed indexes below it.
func shift(s, removed chunk.IndexSet) chunk.IndexSet {
	if !s.Known() {
		return s
	}
	idx := s.Slice()
	gone := removed.Slice()
	for i, v := range idx {
		n := 0
		for _, r := range gone {
			if r < v {
				n++
			}
		}
		idx[i] = v - n
	}
	return chunk.Indexes(idx...)
}

func dropEmpty(seq []chunk.CodeChunk) ([]chunk.CodeChunk, bool) {
	out := seq[:0:0]
	for _, c := range seq {
		if !chunk.IsEmpty(c) {
			out = append(out, c)
		}
	}
	return out, len(out) != len(seq)
}

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

package chunk

import (
	"sort"
	"strconv"
	"strings"
)

// IndexSet is a set of sheet indexes that may also be Unknown. Unknown is not
// the same as empty: an empty set proves a chunk touches no sheet, Unknown
// means it may touch any.
type IndexSet struct {
	known bool
	idx   []int
}

// Unknown is the conservative default.
func Unknown() IndexSet {
	return IndexSet{}
}

// None is the known empty set.
func None() IndexSet {
	return IndexSet{known: true}
}

// Indexes builds a known set; duplicates are dropped.
func Indexes(idx ...int) IndexSet {
	seen := make(map[int]bool, len(idx))
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return IndexSet{known: true, idx: out}
}

// Range is the known set [start, start+n).
func Range(start, n int) IndexSet {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = start + i
	}
	return Indexes(idx...)
}

func (s IndexSet) Known() bool {
	return s.known
}

// Empty is true only for a known set without members.
func (s IndexSet) Empty() bool {
	return s.known && len(s.idx) == 0
}

func (s IndexSet) Len() int {
	return len(s.idx)
}

// Slice returns the sorted members, nil when Unknown.
func (s IndexSet) Slice() []int {
	if !s.known {
		return nil
	}
	return append([]int(nil), s.idx...)
}

func (s IndexSet) Contains(i int) bool {
	idx := sort.SearchInts(s.idx, i)
	return idx < len(s.idx) && s.idx[idx] == i
}

// Intersects treats Unknown as overlapping every non-empty set.
func (s IndexSet) Intersects(o IndexSet) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	if !s.known || !o.known {
		return true
	}
	for _, i := range s.idx {
		if o.Contains(i) {
			return true
		}
	}
	return false
}

// Union is Unknown if either side is.
func (s IndexSet) Union(o IndexSet) IndexSet {
	if !s.known || !o.known {
		return Unknown()
	}
	return Indexes(append(append([]int(nil), s.idx...), o.idx...)...)
}

// Minus removes o's members; Unknown stays Unknown.
func (s IndexSet) Minus(o IndexSet) IndexSet {
	if !s.known {
		return Unknown()
	}
	out := make([]int, 0, len(s.idx))
	for _, i := range s.idx {
		if !o.Contains(i) {
			out = append(out, i)
		}
	}
	return Indexes(out...)
}

// SubsetOf requires both sets to be known.
func (s IndexSet) SubsetOf(o IndexSet) bool {
	if !s.known || !o.known {
		return false
	}
	for _, i := range s.idx {
		if !o.Contains(i) {
			return false
		}
	}
	return true
}

func (s IndexSet) Equal(o IndexSet) bool {
	if s.known != o.known || len(s.idx) != len(o.idx) {
		return false
	}
	for i := range s.idx {
		if s.idx[i] != o.idx[i] {
			return false
		}
	}
	return true
}

// Min returns the smallest member, or -1 for empty and Unknown sets.
func (s IndexSet) Min() int {
	if len(s.idx) == 0 {
		return -1
	}
	return s.idx[0]
}

// Max returns the largest member, or -1 for empty and Unknown sets.
func (s IndexSet) Max() int {
	if len(s.idx) == 0 {
		return -1
	}
	return s.idx[len(s.idx)-1]
}

func (s IndexSet) String() string {
	if !s.known {
		return "unknown"
	}
	parts := make([]string, len(s.idx))
	for i, v := range s.idx {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

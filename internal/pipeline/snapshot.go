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

package pipeline

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Snapshot is an immutable capture of the history. Undo, redo and a failed
// import update restore one.
type Snapshot struct {
	Kind   string // e.g. "apply", "update-imports"
	Hash   uint64 // fingerprint of every step up to Cursor
	Steps  []*Step
	Cursor int
	// CursorOnly snapshots leave the steps in place when restored.
	CursorOnly bool
}

// NewSnapshot captures steps and cursor. Steps are shared since they are
// never mutated.
func NewSnapshot(kind string, steps []*Step, cursor int) *Snapshot {
	return &Snapshot{
		Kind:   kind,
		Hash:   fingerprint(steps[:cursor], ""),
		Steps:  append([]*Step(nil), steps...),
		Cursor: cursor,
	}
}

// NewCursorSnapshot captures only the cursor over steps.
func NewCursorSnapshot(kind string, steps []*Step, cursor int) *Snapshot {
	return &Snapshot{
		Kind:       kind,
		Hash:       fingerprint(steps[:cursor], ""),
		Cursor:     cursor,
		CursorOnly: true,
	}
}

// fingerprint hashes the ID, skip flag and post state of every step, so any
// replay that changes an outcome changes the key.
func fingerprint(steps []*Step, salt string) uint64 {
	var sb strings.Builder
	sb.WriteString(salt)
	for _, s := range steps {
		sb.WriteString(s.ID)
		if s.Skipped {
			sb.WriteString("/skipped")
		}
		sb.WriteString("/" + strconv.FormatUint(s.Post.Hash(), 16) + ";")
	}
	return xxh3.HashString(sb.String())
}

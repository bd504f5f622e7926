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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cloudwego/sheetcoder/lang/log"
)

// ImportReplacement swaps the import step at Position for a new import.
type ImportReplacement struct {
	Position int      `json:"position" yaml:"position" jsonschema:"description=index of the import step in the history"`
	Type     StepType `json:"type" yaml:"type" jsonschema:"description=import step type such as simple_import or excel_import"`
	Params   Params   `json:"params" yaml:"params"`
}

// ImportUpdateError maps history positions to what went wrong there.
type ImportUpdateError struct {
	Errors map[int]string
}

func (e *ImportUpdateError) Error() string {
	positions := make([]int, 0, len(e.Errors))
	for p := range e.Errors {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprintf("%d: %s", p, e.Errors[p])
	}
	return "update imports failed: " + strings.Join(parts, "; ")
}

// TestImports runs every replacement against the state its position starts
// from without changing the history. The map is empty when all would succeed.
func (m *Manager) TestImports(ctx context.Context, reps []ImportReplacement) map[int]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.testImports(ctx, reps)
}

func (m *Manager) testImports(ctx context.Context, reps []ImportReplacement) map[int]string {
	errs := make(map[int]string)
	seen := make(map[int]bool, len(reps))
	for _, r := range reps {
		if err := m.checkReplacement(r, seen); err != nil {
			errs[r.Position] = err.Error()
			continue
		}
		p, _ := m.registry.Get(r.Type)
		if _, _, err := p.Execute(ctx, m.steps[r.Position].Prev, r.Params); err != nil {
			errs[r.Position] = err.Error()
		}
	}
	return errs
}

func (m *Manager) checkReplacement(r ImportReplacement, seen map[int]bool) error {
	if r.Position < 0 || r.Position >= m.cursor {
		return errors.Errorf("no applied step at position %d", r.Position)
	}
	if seen[r.Position] {
		return errors.Errorf("position %d replaced twice", r.Position)
	}
	seen[r.Position] = true
	old, err := m.registry.Get(m.steps[r.Position].Type)
	if err != nil {
		return err
	}
	if !old.IsImport() {
		return errors.Errorf("step at position %d is %s, not an import", r.Position, old.Type())
	}
	p, err := m.registry.Get(r.Type)
	if err != nil {
		return err
	}
	if !p.IsImport() {
		return errors.Errorf("%s is not an import", r.Type)
	}
	return nil
}

// UpdateExistingImports replaces import steps and replays everything after
// the first of them. Either all replacements apply or none do: on failure the
// history is restored and an *ImportUpdateError is returned. Steps undone
// before the call are discarded, as with Apply.
func (m *Manager) UpdateExistingImports(ctx context.Context, reps []ImportReplacement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(reps) == 0 {
		return nil
	}
	if errs := m.testImports(ctx, reps); len(errs) > 0 {
		return &ImportUpdateError{Errors: errs}
	}

	snap := NewSnapshot("update-imports", m.steps, m.cursor)
	steps := append([]*Step(nil), m.steps[:m.cursor]...)
	from := m.cursor
	for _, r := range reps {
		steps[r.Position] = &Step{ID: uuid.NewString(), Type: r.Type, Params: r.Params}
		if r.Position < from {
			from = r.Position
		}
	}
	m.steps = steps

	if err := m.replayFrom(ctx, from); err != nil {
		m.restore(snap)
		log.Error("update imports rolled back: %v", err)
		pos := from
		var se *stepError
		if errors.As(err, &se) {
			pos = se.position
		}
		return &ImportUpdateError{Errors: map[int]string{pos: err.Error()}}
	}
	m.pushUndo(snap)
	log.Info("replaced %d imports, replayed %d steps", len(reps), m.cursor-from)
	return nil
}
